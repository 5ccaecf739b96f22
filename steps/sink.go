package steps

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/validation"
)

var errNotConfigured = stderrors.New("sink is not configured")

// fileSink holds the output shared by the file-backed sinks.
type fileSink struct {
	opts pipeline.SinkOptions
	out  *output
}

func (s *fileSink) Configure(opts pipeline.SinkOptions) error {
	if err := validation.New().
		Required("destination", opts.Destination).
		Charset("encoding", opts.Encoding).
		Err(); err != nil {
		return err
	}
	s.abort()
	out, err := createOutput(opts.Destination, opts.Encoding)
	if err != nil {
		return err
	}
	s.opts, s.out = opts, out
	return nil
}

func (s *fileSink) write(line string) error {
	if s.out == nil {
		return errors.SinkWrite(s.opts.Destination, errNotConfigured)
	}
	if _, err := s.out.WriteString(line); err != nil {
		return errors.SinkWrite(s.opts.Destination, err)
	}
	return nil
}

func (s *fileSink) Finish(context.Context) error {
	if s.out == nil {
		return errors.SinkWrite(s.opts.Destination, errNotConfigured)
	}
	out := s.out
	s.out = nil
	if err := out.Commit(); err != nil {
		return errors.SinkWrite(s.opts.Destination, err)
	}
	return nil
}

// Release removes a temporary file left behind by a failed run.
func (s *fileSink) Release() error {
	s.abort()
	return nil
}

func (s *fileSink) Reset() error {
	s.abort()
	return nil
}

func (s *fileSink) abort() {
	if s.out != nil {
		s.out.Abort()
		s.out = nil
	}
}
