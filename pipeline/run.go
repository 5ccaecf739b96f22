package pipeline

import (
	"context"
	stderrors "errors"
)

// RunDocument builds a fresh pipeline with build, processes doc and always
// destroys the pipeline, mirroring one pipeline per input file. The process
// error comes first in the returned error, joined with any release failures.
func RunDocument(ctx context.Context, build func(*Pipeline) error, doc RawDocument, cfg Config, opts ...Option) error {
	p := New(opts...)
	err := build(p)
	if err == nil {
		err = p.Process(ctx, doc, cfg)
	}
	if derr := p.Destroy(); derr != nil {
		return stderrors.Join(err, derr)
	}
	return err
}
