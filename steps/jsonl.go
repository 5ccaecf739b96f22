package steps

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/bytedance/sonic"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/stream"
)

// maxRecordSize bounds a single JSON line.
const maxRecordSize = 4 << 20

// JSONLSource reads an event stream stored as one event.Record per line.
// Blank lines are skipped.
type JSONLSource struct{}

func NewJSONLSource() *JSONLSource { return &JSONLSource{} }

func (s *JSONLSource) Name() string   { return "jsonl-source" }
func (s *JSONLSource) Release() error { return nil }
func (s *JSONLSource) Reset() error   { return nil }

func (s *JSONLSource) Open(_ context.Context, doc pipeline.RawDocument) (stream.Iterator[event.Event], error) {
	r, closer, err := openDocument(doc)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return &jsonlIter{uri: doc.URI, scanner: scanner, closer: closer}, nil
}

type jsonlIter struct {
	uri     string
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

func (it *jsonlIter) Next(context.Context) (event.Event, bool, error) {
	for it.scanner.Scan() {
		it.line++
		data := bytes.TrimSpace(it.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var rec event.Record
		if err := sonic.Unmarshal(data, &rec); err != nil {
			return event.Event{}, false, errors.DocumentRead(it.uri, err).WithDetail("line", it.line)
		}
		ev, err := event.FromRecord(rec)
		if err != nil {
			return event.Event{}, false, errors.DocumentRead(it.uri, err).WithDetail("line", it.line)
		}
		return ev, true, nil
	}
	if err := it.scanner.Err(); err != nil {
		return event.Event{}, false, errors.DocumentRead(it.uri, err).WithDetail("line", it.line+1)
	}
	return event.Event{}, false, nil
}

func (it *jsonlIter) Close() error {
	if it.closer == nil {
		return nil
	}
	return it.closer.Close()
}

// JSONLSink writes every event as a JSON line. Text units are stamped with
// the target locale when they carry none.
type JSONLSink struct {
	fileSink
}

func NewJSONLSink() *JSONLSink { return &JSONLSink{} }

func (s *JSONLSink) Name() string { return "jsonl-sink" }

func (s *JSONLSink) Write(_ context.Context, ev event.Event) error {
	rec := ev.ToRecord()
	if rec.Kind == event.KindTextUnit && rec.Locale == "" {
		rec.Locale = s.opts.TargetLocale
	}
	data, err := sonic.Marshal(rec)
	if err != nil {
		return errors.SinkWrite(s.opts.Destination, err)
	}
	return s.write(string(data) + "\n")
}
