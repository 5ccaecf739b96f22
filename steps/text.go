package steps

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/stream"
)

// maxLineSize bounds a single line of plain text. Longer lines fail the read.
const maxLineSize = 4 << 20

// TextSource reads plain text. Each non-blank line becomes a translatable
// text unit; blank lines become document parts so the layout survives.
type TextSource struct{}

func NewTextSource() *TextSource { return &TextSource{} }

func (s *TextSource) Name() string   { return "text-source" }
func (s *TextSource) Release() error { return nil }
func (s *TextSource) Reset() error   { return nil }

func (s *TextSource) Open(_ context.Context, doc pipeline.RawDocument) (stream.Iterator[event.Event], error) {
	r, closer, err := openDocument(doc)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &textIter{
		doc:     doc,
		name:    documentName(doc.URI),
		scanner: scanner,
		closer:  closer,
	}, nil
}

type textIter struct {
	doc     pipeline.RawDocument
	name    string
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	started bool
	done    bool
}

func (it *textIter) Next(context.Context) (event.Event, bool, error) {
	if !it.started {
		it.started = true
		return event.StartDocument(event.Document{
			Name:     it.name,
			URI:      it.doc.URI,
			Locale:   it.doc.SourceLocale,
			Encoding: it.doc.Encoding,
			MimeType: "text/plain",
		}), true, nil
	}
	if it.done {
		return event.Event{}, false, nil
	}
	if it.scanner.Scan() {
		it.line++
		id := strconv.Itoa(it.line)
		text := it.scanner.Text()
		if strings.TrimSpace(text) == "" {
			return event.Part(id, text), true, nil
		}
		return event.Text(event.TextUnit{
			ID:           id,
			Text:         text,
			Locale:       it.doc.SourceLocale,
			Translatable: true,
		}), true, nil
	}
	if err := it.scanner.Err(); err != nil {
		return event.Event{}, false, errors.DocumentRead(it.doc.URI, err)
	}
	it.done = true
	return event.EndDocument(it.name), true, nil
}

func (it *textIter) Close() error {
	if it.closer == nil {
		return nil
	}
	return it.closer.Close()
}

// TextSink writes text units and document parts one per line in the output
// encoding. Other events carry no text and are skipped.
type TextSink struct {
	fileSink
}

func NewTextSink() *TextSink { return &TextSink{} }

func (s *TextSink) Name() string { return "text-sink" }

func (s *TextSink) Write(_ context.Context, ev event.Event) error {
	switch ev.Kind() {
	case event.KindTextUnit, event.KindDocumentPart:
	default:
		return nil
	}
	return s.write(ev.Text() + "\n")
}

func documentName(uri string) string {
	if uri == "" {
		return "document"
	}
	if path, err := localPath(uri); err == nil {
		return filepath.Base(path)
	}
	return uri
}
