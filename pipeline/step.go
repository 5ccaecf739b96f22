package pipeline

import (
	"context"
	"io"

	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/stream"
)

//go:generate go run go.uber.org/mock/mockgen -source=$GOFILE -destination=mocks/mock_step.go -package=mocks

// Step is the part every pipeline stage shares.
type Step interface {
	// Name identifies the step in logs, spans and errors.
	Name() string
	// Release frees whatever the step holds. The pipeline calls it exactly
	// once, from Destroy, whatever state the last run ended in.
	Release() error
}

// Source turns a raw document into a lazy event stream.
type Source interface {
	Step
	// Open locates and decodes doc. A document that cannot be opened yields
	// a DOCUMENT_READ_ERROR. The pipeline closes the returned iterator on
	// every exit path.
	Open(ctx context.Context, doc RawDocument) (stream.Iterator[event.Event], error)
}

// Transform rewrites the stream one event at a time.
type Transform interface {
	Step
	// Apply returns the events that replace ev, possibly none. Structural
	// events must come back unchanged and outputs keep their order.
	Apply(ctx context.Context, ev event.Event) ([]event.Event, error)
}

// Sink serializes the stream to its destination.
type Sink interface {
	Step
	// Configure is called once per run before the first Write.
	Configure(opts SinkOptions) error
	// Write is called once per event, in stream order.
	Write(ctx context.Context, ev event.Event) error
	// Finish flushes and commits the output after the last event. It is not
	// called when the run fails.
	Finish(ctx context.Context) error
}

// Resetter is implemented by steps that can be reused for another document.
type Resetter interface {
	Reset() error
}

// RawDocument references the input of one run.
type RawDocument struct {
	// URI is a local path or a file:// URI.
	URI string
	// Reader, when set, supplies the document bytes instead of URI.
	Reader io.Reader
	// Encoding is the charset to decode the input with.
	Encoding string
	// SourceLocale is the language of the source text.
	SourceLocale string
}

// SinkOptions tells a sink where and how to write.
type SinkOptions struct {
	TargetLocale string
	Encoding     string
	Destination  string
}

// Observer receives every event the sink accepted.
type Observer func(ctx context.Context, ev event.Event)
