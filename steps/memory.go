package steps

import (
	"context"
	"sync"

	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/stream"
)

// SliceSource replays a fixed list of events, ignoring the raw document.
type SliceSource struct {
	events []event.Event
}

// NewSliceSource returns a source over a copy of events.
func NewSliceSource(events ...event.Event) *SliceSource {
	return &SliceSource{events: append([]event.Event(nil), events...)}
}

func (s *SliceSource) Name() string   { return "slice-source" }
func (s *SliceSource) Release() error { return nil }
func (s *SliceSource) Reset() error   { return nil }

func (s *SliceSource) Open(context.Context, pipeline.RawDocument) (stream.Iterator[event.Event], error) {
	return stream.NewSliceIterator(s.events), nil
}

// CollectSink keeps every written event in memory.
type CollectSink struct {
	mu       sync.Mutex
	opts     pipeline.SinkOptions
	events   []event.Event
	finished bool
}

func NewCollectSink() *CollectSink { return &CollectSink{} }

func (s *CollectSink) Name() string { return "collect-sink" }

func (s *CollectSink) Configure(opts pipeline.SinkOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	return nil
}

func (s *CollectSink) Write(_ context.Context, ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *CollectSink) Finish(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	return nil
}

func (s *CollectSink) Release() error { return nil }

// Reset drops the collected events.
func (s *CollectSink) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events, s.finished = nil, false
	return nil
}

// Events returns a copy of the events written so far.
func (s *CollectSink) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.events...)
}

// Finished reports whether Finish was called since the last Reset.
func (s *CollectSink) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Options returns the options passed to Configure.
func (s *CollectSink) Options() pipeline.SinkOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}
