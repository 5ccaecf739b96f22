package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/logger"
	"github.com/kbukum/docflow/observability"
	"github.com/kbukum/docflow/stream"
)

const tracerName = "github.com/kbukum/docflow/pipeline"

// Pipeline owns an ordered list of steps and drives documents through them.
// Process, AddStep, ClearSteps and Destroy must not be called concurrently
// with each other; Cancel, State and ID are safe from any goroutine.
type Pipeline struct {
	id        string
	log       *logger.Logger
	tracer    trace.Tracer
	metrics   *observability.Metrics
	observers []Observer

	mu        sync.Mutex
	steps     []Step
	state     State
	used      bool // steps were driven by a run and need a Reset before the next
	cancelled atomic.Bool
}

// New creates an empty pipeline in the Idle state.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		id:     uuid.NewString(),
		log:    logger.GetGlobalLogger(),
		tracer: observability.Tracer(tracerName),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent("pipeline").WithFields(logger.Fields(logger.FieldPipelineID, p.id))
	return p
}

// ID returns the pipeline id.
func (p *Pipeline) ID() string { return p.id }

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Steps returns a copy of the step list in execution order.
func (p *Pipeline) Steps() []Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// AddStep appends a step. Steps can only be added while the pipeline is Idle.
func (p *Pipeline) AddStep(s Step) error {
	if s == nil {
		return errors.InvalidPipeline("nil step")
	}
	if _, ok := roleOf(s); !ok {
		return errors.InvalidPipeline(fmt.Sprintf("step %q is not a source, transform or sink", s.Name()))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return errors.InvalidState("add step", p.state.String())
	}
	p.steps = append(p.steps, s)
	return nil
}

// AddSteps appends steps in order, stopping at the first rejected one.
func (p *Pipeline) AddSteps(steps ...Step) error {
	for _, s := range steps {
		if err := p.AddStep(s); err != nil {
			return err
		}
	}
	return nil
}

// Cancel asks the current run to stop. The driver notices before its next
// pull and fails the run with CANCELLED. A cancel issued while no run is in
// progress applies to the next run.
func (p *Pipeline) Cancel() {
	p.cancelled.Store(true)
}

// Process runs doc through the pipeline. Unset encoding and locale on doc are
// taken from cfg. On failure the sink is not finished and the error is
// returned; Destroy must still be called to release the steps.
func (p *Pipeline) Process(ctx context.Context, doc RawDocument, cfg Config) error {
	if doc.Encoding == "" {
		doc.Encoding = cfg.InputEncoding
	}
	if doc.SourceLocale == "" {
		doc.SourceLocale = cfg.SourceLanguage
	}

	layout, err := p.begin(cfg)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeInvalidState) {
			p.log.Error("pipeline run rejected", logger.MergeWithError(logger.Fields(logger.FieldDocument, doc.URI), err))
		}
		return err
	}

	ctx = logger.ContextWithPipelineID(ctx, p.id)
	ctx, span := p.tracer.Start(ctx, observability.SpanPipelineRun, trace.WithAttributes(
		attribute.String(observability.AttrPipelineID, p.id),
		attribute.String(observability.AttrDocument, doc.URI),
	))
	defer span.End()

	log := p.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldDocument, doc.URI))
	log.Debug("pipeline run started", logger.Fields("steps", len(layout.transforms)+2))
	p.metrics.RecordRunStart(ctx)

	start := time.Now()
	events, err := p.run(ctx, layout, doc, cfg, log)
	elapsed := time.Since(start)

	final := StateCompleted
	if err != nil {
		final = StateFailed
	}
	p.mu.Lock()
	p.state = final
	p.mu.Unlock()
	p.cancelled.Store(false)

	span.SetAttributes(
		attribute.String(observability.AttrState, final.String()),
		attribute.Int64(observability.AttrEvents, events),
	)
	p.metrics.RecordRunEnd(ctx, final.String(), events, elapsed)

	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldState, final.String(),
		logger.FieldEvents, events,
	), elapsed)
	if err != nil {
		code := errors.CodeOf(err)
		span.SetAttributes(attribute.String(observability.AttrErrorCode, string(code)))
		observability.SetSpanError(ctx, err)
		fields[logger.FieldCode] = string(code)
		log.Error("pipeline run failed", logger.MergeWithError(fields, err))
		return err
	}
	log.Info("pipeline run completed", fields)
	return nil
}

// begin validates cfg and the layout, resets steps for a re-run and enters
// Running. An invalid config or layout fails the pipeline; calling Process in
// the wrong state leaves the state untouched.
func (p *Pipeline) begin(cfg Config) (layout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.state == StateRunning || p.state == StateDestroyed:
		return layout{}, errors.InvalidState("process", p.state.String())
	case p.state.Finished() && p.used:
		if !p.resettable() {
			return layout{}, errors.InvalidState("process", p.state.String()).
				WithDetail("reason", "steps are not resettable")
		}
	}

	if err := cfg.Validate(); err != nil {
		p.state = StateFailed
		return layout{}, err
	}
	l, err := validateLayout(p.steps)
	if err != nil {
		p.state = StateFailed
		return layout{}, err
	}

	if p.used {
		for _, s := range p.steps {
			if err := s.(Resetter).Reset(); err != nil {
				return layout{}, errors.InvalidState("process", p.state.String()).
					WithDetail("step", s.Name()).WithCause(err)
			}
		}
	}

	p.state = StateRunning
	p.used = true
	return l, nil
}

func (p *Pipeline) resettable() bool {
	for _, s := range p.steps {
		if _, ok := s.(Resetter); !ok {
			return false
		}
	}
	return true
}

// run drives one document and returns the number of events the sink accepted.
func (p *Pipeline) run(ctx context.Context, l layout, doc RawDocument, cfg Config, log *logger.Logger) (int64, error) {
	guard := func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return errors.Cancelled(err)
		}
		if p.cancelled.Load() {
			return errors.Cancelled(nil)
		}
		return nil
	}

	if err := guard(ctx); err != nil {
		return 0, err
	}

	iter, err := l.source.Open(ctx, doc)
	if err != nil {
		p.metrics.RecordStepError(ctx, l.source.Name(), string(errors.ErrCodeDocumentRead))
		return 0, asCode(err, errors.ErrCodeDocumentRead, func() *errors.AppError {
			return errors.DocumentRead(doc.URI, err)
		})
	}

	s := stream.Guard(stream.From(stream.Iterator[event.Event](&sourceIter{
		inner: iter,
		uri:   doc.URI,
		step:  l.source.Name(),
		log:   log,
	})), guard)
	for _, t := range l.transforms {
		s = stream.Expand(s, applyFunc(t))
	}
	s = stream.Guard(s, guard)

	opts := cfg.SinkOptions()
	if err := l.sink.Configure(opts); err != nil {
		_ = iter.Close()
		return 0, p.sinkError(ctx, l.sink, opts.Destination, err)
	}

	s = stream.Tap(s, func(ctx context.Context, ev event.Event) error {
		if err := l.sink.Write(ctx, ev); err != nil {
			return p.sinkError(ctx, l.sink, opts.Destination, err)
		}
		return nil
	})
	// Observers only see events the sink accepted.
	for _, obs := range p.observers {
		s = stream.Tap(s, func(ctx context.Context, ev event.Event) error {
			obs(ctx, ev)
			return nil
		})
	}

	var events int64
	err = stream.Drain(s, func(context.Context, event.Event) error {
		events++
		return nil
	}).Run(ctx)
	if err != nil {
		if step, ok := failedStep(err); ok && !errors.HasCode(err, errors.ErrCodeSinkWrite) {
			p.metrics.RecordStepError(ctx, step, string(errors.CodeOf(err)))
		}
		return events, err
	}

	fctx, span := p.tracer.Start(ctx, observability.SpanSinkFinish,
		trace.WithAttributes(attribute.String(observability.AttrStep, l.sink.Name())))
	defer span.End()
	if err := l.sink.Finish(fctx); err != nil {
		observability.SetSpanError(fctx, err)
		return events, p.sinkError(ctx, l.sink, opts.Destination, err)
	}
	return events, nil
}

func (p *Pipeline) sinkError(ctx context.Context, sink Sink, dest string, err error) error {
	p.metrics.RecordStepError(ctx, sink.Name(), string(errors.ErrCodeSinkWrite))
	return asCode(err, errors.ErrCodeSinkWrite, func() *errors.AppError {
		return errors.SinkWrite(dest, err).WithDetail("step", sink.Name())
	})
}

// Destroy releases every step exactly once, sink first and source last. A
// failing release does not stop the others; all failures are returned
// joined. Destroying twice is a no-op.
func (p *Pipeline) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyLocked()
}

func (p *Pipeline) destroyLocked() error {
	switch p.state {
	case StateDestroyed:
		return nil
	case StateRunning:
		return errors.InvalidState("destroy", p.state.String())
	}

	ctx, span := p.tracer.Start(logger.ContextWithPipelineID(context.Background(), p.id), observability.SpanDestroy)
	defer span.End()

	var errs []error
	for i := len(p.steps) - 1; i >= 0; i-- {
		s := p.steps[i]
		if err := s.Release(); err != nil {
			p.metrics.RecordReleaseError(ctx, s.Name())
			p.log.Warn("step release failed", logger.MergeWithError(logger.Fields(logger.FieldStep, s.Name()), err))
			errs = append(errs, errors.Release(s.Name(), err))
		}
	}
	p.state = StateDestroyed

	if err := stderrors.Join(errs...); err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	p.log.Debug("pipeline destroyed", logger.Fields("steps", len(p.steps)))
	return nil
}

// ClearSteps destroys the current steps and returns the pipeline to Idle
// with an empty step list, ready to be rebuilt.
func (p *Pipeline) ClearSteps() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		return errors.InvalidState("clear steps", p.state.String())
	}
	var err error
	if p.state != StateDestroyed {
		err = p.destroyLocked()
	}
	p.steps = nil
	p.state = StateIdle
	p.used = false
	return err
}

// applyFunc adapts a transform to stream.Expand, tagging its failures.
func applyFunc(t Transform) func(context.Context, event.Event) ([]event.Event, error) {
	return func(ctx context.Context, ev event.Event) ([]event.Event, error) {
		out, err := t.Apply(ctx, ev)
		if err != nil {
			return nil, asCode(err, errors.ErrCodeTransform, func() *errors.AppError {
				return errors.Transform(t.Name(), err).WithDetail(logger.FieldEventKind, string(ev.Kind()))
			})
		}
		return out, nil
	}
}

// asCode keeps err when it already carries code or is a cancellation, and
// otherwise wraps it with build.
func asCode(err error, code errors.ErrorCode, build func() *errors.AppError) error {
	if errors.HasCode(err, code) || errors.HasCode(err, errors.ErrCodeCancelled) {
		return err
	}
	return build()
}

func failedStep(err error) (string, bool) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return "", false
	}
	step, ok := appErr.Details["step"].(string)
	return step, ok
}

// sourceIter tags read failures from the source and logs close failures.
type sourceIter struct {
	inner stream.Iterator[event.Event]
	uri   string
	step  string
	log   *logger.Logger
}

func (it *sourceIter) Next(ctx context.Context) (event.Event, bool, error) {
	ev, ok, err := it.inner.Next(ctx)
	if err != nil {
		return event.Event{}, false, asCode(err, errors.ErrCodeDocumentRead, func() *errors.AppError {
			return errors.DocumentRead(it.uri, err).WithDetail("step", it.step)
		})
	}
	return ev, ok, nil
}

func (it *sourceIter) Close() error {
	err := it.inner.Close()
	if err != nil {
		it.log.Warn("source close failed", logger.MergeWithError(logger.Fields(logger.FieldStep, it.step), err))
	}
	return err
}
