package pipeline

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/docflow/logger"
	"github.com/kbukum/docflow/observability"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithID overrides the generated pipeline id.
func WithID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.id = id
		}
	}
}

// WithLogger sets the logger; the pipeline tags it with its component name.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithObserver registers fn to receive every event written to the sink.
func WithObserver(fn Observer) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.observers = append(p.observers, fn)
		}
	}
}

// WithTelemetry sets the tracer used for run spans and the metrics recorded
// per run. A nil tracer keeps the global one; nil metrics disable recording.
func WithTelemetry(tracer trace.Tracer, metrics *observability.Metrics) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
		p.metrics = metrics
	}
}
