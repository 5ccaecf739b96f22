package batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/logger"
	"github.com/kbukum/docflow/observability"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/validation"
)

// Job is one document to process.
type Job struct {
	// Name identifies the job in logs and results; it defaults to URI.
	Name   string
	URI    string
	Config pipeline.Config
}

// Document builds the input document of the job.
func (j Job) Document() pipeline.RawDocument {
	return j.Config.Document(j.URI)
}

func (j Job) label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.URI
}

// Factory builds the pipeline for a job. Every call must return a new
// pipeline; the runner destroys it when the job ends.
type Factory func(Job) (*pipeline.Pipeline, error)

// Result is the outcome of a single job.
type Result struct {
	Job        Job
	PipelineID string
	State      pipeline.State
	Duration   time.Duration
	Err        error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTracer sets the tracer for the batch span.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// Runner processes jobs concurrently.
type Runner struct {
	cfg     Config
	factory Factory
	log     *logger.Logger
	tracer  trace.Tracer
}

// NewRunner creates a runner. Unset config fields get their defaults; Run
// rejects what is still invalid.
func NewRunner(cfg Config, factory Factory, opts ...Option) *Runner {
	cfg.ApplyDefaults()
	r := &Runner{
		cfg:     cfg,
		factory: factory,
		log:     logger.GetGlobalLogger(),
		tracer:  observability.Tracer("github.com/kbukum/docflow/batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("batch")
	return r
}

// Run processes every job and returns one Result per job, in job order.
// The returned error joins the errors of all failed jobs. With FailFast,
// jobs not yet started when a job fails are reported as cancelled, and
// running ones observe the cancelled context.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := r.validate(jobs); err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, observability.SpanBatchRun,
		trace.WithAttributes(attribute.Int(observability.AttrJobs, len(jobs))))
	defer span.End()

	results := make([]Result, len(jobs))

	var g *errgroup.Group
	gctx := ctx
	if r.cfg.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = new(errgroup.Group)
	}
	g.SetLimit(r.cfg.Concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = r.runJob(gctx, job)
			if r.cfg.FailFast {
				return results[i].Err
			}
			return nil
		})
	}
	_ = g.Wait()

	var (
		errs   []error
		failed int
	)
	for _, res := range results {
		if res.Err != nil {
			failed++
			errs = append(errs, res.Err)
		}
	}
	span.SetAttributes(attribute.Int(observability.AttrFailed, failed))

	err := stderrors.Join(errs...)
	if err != nil {
		observability.SetSpanError(ctx, err)
		r.log.Warn("batch finished with failures", logger.Fields("jobs", len(jobs), "failed", failed))
	} else {
		r.log.Info("batch completed", logger.Fields("jobs", len(jobs)))
	}
	return results, err
}

// validate rejects a batch that cannot start. Per-document config is checked
// by each pipeline so one bad job does not stop the others.
func (r *Runner) validate(jobs []Job) error {
	v := validation.New().
		Min("concurrency", r.cfg.Concurrency, 1).
		Custom(r.factory != nil, "factory", "is required")
	for i, job := range jobs {
		v.Custom(job.label() != "", fmt.Sprintf("jobs[%d]", i), "needs a name or a URI")
	}
	return v.Err()
}

func (r *Runner) runJob(ctx context.Context, job Job) (res Result) {
	start := time.Now()
	res = Result{Job: job, State: pipeline.StateIdle}
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Err = errors.Cancelled(err).WithDetail("document", job.URI)
		return res
	}

	p, err := r.factory(job)
	if err != nil {
		res.Err = err
		r.log.Error("building pipeline failed", logger.MergeWithError(logger.Fields("job", job.label()), err))
		return res
	}
	if p == nil {
		res.Err = errors.InvalidPipeline("factory returned no pipeline").WithDetail("job", job.label())
		r.log.Error("building pipeline failed", logger.MergeWithError(logger.Fields("job", job.label()), res.Err))
		return res
	}
	res.PipelineID = p.ID()

	err = p.Process(ctx, job.Document(), job.Config)
	res.State = p.State()
	if derr := p.Destroy(); derr != nil {
		err = stderrors.Join(err, derr)
	}
	res.Err = err

	fields := logger.Fields("job", job.label(), logger.FieldPipelineID, res.PipelineID, logger.FieldState, res.State.String())
	if err != nil {
		r.log.Warn("job failed", logger.MergeWithError(fields, err))
	} else {
		r.log.Debug("job completed", fields)
	}
	return res
}
