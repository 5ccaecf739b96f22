package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/docflow/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by pipeline runs.
type Metrics struct {
	runTotal        metric.Int64Counter
	runDuration     metric.Float64Histogram
	runActive       metric.Int64UpDownCounter
	eventTotal      metric.Int64Counter
	stepErrorTotal  metric.Int64Counter
	releaseErrTotal metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("docflow.runs.total",
		metric.WithDescription("Total number of pipeline runs by final state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docflow.runs.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("docflow.run.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docflow.run.duration histogram: %w", err)
	}

	runActive, err := meter.Int64UpDownCounter("docflow.runs.active",
		metric.WithDescription("Number of pipeline runs in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docflow.runs.active gauge: %w", err)
	}

	eventTotal, err := meter.Int64Counter("docflow.events.total",
		metric.WithDescription("Events delivered to sinks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docflow.events.total counter: %w", err)
	}

	stepErrorTotal, err := meter.Int64Counter("docflow.step.errors.total",
		metric.WithDescription("Step failures by step and error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docflow.step.errors.total counter: %w", err)
	}

	releaseErrTotal, err := meter.Int64Counter("docflow.release.errors.total",
		metric.WithDescription("Failed step release hooks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docflow.release.errors.total counter: %w", err)
	}

	return &Metrics{
		runTotal:        runTotal,
		runDuration:     runDuration,
		runActive:       runActive,
		eventTotal:      eventTotal,
		stepErrorTotal:  stepErrorTotal,
		releaseErrTotal: releaseErrTotal,
	}, nil
}

// Recording methods are no-ops on a nil *Metrics.

// RecordRunStart increments the active run count.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.runActive.Add(ctx, 1)
}

// RecordRunEnd decrements active runs and records the finished run.
func (m *Metrics) RecordRunEnd(ctx context.Context, state string, events int64, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("state", state))
	m.runActive.Add(ctx, -1)
	m.runTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	if events > 0 {
		m.eventTotal.Add(ctx, events)
	}
}

// RecordStepError records a failure raised by a step.
func (m *Metrics) RecordStepError(ctx context.Context, step, code string) {
	if m == nil {
		return
	}
	m.stepErrorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("code", code),
	))
}

// RecordReleaseError records a failed release hook.
func (m *Metrics) RecordReleaseError(ctx context.Context, step string) {
	if m == nil {
		return
	}
	m.releaseErrTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}
