// Package observability provides OpenTelemetry tracing and metrics for
// pipeline runs.
//
// Exporters are only installed when telemetry is enabled; otherwise spans and
// instruments come from the global providers, which are no-ops by default.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("docflow"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineRun)
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("docflow"))
//	metrics.RecordRun(ctx, "Completed", duration)
package observability
