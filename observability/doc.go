// Package observability wires OpenTelemetry tracing and metrics for modkit.
//
// Providers are installed globally by Init (or InitTracer / InitMeter) and
// picked up by the kernel through otel.Tracer and otel.Meter:
//
//	p, err := observability.Init(ctx, cfg.Observability, "modkit", "1.0.0", "development")
//	defer p.Shutdown(ctx)
//
//	metrics, err := observability.NewKernelMetrics(observability.Meter(observability.InstrumentationName))
//	k := kernel.New(kernel.WithMetrics(metrics))
package observability
