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

	"github.com/kbukum/modkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
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

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names recorded by the kernel.
const (
	MetricModuleLoads        = "modkit.module.loads"
	MetricModuleLoadFailures = "modkit.module.load_failures"
	MetricModuleUnloads      = "modkit.module.unloads"
	MetricModuleLoadDuration = "modkit.module.load.duration"
	MetricModulesLoaded      = "modkit.modules.loaded"
	MetricBatchSize          = "modkit.kernel.batch.size"
)

// KernelMetrics holds the instruments a kernel records module loads on.
type KernelMetrics struct {
	loads    metric.Int64Counter
	failures metric.Int64Counter
	unloads  metric.Int64Counter
	duration metric.Float64Histogram
	loaded   metric.Int64UpDownCounter
	batch    metric.Int64Histogram
}

// NewKernelMetrics creates the kernel instruments on the given meter.
func NewKernelMetrics(meter metric.Meter) (*KernelMetrics, error) {
	loads, err := meter.Int64Counter(MetricModuleLoads,
		metric.WithDescription("Modules loaded successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricModuleLoads, err)
	}

	failures, err := meter.Int64Counter(MetricModuleLoadFailures,
		metric.WithDescription("Module loads that failed or were rejected"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricModuleLoadFailures, err)
	}

	unloads, err := meter.Int64Counter(MetricModuleUnloads,
		metric.WithDescription("Modules unloaded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricModuleUnloads, err)
	}

	duration, err := meter.Float64Histogram(MetricModuleLoadDuration,
		metric.WithDescription("Duration of a module's Load in seconds, dependencies included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricModuleLoadDuration, err)
	}

	loaded, err := meter.Int64UpDownCounter(MetricModulesLoaded,
		metric.WithDescription("Modules currently loaded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricModulesLoaded, err)
	}

	batch, err := meter.Int64Histogram(MetricBatchSize,
		metric.WithDescription("Number of modules submitted per kernel load call"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricBatchSize, err)
	}

	return &KernelMetrics{
		loads:    loads,
		failures: failures,
		unloads:  unloads,
		duration: duration,
		loaded:   loaded,
		batch:    batch,
	}, nil
}

// RecordBatch records the size of one load call.
func (m *KernelMetrics) RecordBatch(ctx context.Context, kernel string, size int) {
	m.batch.Record(ctx, int64(size), metric.WithAttributes(attribute.String(AttrKernel, kernel)))
}

// RecordLoad records a successful module load.
func (m *KernelMetrics) RecordLoad(ctx context.Context, kernel, id string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrKernel, kernel),
		attribute.String(AttrModule, id),
	)
	m.loads.Add(ctx, 1, attrs)
	m.loaded.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrKernel, kernel)))
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordFailure records a failed or rejected module load. reason is an
// error code such as MODULE_LOAD_FAILED.
func (m *KernelMetrics) RecordFailure(ctx context.Context, kernel, id, reason string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrKernel, kernel),
		attribute.String(AttrModule, id),
		attribute.String("reason", reason),
	))
}

// RecordUnload records a module unload.
func (m *KernelMetrics) RecordUnload(ctx context.Context, kernel, id string) {
	m.unloads.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrKernel, kernel),
		attribute.String(AttrModule, id),
	))
	m.loaded.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrKernel, kernel)))
}
