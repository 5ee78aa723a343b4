package kernel

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/observability"
)

// Option configures a Kernel.
type Option func(*Kernel)

// WithName sets the kernel name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(k *Kernel) { k.name = name }
}

// WithContainer replaces the default container.
func WithContainer(c di.Container) Option {
	return func(k *Kernel) { k.container = c }
}

// WithComponents sets the component registry modules register into.
func WithComponents(r *component.Registry) Option {
	return func(k *Kernel) { k.components = r }
}

// WithLogger sets the kernel logger.
func WithLogger(l *logger.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

// WithMetrics enables metric recording.
func WithMetrics(m *observability.KernelMetrics) Option {
	return func(k *Kernel) { k.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(k *Kernel) { k.tracer = t }
}
