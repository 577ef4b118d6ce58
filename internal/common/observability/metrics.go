package observability

import (
	"context"
	"time"

	"travel-agents/internal/common/config"
	"travel-agents/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability records per-turn OpenTelemetry metrics and spans. A nil
// *Observability is a usable no-op, which is what most tests pass.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	turnCounter    otelmetric.Int64Counter
	turnDuration   otelmetric.Float64Histogram
	logger         logger.Logger
}

type Option func(*options)

type options struct {
	processors []sdktrace.SpanProcessor
}

// WithSpanProcessor adds a span processor to the tracer provider. Tests use
// it with tracetest.SpanRecorder.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.processors = append(o.processors, sp)
	}
}

func New(serviceName, serviceVersion string, tracing config.TracingConfig, log logger.Logger, opts ...Option) *Observability {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	obs := &Observability{logger: log}
	obs.initMetrics(serviceName)

	if tracing.Enabled {
		provider, err := newTracerProvider(serviceName, serviceVersion, tracing, o.processors)
		if err != nil {
			log.Warn("Tracing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			otel.SetTracerProvider(provider)
			obs.tracerProvider = provider
			obs.tracer = provider.Tracer(serviceName)
			log.Info("Tracing enabled", map[string]interface{}{
				"jaegerEndpoint": tracing.JaegerEndpoint,
				"sampleRatio":    tracing.SampleRatio,
			})
		}
	}

	return obs
}

// initMetrics registers the Prometheus exporter. A second registration in the
// same process fails and leaves metrics disabled.
func (o *Observability) initMetrics(serviceName string) {
	exporter, err := prometheus.New()
	if err != nil {
		o.logger.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o.turnCounter, _ = meter.Int64Counter(
		"turns.processed",
		otelmetric.WithDescription("Number of conversation turns processed"),
	)
	o.turnDuration, _ = meter.Float64Histogram(
		"turns.duration",
		otelmetric.WithDescription("Conversation turn duration"),
		otelmetric.WithUnit("ms"),
	)
	o.meterProvider = provider
}

func (o *Observability) RecordTurnProcessed(ctx context.Context, intent, status string) {
	if o == nil || o.turnCounter == nil {
		return
	}
	o.turnCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordTurnDuration(ctx context.Context, duration time.Duration, intent string) {
	if o == nil || o.turnDuration == nil {
		return
	}
	o.turnDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("intent", intent),
	))
}

// StartSpan starts a child span of whatever span ctx carries. With tracing
// off the returned span records nothing.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, noopSpan(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
