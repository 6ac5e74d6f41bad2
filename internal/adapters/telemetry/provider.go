package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/stratum/internal/core/ports"
)

// Attribute keys set on job spans.
const (
	AttrJobKind = "stratum.job.kind"
	AttrElement = "stratum.element"
	AttrCached  = "stratum.cached"
)

// outputEvent is the span event carrying a batch of command output.
const outputEvent = "output"

// NewProvider creates an SDK tracer provider feeding the given processors.
func NewProvider(processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := make([]sdktrace.TracerProviderOption, 0, len(processors))
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// OTelTracer implements ports.Tracer using OpenTelemetry.
type OTelTracer struct {
	provider trace.TracerProvider
	tracer   trace.Tracer
}

// NewOTelTracer creates a tracer named name on provider.
func NewOTelTracer(provider trace.TracerProvider, name string) *OTelTracer {
	return &OTelTracer{provider: provider, tracer: provider.Tracer(name)}
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		attrs = append(attrs, toAttribute(k, v))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	s := &OTelSpan{span: span}
	if span.IsRecording() {
		s.batcher = NewLineBatcher(0, 0, func(lines []string) {
			span.AddEvent(outputEvent, trace.WithAttributes(attribute.StringSlice("lines", lines)))
		})
	}
	return ctx, s
}

// EmitPlan records the planned jobs as an event on the span in ctx.
func (t *OTelTracer) EmitPlan(ctx context.Context, jobNames []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("jobs", jobNames),
		))
	}
}

// Shutdown flushes and stops the provider if it supports that.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	if p, ok := t.provider.(interface{ Shutdown(context.Context) error }); ok {
		return p.Shutdown(ctx)
	}
	return nil
}

// OTelSpan implements ports.Span. Written output becomes "output" events,
// one per flushed batch of lines.
type OTelSpan struct {
	span    trace.Span
	batcher *LineBatcher
}

// End flushes pending output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

// Write implements io.Writer.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher == nil {
		return len(p), nil
	}
	return s.batcher.Write(p)
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
