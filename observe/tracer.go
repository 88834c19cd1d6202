package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RouteMeta describes the request an access decision is made for.
type RouteMeta struct {
	Class  string // endpoint class, e.g. "metrics" or "general" (required)
	Method string // HTTP method (optional)
	Path   string // request path (optional)
}

// SpanName returns the deterministic span name for the route class.
// Format: gate.check.<class>
func (m RouteMeta) SpanName() string {
	return "gate.check." + m.Class
}

// Validate reports whether the metadata is usable for telemetry.
func (m RouteMeta) Validate() error {
	if m.Class == "" {
		return ErrMissingRouteClass
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing for access decisions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one access decision.
	StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span)

	// EndSpan ends the span, marking it denied when err is non-nil.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("gate.class", meta.Class),
		attribute.Bool("gate.denied", false),
	}
	if meta.Method != "" {
		attrs = append(attrs, attribute.String("http.request.method", meta.Method))
	}
	if meta.Path != "" {
		attrs = append(attrs, attribute.String("url.path", meta.Path))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("gate.denied", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
