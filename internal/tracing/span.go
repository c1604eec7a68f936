package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartOperationSpan starts a client span for one content service call.
func StartOperationSpan(ctx context.Context, tracer trace.Tracer, operation, method, url string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "content "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
		attribute.String("glt.operation", operation),
	)
	return ctx, span
}

// StartWorkerSpan starts the span that parents every call made by one worker.
func StartWorkerSpan(ctx context.Context, tracer trace.Tracer, scenario string, worker int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "scenario "+scenario,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("glt.scenario", scenario),
		attribute.Int("glt.worker", worker),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
