package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "travelbro-server/chat"

// GetTracer returns the tracer for the chat service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartTurnSpan starts a span covering one conversational turn.
func StartTurnSpan(ctx context.Context, tripID, sessionToken string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "chat.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("chat.trip_id", tripID),
			attribute.String("chat.session_token", sessionToken),
		),
	)
}

// StartToolSpan starts a span for a grounding tool call.
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "tool."+toolName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tool.name", toolName)),
	)
}

// StartVisionSpan starts a span for an image-understanding call.
func StartVisionSpan(ctx context.Context, tripID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "vision.analyze",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("chat.trip_id", tripID)),
	)
}

// EndToolSpan closes a tool span, marking it failed when the call did not
// produce a usable result.
func EndToolSpan(span trace.Span, success bool, summary string) {
	if !success {
		span.SetStatus(codes.Error, summary)
	}
	span.End()
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
