package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "contentpilot/workflow-api"

// GetTracer returns the tracer for the workflow service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartWorkflowSpan starts a span for one coordinator operation.
func StartWorkflowSpan(ctx context.Context, operation, conversationID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "workflow."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("workflow.operation", operation),
			attribute.String("workflow.conversation_id", conversationID),
		),
	)
}

// StartStageSpan starts a span for one generation stage invocation.
func StartStageSpan(ctx context.Context, role, conversationID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "stage."+role,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stage.role", role),
			attribute.String("stage.conversation_id", conversationID),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddStatusTransition adds a status transition event to a span.
func AddStatusTransition(span trace.Span, fromStatus, toStatus string) {
	span.AddEvent("status.transition",
		trace.WithAttributes(
			attribute.String("status.from", fromStatus),
			attribute.String("status.to", toStatus),
		),
	)
}

// AddRetryEvent adds a retry event to a span.
func AddRetryEvent(span trace.Span, attempt int, reason string) {
	span.AddEvent("retry",
		trace.WithAttributes(
			attribute.Int("retry.attempt", attempt),
			attribute.String("retry.reason", reason),
		),
	)
}
