package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents opens spans for domain operations, above the HTTP and DB layers
type BusinessEvents struct {
	tracer trace.Tracer
}

// NewBusinessEvents creates a new business events tracer
func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{
		tracer: otel.Tracer("business-events"),
	}
}

// FeedEventAttrs describes a feed read
type FeedEventAttrs struct {
	UserID    string
	Limit     int64
	Followees int64
	Batches   int64
}

// TraceGetFeed creates a span for feed retrieval
func (be *BusinessEvents) TraceGetFeed(ctx context.Context, feedType string, attrs FeedEventAttrs) (context.Context, trace.Span) {
	ctx, span := be.tracer.Start(ctx, "feed.get",
		trace.WithAttributes(
			attribute.String("feed.type", feedType),
			attribute.Int64("feed.limit", attrs.Limit),
		),
	)
	if attrs.UserID != "" {
		span.SetAttributes(attribute.String("user.id", attrs.UserID))
	}
	if attrs.Followees > 0 {
		span.SetAttributes(
			attribute.Int64("feed.followees", attrs.Followees),
			attribute.Int64("feed.batches", attrs.Batches),
		)
	}
	return ctx, span
}

// TraceAction creates a span for a social action (follow, like, comment, ...)
func (be *BusinessEvents) TraceAction(ctx context.Context, action string, actorID string, targetID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "action."+action,
		trace.WithAttributes(
			attribute.String("action.name", action),
			attribute.String("actor.id", actorID),
			attribute.String("target.id", targetID),
		),
	)
}

// TraceNotification creates a span for notification dispatch
func (be *BusinessEvents) TraceNotification(ctx context.Context, kind string, recipientID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "notification.dispatch",
		trace.WithAttributes(
			attribute.String("notification.kind", kind),
			attribute.String("recipient.id", recipientID),
		),
	)
}

// RecordError marks the span failed
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
}

// RecordDegraded tags a span whose primary write succeeded but a later step failed
func RecordDegraded(span trace.Span, step string, err error) {
	span.SetAttributes(
		attribute.Bool("action.degraded", true),
		attribute.String("action.failed_step", step),
	)
	if err != nil {
		span.RecordError(err)
	}
}

var globalBusinessEvents = NewBusinessEvents()

// GetBusinessEvents returns the shared business events tracer
func GetBusinessEvents() *BusinessEvents {
	return globalBusinessEvents
}
