package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer for pipeline operations.
const TracerName = "nojoin"

// Span attribute keys.
const (
	AttrRecordingID = "recording_id"
	AttrStage       = "stage"
	AttrUtterances  = "utterance_count"
	AttrTurns       = "turn_count"
	AttrLabels      = "label_count"
	AttrOperation   = "operation"
)

// Tracer provides tracing for pipeline runs and identity operations.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a pipeline tracer.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartRunSpan starts a root span for one pipeline run.
func (t *Tracer) StartRunSpan(ctx context.Context, recordingID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "nojoin.pipeline.run",
		trace.WithAttributes(
			attribute.String(AttrRecordingID, recordingID),
		),
	)
}

// StartStageSpan starts a span for one pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("nojoin.pipeline.stage.%s", stage),
		trace.WithAttributes(
			attribute.String(AttrStage, stage),
		),
	)
}

// StartIdentitySpan starts a span for an identity operation.
func (t *Tracer) StartIdentitySpan(ctx context.Context, operation, recordingID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("nojoin.identity.%s", operation),
		trace.WithAttributes(
			attribute.String(AttrOperation, operation),
			attribute.String(AttrRecordingID, recordingID),
		),
	)
}

// EndSpan records err (if any) and closes the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
