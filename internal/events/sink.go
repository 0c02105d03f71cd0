package events

import (
	"context"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// EventSink adapts an EventPublisher to the telemetry sink contract.
type EventSink struct {
	publisher EventPublisher
}

func NewEventSink(publisher EventPublisher) *EventSink {
	return &EventSink{publisher: publisher}
}

func (s *EventSink) Forward(ctx context.Context, batch *models.GradedBatch) error {
	return s.publisher.PublishTelemetryEvent(ctx, NewLessonGradedEvent(batch))
}
