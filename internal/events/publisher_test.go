package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBatch() *models.GradedBatch {
	return &models.GradedBatch{
		SessionID:   "s-1",
		LessonID:    "12",
		UserID:      "u-1",
		SubmittedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		TotalPoints: 20,
		Questions: []models.GradedQuestion{
			{QuestionID: "q1", QuestionType: models.SingleChoice, Answer: json.RawMessage(`"A"`), Result: models.SubmissionResult{QuestionID: "q1", IsCorrect: true, Points: 10}},
			{QuestionID: "q2", QuestionType: models.FillInBlank, Answer: json.RawMessage(`["x"]`), Result: models.SubmissionResult{QuestionID: "q2", Points: 0}},
		},
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(topic string, messages ...*message.Message) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error { return nil }

func TestKafkaEventPublisher_PublishesLessonGraded(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), "telemetry")
	require.NoError(t, err)

	publisher := newKafkaEventPublisher(pubSub, "telemetry", testLogger())
	sink := NewEventSink(publisher)
	require.NoError(t, sink.Forward(context.Background(), testBatch()))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, string(EventLessonGraded), msg.Metadata.Get("event_type"))
		assert.Equal(t, eventSource, msg.Metadata.Get("source"))

		var event struct {
			ID   string            `json:"id"`
			Type EventType         `json:"type"`
			Data LessonGradedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, msg.UUID, event.ID)
		assert.Equal(t, EventLessonGraded, event.Type)
		assert.Equal(t, "12", event.Data.LessonID)
		assert.Equal(t, 20, event.Data.TotalPoints)
		assert.Equal(t, 1, event.Data.CorrectCount)
		assert.Len(t, event.Data.Questions, 2)
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}
}

func TestKafkaEventPublisher_PublishError(t *testing.T) {
	publisher := newKafkaEventPublisher(failingPublisher{}, "telemetry", testLogger())
	err := publisher.PublishTelemetryEvent(context.Background(), NewLessonGradedEvent(testBatch()))
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(testLogger())
	sink := NewEventSink(mock)

	require.NoError(t, sink.Forward(context.Background(), testBatch()))
	spend := &models.HintSpend{Success: true, Cost: 5}
	require.NoError(t, mock.PublishTelemetryEvent(context.Background(), NewHintRevealedEvent("s-1", "q2", "u-1", spend)))

	events := mock.GetPublishedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventLessonGraded, events[0].Type)
	assert.Equal(t, EventHintRevealed, events[1].Type)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, 2, events[0].Metadata["question_count"])

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
	assert.NoError(t, mock.Close())
}
