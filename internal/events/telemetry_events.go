package events

import (
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of telemetry events
type EventType string

const (
	EventLessonGraded   EventType = "lesson.graded"
	EventQuestionGraded EventType = "question.graded"
	EventHintRevealed   EventType = "hint.revealed"
)

const (
	eventSource  = "learning-engine"
	eventVersion = "1.0"
)

// TelemetryEvent is the envelope of every published event
type TelemetryEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// LessonGradedEvent is emitted after a full submission succeeded
type LessonGradedEvent struct {
	SessionID    string                  `json:"session_id"`
	LessonID     string                  `json:"lesson_id"`
	MissionID    string                  `json:"mission_id,omitempty"`
	UserID       string                  `json:"user_id,omitempty"`
	TotalPoints  int                     `json:"total_points"`
	CorrectCount int                     `json:"correct_count"`
	Questions    []models.GradedQuestion `json:"questions"`
	SubmittedAt  time.Time               `json:"submitted_at"`
}

// QuestionGradedEvent is emitted after a single-question submission
type QuestionGradedEvent struct {
	SessionID string                `json:"session_id"`
	LessonID  string                `json:"lesson_id"`
	UserID    string                `json:"user_id,omitempty"`
	Question  models.GradedQuestion `json:"question"`
}

type HintRevealedEvent struct {
	SessionID     string `json:"session_id"`
	QuestionID    string `json:"question_id"`
	UserID        string `json:"user_id,omitempty"`
	Cost          int    `json:"cost"`
	UpdatedPoints *int   `json:"updated_points,omitempty"`
}

func newEvent(eventType EventType, data interface{}) *TelemetryEvent {
	return &TelemetryEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
		Metadata:  make(map[string]interface{}),
	}
}

// NewLessonGradedEvent builds the event for a graded batch
func NewLessonGradedEvent(batch *models.GradedBatch) *TelemetryEvent {
	event := newEvent(EventLessonGraded, LessonGradedEvent{
		SessionID:    batch.SessionID,
		LessonID:     batch.LessonID,
		MissionID:    batch.MissionID,
		UserID:       batch.UserID,
		TotalPoints:  batch.TotalPoints,
		CorrectCount: batch.CorrectCount(),
		Questions:    batch.Questions,
		SubmittedAt:  batch.SubmittedAt,
	})
	event.Metadata["session_id"] = batch.SessionID
	event.Metadata["question_count"] = len(batch.Questions)
	return event
}

func NewQuestionGradedEvent(sessionID, lessonID, userID string, q models.GradedQuestion) *TelemetryEvent {
	return newEvent(EventQuestionGraded, QuestionGradedEvent{
		SessionID: sessionID,
		LessonID:  lessonID,
		UserID:    userID,
		Question:  q,
	})
}

func NewHintRevealedEvent(sessionID, questionID, userID string, spend *models.HintSpend) *TelemetryEvent {
	return newEvent(EventHintRevealed, HintRevealedEvent{
		SessionID:     sessionID,
		QuestionID:    questionID,
		UserID:        userID,
		Cost:          spend.Cost,
		UpdatedPoints: spend.UpdatedPoints,
	})
}
