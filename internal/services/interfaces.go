package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/session"
)

// LessonService opens, refreshes and closes sessions.
type LessonService interface {
	Open(ctx context.Context, lessonID, userID string) (*SessionResponse, error)
	OpenMission(ctx context.Context, missionID, userID string) (*SessionResponse, error)
	Get(ctx context.Context, sessionID string) (*SessionResponse, error)
	Close(ctx context.Context, sessionID string) error
	Generate(ctx context.Context, sessionID string) (*SessionResponse, error)
	Retry(ctx context.Context, sessionID string) (*SessionResponse, error)
}

// AnswerService captures user input into the session's answers.
type AnswerService interface {
	SetAnswer(ctx context.Context, sessionID, questionID string, req *AnswerRequest) (*WidgetResponse, error)
	SetBlank(ctx context.Context, sessionID, questionID string, index int, value string) (*WidgetResponse, error)
	BeginDrag(ctx context.Context, sessionID, questionID, itemID string) (*WidgetResponse, error)
	Drop(ctx context.Context, sessionID, questionID string, req *DropRequest) (*WidgetResponse, error)
	ClearSlot(ctx context.Context, sessionID, questionID, slotID string) (*WidgetResponse, error)
}

// SubmissionCoordinator sends answers to the scoring service and records verdicts.
type SubmissionCoordinator interface {
	SubmitOne(ctx context.Context, sessionID, questionID string) (*SubmitResponse, error)
	SubmitAll(ctx context.Context, sessionID string) (*SubmitResponse, error)
	// Wait blocks until every telemetry forward started so far has finished.
	Wait()
}

// HintController reveals hints against the point economy.
type HintController interface {
	Reveal(ctx context.Context, sessionID, questionID string) (*HintResponse, error)
	Toggle(ctx context.Context, sessionID, questionID string) (*HintResponse, error)
}

// MissionService navigates the chapters of a mission session.
type MissionService interface {
	Chapter(ctx context.Context, sessionID string) (*ChapterResponse, error)
	Advance(ctx context.Context, sessionID string) (*ChapterResponse, error)
	Retreat(ctx context.Context, sessionID string) (*ChapterResponse, error)
	Score(ctx context.Context, sessionID string) (*models.MissionScore, error)
	Retry(ctx context.Context, sessionID string) (*ChapterResponse, error)
}

// ReportService exports graded results.
type ReportService interface {
	ExportSession(ctx context.Context, sessionID, format string, w io.Writer) (*ReportInfo, error)
	ExportLedger(ctx context.Context, lessonID, format string, w io.Writer) (*ReportInfo, error)
}

// ScrollNotifier is told when a chapter change should scroll the view to the top.
type ScrollNotifier interface {
	ScrollToTop(sessionID string, chapter int)
}

// EngineConfig holds the per-session invariants and policies.
type EngineConfig struct {
	HintPolicy          render.HintPolicy
	SingleOccupancy     bool
	MissingStartWindow  time.Duration
	CompletionThreshold float64
	TelemetryTimeout    time.Duration
	Clock               session.Clock
}

const DefaultCompletionThreshold = 0.70

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		HintPolicy:          render.DefaultHintPolicy(),
		MissingStartWindow:  session.DefaultMissingStartWindow,
		CompletionThreshold: DefaultCompletionThreshold,
		TelemetryTimeout:    5 * time.Second,
		Clock:               time.Now,
	}
}

func (c EngineConfig) withDefaults() EngineConfig {
	d := DefaultEngineConfig()
	if c.MissingStartWindow <= 0 {
		c.MissingStartWindow = d.MissingStartWindow
	}
	if c.CompletionThreshold <= 0 {
		c.CompletionThreshold = d.CompletionThreshold
	}
	if c.TelemetryTimeout <= 0 {
		c.TelemetryTimeout = d.TelemetryTimeout
	}
	if c.Clock == nil {
		c.Clock = d.Clock
	}
	return c
}
