package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/events"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
)

// Dependencies are the collaborators the engine talks to. Telemetry, Events,
// Ledger and Notifier are optional.
type Dependencies struct {
	Questions   repositories.QuestionSource
	Invalidator repositories.QuestionInvalidator
	Generator   repositories.QuestionGenerator
	Missions    repositories.MissionSource
	Submissions repositories.SubmissionService
	Economy     repositories.PointEconomy

	Telemetry repositories.TelemetrySink
	Events    events.EventPublisher
	Ledger    repositories.PerformanceRepository
	Notifier  ScrollNotifier
}

// ServiceManager exposes every engine service.
type ServiceManager interface {
	Lesson() LessonService
	Answer() AnswerService
	Submission() SubmissionCoordinator
	Hint() HintController
	Mission() MissionService
	Report() ReportService
	Registry() *SessionRegistry

	// Shutdown drains pending telemetry until ctx is done.
	Shutdown(ctx context.Context) error
}

type serviceManager struct {
	registry   *SessionRegistry
	lesson     LessonService
	answer     AnswerService
	submission SubmissionCoordinator
	hint       HintController
	mission    MissionService
	report     ReportService
}

func NewServiceManager(deps Dependencies, config EngineConfig, v *validator.Validator, logger *slog.Logger) ServiceManager {
	config = config.withDefaults()
	if v == nil {
		v = validator.New()
	}
	if deps.Notifier == nil {
		deps.Notifier = NewLogScrollNotifier(logger)
	}

	newLogger := func(component string) *ServiceLogger {
		return NewServiceLogger(logger, LogConfig{Service: "learning-engine", Component: component})
	}

	registry := NewSessionRegistry(config.Clock)
	tasks := newBackgroundTasks(config.TelemetryTimeout, newLogger("telemetry"))
	renderer := render.NewRenderer(config.HintPolicy)

	return &serviceManager{
		registry:   registry,
		lesson:     NewLessonService(registry, renderer, deps, v, config, newLogger("lesson")),
		answer:     NewAnswerService(registry, newLogger("answer")),
		submission: NewSubmissionCoordinator(registry, deps, config, tasks, newLogger("submission")),
		hint:       NewHintController(registry, deps, config.HintPolicy, tasks, newLogger("hint")),
		mission:    NewMissionService(registry, deps.Notifier, config, newLogger("mission")),
		report:     NewReportService(registry, deps.Ledger, newLogger("report")),
	}
}

func (m *serviceManager) Lesson() LessonService             { return m.lesson }
func (m *serviceManager) Answer() AnswerService             { return m.answer }
func (m *serviceManager) Submission() SubmissionCoordinator { return m.submission }
func (m *serviceManager) Hint() HintController              { return m.hint }
func (m *serviceManager) Mission() MissionService           { return m.mission }
func (m *serviceManager) Report() ReportService             { return m.report }
func (m *serviceManager) Registry() *SessionRegistry        { return m.registry }

func (m *serviceManager) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.submission.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSweeper drops idle sessions every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, registry *SessionRegistry, interval, maxIdle time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(maxIdle); n > 0 {
				logger.Info("Dropped idle sessions", "count", n, "open", registry.Len())
			}
		}
	}
}

type logScrollNotifier struct {
	logger *slog.Logger
}

// NewLogScrollNotifier records scroll requests in the log. The HTTP surface
// carries the same signal in ChapterResponse.ScrollToTop.
func NewLogScrollNotifier(logger *slog.Logger) ScrollNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &logScrollNotifier{logger: logger}
}

func (n *logScrollNotifier) ScrollToTop(sessionID string, chapter int) {
	n.logger.Debug("Scroll to top", "session_id", sessionID, "chapter", chapter)
}
