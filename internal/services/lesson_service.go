package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
)

type lessonService struct {
	registry    *SessionRegistry
	renderer    *render.Renderer
	questions   repositories.QuestionSource
	invalidator repositories.QuestionInvalidator
	generator   repositories.QuestionGenerator
	missions    repositories.MissionSource
	validator   *validator.Validator
	config      EngineConfig
	logger      *ServiceLogger
}

func NewLessonService(
	registry *SessionRegistry,
	renderer *render.Renderer,
	deps Dependencies,
	validator *validator.Validator,
	config EngineConfig,
	logger *ServiceLogger,
) LessonService {
	return &lessonService{
		registry:    registry,
		renderer:    renderer,
		questions:   deps.Questions,
		invalidator: deps.Invalidator,
		generator:   deps.Generator,
		missions:    deps.Missions,
		validator:   validator,
		config:      config.withDefaults(),
		logger:      logger,
	}
}

func (s *lessonService) Open(ctx context.Context, lessonID, userID string) (resp *SessionResponse, err error) {
	log := s.logger.WithOperation(ctx, "open_lesson", userID, "")
	defer func() { log.LogResult("", err) }()

	set, err := s.questions.ListQuestions(ctx, lessonID)
	if err != nil {
		return nil, &FetchError{Resource: "questions", ID: lessonID, Err: err}
	}
	if set.LessonID == "" {
		set.LessonID = lessonID
	}

	ws := newWorkspace(lessonID, userID, *set, s.config, s.renderer)
	log.sessionID = ws.ID()
	s.logger.LogQuestionIssues(ctx, ws.ID(), s.validator.Question().ValidateSet(set))
	s.registry.Add(ws)

	ws.Session.Lock()
	defer ws.Session.Unlock()
	return buildSessionResponse(ws, s.config.CompletionThreshold), nil
}

func (s *lessonService) OpenMission(ctx context.Context, missionID, userID string) (resp *SessionResponse, err error) {
	log := s.logger.WithOperation(ctx, "open_mission", userID, "")
	defer func() { log.LogResult("", err) }()

	mission, err := s.missions.GetMission(ctx, missionID)
	if err != nil {
		return nil, &FetchError{Resource: "mission", ID: missionID, Err: err}
	}
	if mission.ID == "" {
		mission.ID = missionID
	}

	set := models.QuestionSet{LessonID: mission.ID, Questions: mission.Questions()}
	ws := newWorkspace(mission.ID, userID, set, s.config, s.renderer)
	ws.Session.MissionID = mission.ID
	ws.Mission = mission
	log.sessionID = ws.ID()
	s.logger.LogQuestionIssues(ctx, ws.ID(), s.validator.Question().ValidateSet(&set))
	s.registry.Add(ws)

	ws.Session.Lock()
	defer ws.Session.Unlock()
	return buildSessionResponse(ws, s.config.CompletionThreshold), nil
}

func (s *lessonService) Get(ctx context.Context, sessionID string) (*SessionResponse, error) {
	ws, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	ws.Session.Lock()
	defer ws.Session.Unlock()
	return buildSessionResponse(ws, s.config.CompletionThreshold), nil
}

func (s *lessonService) Close(ctx context.Context, sessionID string) error {
	if !s.registry.Remove(sessionID) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.logger.Slog().InfoContext(ctx, "Session closed", "session_id", sessionID)
	return nil
}

// Generate asks the backend for more questions, then starts a fresh round on
// the re-fetched list. On failure the current round is left untouched.
func (s *lessonService) Generate(ctx context.Context, sessionID string) (resp *SessionResponse, err error) {
	ws, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithOperation(ctx, "generate_questions", ws.UserID, sessionID)
	defer func() { log.LogResult("", err) }()

	if ws.IsMission() {
		return nil, ErrNotALesson
	}

	sess := ws.Session
	if err := sess.BeginRequest("generate"); err != nil {
		return nil, err
	}
	defer sess.EndRequest()

	if err := s.generator.Generate(ctx, sess.LessonID); err != nil {
		return nil, &FetchError{Resource: "generated questions", ID: sess.LessonID, Err: err}
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, sess.LessonID); err != nil {
			s.logger.Slog().WarnContext(ctx, "Question cache invalidation failed",
				"lesson_id", sess.LessonID, "error", err)
		}
	}

	set, err := s.questions.ListQuestions(ctx, sess.LessonID)
	if err != nil {
		return nil, &FetchError{Resource: "questions", ID: sess.LessonID, Err: err}
	}
	s.logger.LogQuestionIssues(ctx, sessionID, s.validator.Question().ValidateSet(set))

	sess.Lock()
	defer sess.Unlock()
	sess.Replace(*set)
	ws.Drag.Reset()
	ws.Board.InvalidateAll()
	ws.chapter = 0
	return buildSessionResponse(ws, s.config.CompletionThreshold), nil
}

// Retry clears answers, results, hints and timers for the current questions.
func (s *lessonService) Retry(ctx context.Context, sessionID string) (resp *SessionResponse, err error) {
	ws, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithOperation(ctx, "retry", ws.UserID, sessionID)
	defer func() { log.LogResult("", err) }()

	ws.Session.Lock()
	defer ws.Session.Unlock()
	if op := ws.Session.InFlight(); op != "" {
		return nil, fmt.Errorf("%w: %s", ErrRequestInFlight, op)
	}
	ws.resetRound()
	return buildSessionResponse(ws, s.config.CompletionThreshold), nil
}
