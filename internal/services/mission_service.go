package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

type missionService struct {
	registry *SessionRegistry
	notifier ScrollNotifier
	config   EngineConfig
	logger   *ServiceLogger
}

func NewMissionService(registry *SessionRegistry, notifier ScrollNotifier, config EngineConfig, logger *ServiceLogger) MissionService {
	return &missionService{
		registry: registry,
		notifier: notifier,
		config:   config.withDefaults(),
		logger:   logger,
	}
}

// withMission runs fn on a mission workspace with the session lock held.
func (m *missionService) withMission(sessionID string, fn func(ws *Workspace) error) error {
	ws, err := m.registry.Get(sessionID)
	if err != nil {
		return err
	}
	if !ws.IsMission() {
		return fmt.Errorf("%w: %s", ErrNotAMission, sessionID)
	}
	ws.Session.Lock()
	defer ws.Session.Unlock()
	return fn(ws)
}

func (m *missionService) Chapter(ctx context.Context, sessionID string) (resp *ChapterResponse, err error) {
	err = m.withMission(sessionID, func(ws *Workspace) error {
		resp = buildChapterResponse(ws, false)
		return nil
	})
	return resp, err
}

// Advance moves to the next chapter; at the last chapter it does nothing.
func (m *missionService) Advance(ctx context.Context, sessionID string) (*ChapterResponse, error) {
	return m.move(ctx, sessionID, +1)
}

// Retreat moves to the previous chapter; at the first chapter it does nothing.
func (m *missionService) Retreat(ctx context.Context, sessionID string) (*ChapterResponse, error) {
	return m.move(ctx, sessionID, -1)
}

func (m *missionService) move(ctx context.Context, sessionID string, step int) (resp *ChapterResponse, err error) {
	var moved bool
	var chapter int
	err = m.withMission(sessionID, func(ws *Workspace) error {
		next := ws.chapter + step
		if next >= 0 && next < len(ws.Mission.Chapters) {
			ws.chapter = next
			moved = true
		}
		chapter = ws.chapter
		resp = buildChapterResponse(ws, moved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if moved && m.notifier != nil {
		m.notifier.ScrollToTop(sessionID, chapter)
	}
	m.logger.Slog().DebugContext(ctx, "Chapter navigation",
		"session_id", sessionID,
		"chapter", chapter,
		"moved", moved)
	return resp, nil
}

func (m *missionService) Score(ctx context.Context, sessionID string) (score *models.MissionScore, err error) {
	err = m.withMission(sessionID, func(ws *Workspace) error {
		s := missionScore(ws, m.config.CompletionThreshold)
		score = &s
		return nil
	})
	return score, err
}

// Retry resets answers, results and hints of the whole mission and returns to the first chapter.
func (m *missionService) Retry(ctx context.Context, sessionID string) (resp *ChapterResponse, err error) {
	err = m.withMission(sessionID, func(ws *Workspace) error {
		if op := ws.Session.InFlight(); op != "" {
			return fmt.Errorf("%w: %s", ErrRequestInFlight, op)
		}
		moved := ws.chapter != 0
		ws.resetRound()
		resp = buildChapterResponse(ws, moved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.ScrollToTop && m.notifier != nil {
		m.notifier.ScrollToTop(sessionID, 0)
	}
	return resp, nil
}
