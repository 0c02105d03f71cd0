package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

type answerService struct {
	registry *SessionRegistry
	logger   *ServiceLogger
}

func NewAnswerService(registry *SessionRegistry, logger *ServiceLogger) AnswerService {
	return &answerService{
		registry: registry,
		logger:   logger,
	}
}

// mutate runs fn with the session lock held and returns the question's refreshed widget.
func (s *answerService) mutate(ctx context.Context, op, sessionID, questionID string, fn func(ws *Workspace, q *models.Question) error) (resp *WidgetResponse, err error) {
	ws, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithOperation(ctx, op, ws.UserID, sessionID)
	defer func() {
		if err != nil {
			log.LogResult(questionID, err)
		}
	}()

	ws.Session.Lock()
	defer ws.Session.Unlock()

	q, ok := ws.Session.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	if err := fn(ws, q); err != nil {
		return nil, err
	}

	w, _ := ws.Board.Widget(questionID)
	return &WidgetResponse{SessionID: sessionID, Widget: w}, nil
}

func (s *answerService) SetAnswer(ctx context.Context, sessionID, questionID string, req *AnswerRequest) (*WidgetResponse, error) {
	return s.mutate(ctx, "set_answer", sessionID, questionID, func(ws *Workspace, q *models.Question) error {
		value, err := models.DecodeAnswer(q.Type, req.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
		}
		if c, ok := value.(models.ChoiceAnswer); ok && c.Key != "" && !q.HasOption(c.Key) {
			return fmt.Errorf("%w: unknown option %q", ErrBadRequest, c.Key)
		}
		return ws.Session.Answers.Set(questionID, value)
	})
}

func (s *answerService) SetBlank(ctx context.Context, sessionID, questionID string, index int, value string) (*WidgetResponse, error) {
	return s.mutate(ctx, "set_blank", sessionID, questionID, func(ws *Workspace, q *models.Question) error {
		return ws.Session.Answers.SetBlank(questionID, index, value)
	})
}

func (s *answerService) BeginDrag(ctx context.Context, sessionID, questionID, itemID string) (*WidgetResponse, error) {
	return s.mutate(ctx, "begin_drag", sessionID, questionID, func(ws *Workspace, q *models.Question) error {
		return ws.Drag.Channel(questionID).BeginDrag(itemID)
	})
}

func (s *answerService) Drop(ctx context.Context, sessionID, questionID string, req *DropRequest) (*WidgetResponse, error) {
	return s.mutate(ctx, "drop", sessionID, questionID, func(ws *Workspace, q *models.Question) error {
		return ws.Drag.Channel(questionID).CompleteDrop(req.SlotID, req.ItemID)
	})
}

func (s *answerService) ClearSlot(ctx context.Context, sessionID, questionID, slotID string) (*WidgetResponse, error) {
	return s.mutate(ctx, "clear_slot", sessionID, questionID, func(ws *Workspace, q *models.Question) error {
		return ws.Drag.Clear(questionID, slotID)
	})
}
