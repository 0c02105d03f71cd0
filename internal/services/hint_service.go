package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/events"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
)

type hintController struct {
	registry  *SessionRegistry
	economy   repositories.PointEconomy
	publisher events.EventPublisher
	policy    render.HintPolicy
	tasks     *backgroundTasks
	logger    *ServiceLogger
}

func NewHintController(registry *SessionRegistry, deps Dependencies, policy render.HintPolicy, tasks *backgroundTasks, logger *ServiceLogger) HintController {
	return &hintController{
		registry:  registry,
		economy:   deps.Economy,
		publisher: deps.Events,
		policy:    policy,
		tasks:     tasks,
		logger:    logger,
	}
}

// Reveal shows the hint of a graded question. The first reveal is paid through
// the point economy; later reveals show the cached hint for free. A rejection
// leaves the hint hidden and the balance unchanged.
func (h *hintController) Reveal(ctx context.Context, sessionID, questionID string) (resp *HintResponse, err error) {
	ws, err := h.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := h.logger.WithOperation(ctx, "reveal_hint", ws.UserID, sessionID)
	defer func() { log.LogResult(questionID, err) }()

	sess := ws.Session
	sess.Lock()
	if err := h.checkHint(ws, questionID); err != nil {
		sess.Unlock()
		return nil, err
	}
	if sess.Hints.Paid(questionID) {
		defer sess.Unlock()
		sess.Hints.Reveal(questionID)
		ws.Board.Invalidate(questionID)
		return h.response(ws, questionID, false, 0), nil
	}
	sess.Unlock()

	if err := sess.BeginRequest("hint"); err != nil {
		return nil, err
	}
	defer sess.EndRequest()

	// The round may have been reset between the check and the claim.
	sess.Lock()
	err = h.checkHint(ws, questionID)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	spend, err := h.economy.SpendForHint(ctx)
	if err != nil {
		return nil, &HintRejectedError{QuestionID: questionID, Err: err}
	}
	if !spend.Success {
		return nil, &HintRejectedError{QuestionID: questionID, Message: spend.Message}
	}

	sess.Lock()
	defer sess.Unlock()
	switch {
	case spend.UpdatedPoints != nil:
		sess.SetBalance(*spend.UpdatedPoints)
	case spend.Cost > 0:
		if balance, ok := sess.Balance(); ok {
			sess.SetBalance(balance - spend.Cost)
		}
	}
	sess.Hints.Reveal(questionID)
	ws.Board.Invalidate(questionID)

	if h.publisher != nil {
		event := events.NewHintRevealedEvent(sessionID, questionID, ws.UserID, spend)
		h.tasks.run(ctx, "hint_event", sessionID, func(ctx context.Context) error {
			return h.publisher.PublishTelemetryEvent(ctx, event)
		})
	}
	return h.response(ws, questionID, true, spend.Cost), nil
}

// Toggle flips visibility of an already paid hint at no cost.
func (h *hintController) Toggle(ctx context.Context, sessionID, questionID string) (resp *HintResponse, err error) {
	ws, err := h.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := h.logger.WithOperation(ctx, "toggle_hint", ws.UserID, sessionID)
	defer func() { log.LogResult(questionID, err) }()

	sess := ws.Session
	sess.Lock()
	defer sess.Unlock()
	if _, ok := sess.Question(questionID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	if !sess.Hints.Paid(questionID) {
		return nil, ErrHintNotPaid
	}
	sess.Hints.Toggle(questionID)
	ws.Board.Invalidate(questionID)
	return h.response(ws, questionID, false, 0), nil
}

// checkHint verifies the question is graded with a hint the policy offers.
// Callers hold the session lock.
func (h *hintController) checkHint(ws *Workspace, questionID string) error {
	if _, ok := ws.Session.Question(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	res, ok := ws.Session.Results.Get(questionID)
	if !ok || res.Hint == "" {
		return ErrHintUnavailable
	}
	if !h.policy.Allows(res) {
		return fmt.Errorf("%w: retry %d of %d", ErrHintLocked, res.Retry, h.policy.MinRetries)
	}
	return nil
}

func (h *hintController) response(ws *Workspace, questionID string, charged bool, cost int) *HintResponse {
	w, _ := ws.Board.Widget(questionID)
	resp := &HintResponse{
		QuestionID: questionID,
		Visible:    ws.Session.Hints.Visible(questionID),
		Charged:    charged,
		Cost:       cost,
		Widget:     w,
	}
	if balance, ok := ws.Session.Balance(); ok {
		resp.Balance = &balance
	}
	return resp
}
