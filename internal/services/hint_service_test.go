package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/events"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// gradedSession opens a lesson with one single-choice question graded with res.
func gradedSession(t *testing.T, e *testEngine, res models.SubmissionResult) string {
	t.Helper()
	id := e.open(t, "12", choiceQuestion("q1"))
	e.submissions.On("Submit", mock.Anything, mock.Anything).
		Return([]models.SubmissionResult{res}, nil)
	_, err := e.manager.Submission().SubmitAll(context.Background(), id)
	require.NoError(t, err)
	e.manager.Submission().Wait()
	return id
}

func TestHintController_RevealChargesOnce(t *testing.T) {
	e := newTestEngine(t, 3)
	id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", Hint: "Think about scope", Retry: 3})
	updated := 40
	e.economy.On("SpendForHint", mock.Anything).
		Return(&models.HintSpend{Success: true, UpdatedPoints: &updated, Cost: 10}, nil).Once()
	ctx := context.Background()

	resp, err := e.manager.Hint().Reveal(ctx, id, "q1")
	require.NoError(t, err)
	assert.True(t, resp.Charged)
	assert.True(t, resp.Visible)
	assert.Equal(t, 10, resp.Cost)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, 40, *resp.Balance)
	require.NotNil(t, resp.Widget.Feedback.Hint)
	assert.Equal(t, "Think about scope", resp.Widget.Feedback.Hint.Text)

	toggled, err := e.manager.Hint().Toggle(ctx, id, "q1")
	require.NoError(t, err)
	assert.False(t, toggled.Visible)
	assert.Empty(t, toggled.Widget.Feedback.Hint.Text)

	again, err := e.manager.Hint().Reveal(ctx, id, "q1")
	require.NoError(t, err)
	assert.False(t, again.Charged)
	assert.True(t, again.Visible)
	assert.Equal(t, 40, *again.Balance)

	e.economy.AssertNumberOfCalls(t, "SpendForHint", 1)
	require.NoError(t, e.manager.Shutdown(ctx))
	published := e.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, "hint.revealed", string(published[0].Type))
}

func TestHintController_RejectionLeavesHintHidden(t *testing.T) {
	e := newTestEngine(t, 0)
	id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", Hint: "Look again"})
	e.economy.On("SpendForHint", mock.Anything).
		Return(&models.HintSpend{Success: false, Message: "Not enough points"}, nil).Once()
	ctx := context.Background()

	_, err := e.manager.Hint().Reveal(ctx, id, "q1")
	require.Error(t, err)
	assert.True(t, IsHintRejected(err))
	assert.EqualError(t, err, "Not enough points")

	ws := e.workspace(t, id)
	assert.False(t, ws.Session.Hints.Visible("q1"))
	assert.False(t, ws.Session.Hints.Paid("q1"))
	_, hasBalance := ws.Session.Balance()
	assert.False(t, hasBalance)
	assert.Empty(t, ws.Session.InFlight())

	_, err = e.manager.Hint().Toggle(ctx, id, "q1")
	assert.ErrorIs(t, err, ErrHintNotPaid)
}

func TestHintController_NetworkFailure(t *testing.T) {
	e := newTestEngine(t, 0)
	id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", Hint: "Look again"})
	e.economy.On("SpendForHint", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := e.manager.Hint().Reveal(context.Background(), id, "q1")

	assert.True(t, IsHintRejected(err))
	assert.False(t, e.workspace(t, id).Session.Hints.Visible("q1"))
}

func TestHintController_Gating(t *testing.T) {
	ctx := context.Background()

	t.Run("not graded", func(t *testing.T) {
		e := newTestEngine(t, 0)
		id := e.open(t, "12", choiceQuestion("q1"))
		_, err := e.manager.Hint().Reveal(ctx, id, "q1")
		assert.ErrorIs(t, err, ErrHintUnavailable)
	})

	t.Run("below retry threshold", func(t *testing.T) {
		e := newTestEngine(t, 3)
		id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", Hint: "Look again", Retry: 2})
		_, err := e.manager.Hint().Reveal(ctx, id, "q1")
		assert.ErrorIs(t, err, ErrHintLocked)
		e.economy.AssertNotCalled(t, "SpendForHint", mock.Anything)
	})

	t.Run("no hint text", func(t *testing.T) {
		e := newTestEngine(t, 0)
		id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", IsCorrect: true})
		_, err := e.manager.Hint().Reveal(ctx, id, "q1")
		assert.ErrorIs(t, err, ErrHintUnavailable)
	})

	t.Run("unknown question", func(t *testing.T) {
		e := newTestEngine(t, 0)
		id := e.open(t, "12", choiceQuestion("q1"))
		_, err := e.manager.Hint().Reveal(ctx, id, "q9")
		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})
}

func TestHintController_CostDeductedFromKnownBalance(t *testing.T) {
	e := newTestEngine(t, 0)
	id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", Hint: "Look again"})
	ws := e.workspace(t, id)
	ws.Session.Lock()
	ws.Session.SetBalance(25)
	ws.Session.Unlock()

	e.economy.On("SpendForHint", mock.Anything).Return(&models.HintSpend{Success: true, Cost: 5}, nil)

	resp, err := e.manager.Hint().Reveal(context.Background(), id, "q1")
	require.NoError(t, err)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, 20, *resp.Balance)
}

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) PublishTelemetryEvent(ctx context.Context, event *events.TelemetryEvent) error {
	close(p.started)
	<-p.release
	return nil
}

func (p *blockingPublisher) Close() error { return nil }

func TestHintController_SlowPublisherDoesNotBlockSession(t *testing.T) {
	e := newTestEngine(t, 0)
	id := gradedSession(t, e, models.SubmissionResult{QuestionID: "q1", Hint: "Look again"})
	e.economy.On("SpendForHint", mock.Anything).Return(&models.HintSpend{Success: true, Cost: 5}, nil).Once()

	publisher := &blockingPublisher{started: make(chan struct{}), release: make(chan struct{})}
	logger := NewServiceLogger(testLogger(), LogConfig{Service: "learning-engine", Component: "hint"})
	tasks := newBackgroundTasks(time.Second, logger)
	hints := NewHintController(e.manager.Registry(),
		Dependencies{Economy: e.economy, Events: publisher},
		render.HintPolicy{MinRetries: 0}, tasks, logger)
	ctx := context.Background()

	resp, err := hints.Reveal(ctx, id, "q1")
	require.NoError(t, err)
	assert.True(t, resp.Charged)
	<-publisher.started

	toggled, err := hints.Toggle(ctx, id, "q1")
	require.NoError(t, err)
	assert.False(t, toggled.Visible)

	close(publisher.release)
	tasks.wait()
}
