package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/events"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuestionSource is a mock implementation of repositories.QuestionSource
type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) ListQuestions(ctx context.Context, lessonID string) (*models.QuestionSet, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionSet), args.Error(1)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, lessonID string) error {
	args := m.Called(ctx, lessonID)
	return args.Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, lessonID string) error {
	args := m.Called(ctx, lessonID)
	return args.Error(0)
}

type MockMissionSource struct {
	mock.Mock
}

func (m *MockMissionSource) GetMission(ctx context.Context, missionID string) (*models.Mission, error) {
	args := m.Called(ctx, missionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mission), args.Error(1)
}

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, records []models.AnswerRecord) ([]models.SubmissionResult, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SubmissionResult), args.Error(1)
}

type MockPointEconomy struct {
	mock.Mock
}

func (m *MockPointEconomy) SpendForHint(ctx context.Context) (*models.HintSpend, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HintSpend), args.Error(1)
}

// recordingSink collects forwarded batches.
type recordingSink struct {
	mu      sync.Mutex
	batches []*models.GradedBatch
	err     error
}

func (s *recordingSink) Forward(ctx context.Context, batch *models.GradedBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return s.err
}

func (s *recordingSink) Batches() []*models.GradedBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.GradedBatch(nil), s.batches...)
}

type recordingNotifier struct {
	mu       sync.Mutex
	chapters []int
}

func (n *recordingNotifier) ScrollToTop(sessionID string, chapter int) {
	n.mu.Lock()
	n.chapters = append(n.chapters, chapter)
	n.mu.Unlock()
}

func (n *recordingNotifier) Calls() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.chapters...)
}

// ===== FIXTURES =====

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEngine struct {
	manager     ServiceManager
	questions   *MockQuestionSource
	invalidator *MockInvalidator
	generator   *MockGenerator
	missions    *MockMissionSource
	submissions *MockSubmissionService
	economy     *MockPointEconomy
	sink        *recordingSink
	publisher   *events.MockEventPublisher
	notifier    *recordingNotifier
}

func newTestEngine(t *testing.T, minRetries int) *testEngine {
	t.Helper()
	e := &testEngine{
		questions:   new(MockQuestionSource),
		invalidator: new(MockInvalidator),
		generator:   new(MockGenerator),
		missions:    new(MockMissionSource),
		submissions: new(MockSubmissionService),
		economy:     new(MockPointEconomy),
		sink:        &recordingSink{},
		publisher:   events.NewMockEventPublisher(testLogger()),
		notifier:    &recordingNotifier{},
	}
	config := DefaultEngineConfig()
	config.HintPolicy = render.HintPolicy{MinRetries: minRetries}
	config.Clock = func() time.Time { return testNow }

	e.manager = NewServiceManager(Dependencies{
		Questions:   e.questions,
		Invalidator: e.invalidator,
		Generator:   e.generator,
		Missions:    e.missions,
		Submissions: e.submissions,
		Economy:     e.economy,
		Telemetry:   e.sink,
		Events:      e.publisher,
		Notifier:    e.notifier,
	}, config, validator.New(), testLogger())
	return e
}

// open registers a lesson session over questions and returns its id.
func (e *testEngine) open(t *testing.T, lessonID string, questions ...models.Question) string {
	t.Helper()
	e.questions.On("ListQuestions", mock.Anything, lessonID).
		Return(&models.QuestionSet{LessonID: lessonID, Questions: questions}, nil).Once()
	resp, err := e.manager.Lesson().Open(context.Background(), lessonID, "user-1")
	require.NoError(t, err)
	return resp.ID
}

func (e *testEngine) workspace(t *testing.T, sessionID string) *Workspace {
	t.Helper()
	ws, err := e.manager.Registry().Get(sessionID)
	require.NoError(t, err)
	return ws
}

func choiceQuestion(id string) models.Question {
	return models.Question{
		ID:      id,
		Type:    models.SingleChoice,
		TypeID:  1,
		Text:    "Pick one",
		Options: []models.Option{{Key: "a", Text: "Alpha"}, {Key: "b", Text: "Beta"}},
	}
}

func blankQuestion(id string) models.Question {
	return models.Question{
		ID:     id,
		Type:   models.FillInBlank,
		TypeID: 3,
		Text:   "x := _____ + _____",
	}
}

func dragQuestion(id string) models.Question {
	return models.Question{
		ID:      id,
		Type:    models.DragDrop,
		TypeID:  4,
		Text:    "_____ then _____",
		Blanks:  []string{"s1", "s2"},
		Options: []models.Option{{Key: "first", Text: "first"}, {Key: "second", Text: "second"}},
	}
}

func rawString(s string) []byte {
	return []byte(`"` + s + `"`)
}
