package session

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestTimerTracker_StampStartIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimerTracker(0)

	assert.True(t, timers.StampStart("q1", clock.Now()))
	first := clock.Now().Unix()

	clock.Advance(30 * time.Second)
	assert.False(t, timers.StampStart("q1", clock.Now()))

	clock.Advance(15 * time.Second)
	window := timers.ReadWindow("q1", clock.Now)
	assert.Equal(t, first, window.Start)
	assert.Equal(t, clock.Now().Unix(), window.End)
	assert.Equal(t, 45*time.Second, window.Duration())
}

func TestTimerTracker_MissingStartFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		want   time.Duration
	}{
		{name: "default window", window: 0, want: DefaultMissingStartWindow},
		{name: "configured window", window: 2 * time.Minute, want: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			timers := NewTimerTracker(tt.window)

			window := timers.ReadWindow("never-stamped", clock.Now)
			assert.Equal(t, tt.want, window.Duration())
			assert.False(t, timers.Started("never-stamped"))
		})
	}
}

func TestTimerTracker_StampLoadSkipsDragDrop(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimerTracker(0)

	timers.StampLoad(testQuestions(), clock.Now())

	assert.True(t, timers.Started("q1"))
	assert.True(t, timers.Started("q2"))
	assert.False(t, timers.Started("q3"))
	assert.True(t, timers.Started("q4"))
}

func TestHintState_TogglePaidOnly(t *testing.T) {
	hints := NewHintState()

	assert.False(t, hints.Toggle("q1"))
	assert.False(t, hints.Visible("q1"))

	hints.Reveal("q1")
	assert.True(t, hints.Visible("q1"))
	assert.False(t, hints.Toggle("q1"))
	assert.True(t, hints.Toggle("q1"))
	assert.True(t, hints.Paid("q1"))
}

func TestResultSet_AggregatePoints(t *testing.T) {
	results := NewResultSet()

	_, ok := results.AggregatePoints()
	assert.False(t, ok)

	results.Replace([]models.SubmissionResult{
		{QuestionID: "q1", IsCorrect: true, Points: 10},
		{QuestionID: "q2", IsCorrect: true, Points: 10},
		{QuestionID: "q3", IsCorrect: false, Points: -2},
	})
	total, ok := results.AggregatePoints()
	assert.True(t, ok)
	assert.Equal(t, 18, total)
	assert.Equal(t, 2, results.CorrectCount())

	results.Replace([]models.SubmissionResult{{QuestionID: "q1", Points: 0}})
	total, ok = results.AggregatePoints()
	assert.True(t, ok)
	assert.Equal(t, 0, total)
	assert.False(t, results.Has("q2"))
}

func TestSession_NewStampsLoadedQuestions(t *testing.T) {
	clock := newFakeClock()
	s := New("s1", "lesson-1", models.QuestionSet{Questions: testQuestions()}, Options{Clock: clock.Now})

	assert.Equal(t, clock.Now(), s.CreatedAt)
	assert.Len(t, s.Questions(), 4)
	assert.True(t, s.Timers.Started("q1"))
	assert.False(t, s.Timers.Started("q3"))

	q, ok := s.Question("q3")
	require.True(t, ok)
	assert.Equal(t, models.DragDrop, q.Type)
	pos, ok := s.Position("q4")
	assert.True(t, ok)
	assert.Equal(t, 3, pos)
}

func TestSession_InFlightGuard(t *testing.T) {
	s := New("s1", "lesson-1", models.QuestionSet{Questions: testQuestions()}, Options{})

	require.NoError(t, s.BeginRequest("submit"))
	err := s.BeginRequest("generate")
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.Contains(t, err.Error(), "submit")

	s.EndRequest()
	assert.NoError(t, s.BeginRequest("generate"))
	s.EndRequest()
}

func TestSession_ResetStartsFreshRound(t *testing.T) {
	clock := newFakeClock()
	s := New("s1", "lesson-1", models.QuestionSet{Questions: testQuestions()}, Options{Clock: clock.Now})

	require.NoError(t, s.Answers.Set("q1", models.ChoiceAnswer{Key: "B"}))
	require.NoError(t, s.Answers.SetDragSlot("q3", "left", "int"))
	s.Timers.StampStart("q3", clock.Now())
	s.Results.Merge(models.SubmissionResult{QuestionID: "q1", Hint: "think constants"})
	s.Hints.Reveal("q1")

	clock.Advance(time.Minute)
	s.Reset()

	assert.False(t, s.Answers.HasAnswer("q1"))
	assert.False(t, s.Answers.HasAnswer("q3"))
	assert.Equal(t, 0, s.Results.Len())
	assert.False(t, s.Hints.Paid("q1"))
	assert.False(t, s.Timers.Started("q3"))
	window := s.Timers.ReadWindow("q1", clock.Now)
	assert.Equal(t, time.Duration(0), window.Duration())
	assert.NoError(t, s.Answers.Set("q1", models.ChoiceAnswer{Key: "A"}))
}

func TestSession_ReplaceSwapsQuestionSet(t *testing.T) {
	s := New("s1", "lesson-1", models.QuestionSet{Message: "No questions available yet"}, Options{})
	assert.Empty(t, s.Questions())
	assert.Equal(t, "No questions available yet", s.Message())

	s.Replace(models.QuestionSet{Questions: testQuestions()[:1]})
	assert.Len(t, s.Questions(), 1)
	assert.Empty(t, s.Message())
	_, ok := s.Question("q2")
	assert.False(t, ok)
}

func TestSession_Balance(t *testing.T) {
	s := New("s1", "lesson-1", models.QuestionSet{}, Options{})

	_, ok := s.Balance()
	assert.False(t, ok)

	s.SetBalance(42)
	balance, ok := s.Balance()
	assert.True(t, ok)
	assert.Equal(t, 42, balance)
}
