package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// Options configures the per-session invariants.
type Options struct {
	SingleOccupancy    bool
	MissingStartWindow time.Duration
	Clock              Clock
}

// Session is the state owned by one open lesson or mission: the question set
// and every per-question map (answers, timers, results, hints).
//
// Callers hold Lock while reading or mutating state. Network calls run without
// the lock, bracketed by BeginRequest/EndRequest.
type Session struct {
	ID        string
	LessonID  string
	MissionID string
	CreatedAt time.Time

	Answers *AnswerStore
	Timers  *TimerTracker
	Results *ResultSet
	Hints   *HintState

	mu        sync.Mutex
	clock     Clock
	questions []models.Question
	index     map[string]int
	message   string
	balance   *int
	inFlight  string
}

func New(id, lessonID string, set models.QuestionSet, opts Options) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	results := NewResultSet()
	s := &Session{
		ID:        id,
		LessonID:  lessonID,
		CreatedAt: clock(),
		Results:   results,
		Hints:     NewHintState(),
		Timers:    NewTimerTracker(opts.MissingStartWindow),
		Answers:   NewAnswerStore(nil, results, WithSingleOccupancy(opts.SingleOccupancy)),
		clock:     clock,
	}
	s.load(set)
	return s
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Now reads the session clock.
func (s *Session) Now() time.Time { return s.clock() }

func (s *Session) Clock() Clock { return s.clock }

// BeginRequest claims the session for one outstanding network call. It fails
// while another call (submit, generate, hint, fetch) is in flight.
func (s *Session) BeginRequest(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != "" {
		return fmt.Errorf("%w: %s", ErrRequestInFlight, s.inFlight)
	}
	s.inFlight = op
	return nil
}

func (s *Session) EndRequest() {
	s.mu.Lock()
	s.inFlight = ""
	s.mu.Unlock()
}

// InFlight returns the name of the outstanding network call, if any.
func (s *Session) InFlight() string {
	return s.inFlight
}

// Questions returns the questions in presentation order.
func (s *Session) Questions() []models.Question {
	return s.questions
}

func (s *Session) Question(questionID string) (*models.Question, bool) {
	i, ok := s.index[questionID]
	if !ok {
		return nil, false
	}
	return &s.questions[i], true
}

// Position returns the zero-based presentation index of questionID.
func (s *Session) Position(questionID string) (int, bool) {
	i, ok := s.index[questionID]
	return i, ok
}

// Message is the source's human-readable note, e.g. when no questions exist yet.
func (s *Session) Message() string { return s.message }

// Balance is the last point balance reported by the economy service.
func (s *Session) Balance() (int, bool) {
	if s.balance == nil {
		return 0, false
	}
	return *s.balance, true
}

func (s *Session) SetBalance(points int) {
	s.balance = &points
}

// Replace swaps in a freshly fetched question set and starts a new round.
func (s *Session) Replace(set models.QuestionSet) {
	s.load(set)
}

// Reset clears answers, results, hints and timers for the current questions.
func (s *Session) Reset() {
	s.load(models.QuestionSet{
		LessonID:  s.LessonID,
		Questions: s.questions,
		Message:   s.message,
	})
}

func (s *Session) load(set models.QuestionSet) {
	s.questions = set.Questions
	s.message = set.Message
	s.index = make(map[string]int, len(set.Questions))
	for i, q := range set.Questions {
		s.index[q.ID] = i
	}

	s.Results.Clear()
	s.Hints.Reset()
	s.Timers.Reset()
	s.Answers.Reset(set.Questions)
	s.Timers.StampLoad(set.Questions, s.clock())
}
