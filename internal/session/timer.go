package session

import (
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// DefaultMissingStartWindow is subtracted from "now" when a question was never stamped.
const DefaultMissingStartWindow = 60 * time.Second

// Clock returns the current time.
type Clock func() time.Time

// TimerTracker records when the learner started each question.
type TimerTracker struct {
	starts        map[string]int64
	missingWindow time.Duration
}

func NewTimerTracker(missingWindow time.Duration) *TimerTracker {
	if missingWindow <= 0 {
		missingWindow = DefaultMissingStartWindow
	}
	return &TimerTracker{
		starts:        make(map[string]int64),
		missingWindow: missingWindow,
	}
}

// StampStart records the start for questionID. Only the first call has effect.
// It reports whether this call set the stamp.
func (t *TimerTracker) StampStart(questionID string, now time.Time) bool {
	if _, ok := t.starts[questionID]; ok {
		return false
	}
	t.starts[questionID] = now.Unix()
	return true
}

// StampLoad stamps every question of a freshly loaded set, except drag-drop
// questions which are stamped on their first drop.
func (t *TimerTracker) StampLoad(questions []models.Question, now time.Time) {
	for _, q := range questions {
		if q.Type == models.DragDrop {
			continue
		}
		t.StampStart(q.ID, now)
	}
}

// Started reports whether questionID has a start stamp.
func (t *TimerTracker) Started(questionID string) bool {
	_, ok := t.starts[questionID]
	return ok
}

// StartedAt returns the recorded start stamp of questionID.
func (t *TimerTracker) StartedAt(questionID string) (time.Time, bool) {
	start, ok := t.starts[questionID]
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(start, 0), true
}

// ReadWindow returns the (start, end) window for a submission made now.
// A missing start falls back to now minus the configured window.
func (t *TimerTracker) ReadWindow(questionID string, now Clock) models.TimingRecord {
	end := now()
	start, ok := t.starts[questionID]
	if !ok {
		start = end.Add(-t.missingWindow).Unix()
	}
	return models.TimingRecord{Start: start, End: end.Unix()}
}

func (t *TimerTracker) Reset() {
	t.starts = make(map[string]int64)
}
