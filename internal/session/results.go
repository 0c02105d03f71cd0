package session

import "github.com/SAP-F-2025/learning-engine/internal/models"

// ResultSet holds the grading verdicts keyed by question id.
type ResultSet struct {
	results map[string]models.SubmissionResult
}

func NewResultSet() *ResultSet {
	return &ResultSet{results: make(map[string]models.SubmissionResult)}
}

func (r *ResultSet) Has(questionID string) bool {
	_, ok := r.results[questionID]
	return ok
}

func (r *ResultSet) Get(questionID string) (models.SubmissionResult, bool) {
	res, ok := r.results[questionID]
	return res, ok
}

func (r *ResultSet) Len() int {
	return len(r.results)
}

// Merge adds or overwrites a single verdict.
func (r *ResultSet) Merge(res models.SubmissionResult) {
	r.results[res.QuestionID] = res
}

// Replace swaps the whole set for results.
func (r *ResultSet) Replace(results []models.SubmissionResult) {
	next := make(map[string]models.SubmissionResult, len(results))
	for _, res := range results {
		next[res.QuestionID] = res
	}
	r.results = next
}

func (r *ResultSet) Clear() {
	r.results = make(map[string]models.SubmissionResult)
}

// AggregatePoints sums every verdict's points. ok is false while no result exists.
func (r *ResultSet) AggregatePoints() (total int, ok bool) {
	if len(r.results) == 0 {
		return 0, false
	}
	for _, res := range r.results {
		total += res.Points
	}
	return total, true
}

// CorrectCount returns how many verdicts are correct.
func (r *ResultSet) CorrectCount() int {
	n := 0
	for _, res := range r.results {
		if res.IsCorrect {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of every verdict.
func (r *ResultSet) Snapshot() map[string]models.SubmissionResult {
	out := make(map[string]models.SubmissionResult, len(r.results))
	for k, v := range r.results {
		out[k] = v
	}
	return out
}
