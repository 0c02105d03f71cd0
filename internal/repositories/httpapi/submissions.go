package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// ErrEntryFailed marks a batch in which at least one entry was not graded.
var ErrEntryFailed = errors.New("submission entry failed")

type SubmissionAPI struct {
	client *Client
}

func NewSubmissionAPI(client *Client) *SubmissionAPI {
	return &SubmissionAPI{client: client}
}

type resultEntry struct {
	QuestionID json.RawMessage `json:"questionId"`
	Success    *bool           `json:"success"`
	IsCorrect  bool            `json:"isCorrect"`
	Points     int             `json:"points"`
	Feedback   string          `json:"feedback"`
	Hint       string          `json:"hint"`
	Retry      int             `json:"retry"`
	Error      string          `json:"error"`
}

type submitEnvelope struct {
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
	Error   string          `json:"error"`
}

// Submit posts the records and returns one verdict per graded entry. Any entry
// reporting a failure fails the whole call.
func (a *SubmissionAPI) Submit(ctx context.Context, records []models.AnswerRecord) ([]models.SubmissionResult, error) {
	const op = "submit_answers"
	raw, err := a.client.doJSON(ctx, op, http.MethodPost, "/submit-answers", records)
	if err != nil {
		return nil, err
	}

	entries, err := decodeResultEntries(op, raw)
	if err != nil {
		return nil, err
	}

	results := make([]models.SubmissionResult, 0, len(entries))
	for _, e := range entries {
		id := rawString(e.QuestionID)
		if e.Error != "" || (e.Success != nil && !*e.Success) || id == "" {
			msg := e.Error
			if msg == "" {
				msg = "not graded"
			}
			return nil, &OperationError{
				Operation: op,
				Message:   fmt.Sprintf("question %q: %s", id, msg),
				Err:       ErrEntryFailed,
			}
		}
		results = append(results, models.SubmissionResult{
			QuestionID: id,
			IsCorrect:  e.IsCorrect,
			Feedback:   e.Feedback,
			Hint:       e.Hint,
			Points:     e.Points,
			Retry:      e.Retry,
		})
	}
	return results, nil
}

// decodeResultEntries unwraps {results: [...]} and {message, results: {results: [...]}}.
func decodeResultEntries(op string, raw []byte) ([]resultEntry, error) {
	var env submitEnvelope
	if err := decode(op, raw, &env); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, &OperationError{Operation: op, Message: env.Error, Err: ErrEntryFailed}
	}

	results := bytes.TrimSpace(env.Results)
	if len(results) > 0 && results[0] == '{' {
		var inner submitEnvelope
		if err := decode(op, results, &inner); err != nil {
			return nil, err
		}
		if inner.Error != "" {
			return nil, &OperationError{Operation: op, Message: inner.Error, Err: ErrEntryFailed}
		}
		results = bytes.TrimSpace(inner.Results)
	}
	if len(results) == 0 || bytes.Equal(results, []byte("null")) {
		return nil, nil
	}

	var entries []resultEntry
	if err := decode(op, results, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
