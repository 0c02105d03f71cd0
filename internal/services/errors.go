package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/learning-engine/internal/errors"
	"github.com/SAP-F-2025/learning-engine/internal/repositories/httpapi"
	"github.com/SAP-F-2025/learning-engine/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNotAMission      = errors.New("session is not a mission")
	ErrNotALesson       = errors.New("session is not a lesson")

	ErrAnswerRequired  = errors.New("an answer is required before submitting")
	ErrAlreadyGraded   = errors.New("question already graded")
	ErrHintUnavailable = errors.New("no hint available for this question")
	ErrHintLocked      = errors.New("hint is locked until more attempts are made")
	ErrHintNotPaid     = errors.New("hint has not been revealed yet")
	ErrNoQuestions     = errors.New("no questions to submit")

	// Local rule violations raised by the session state
	ErrAnswerFrozen     = session.ErrAnswerFrozen
	ErrShapeMismatch    = session.ErrShapeMismatch
	ErrBlankOutOfRange  = session.ErrBlankOutOfRange
	ErrUnknownSlot      = session.ErrUnknownSlot
	ErrUnknownItem      = session.ErrUnknownItem
	ErrItemOccupied     = session.ErrItemOccupied
	ErrRequestInFlight  = session.ErrRequestInFlight
	ErrNoPendingPayload = session.ErrNoPendingPayload
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// FetchError reports that questions or a mission could not be loaded.
// No partial state is kept; the caller may retry.
type FetchError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Err      error  `json:"-"`
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load %s %s: %v", e.Resource, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError reports a failed scoring call. Answers stay as they were.
type SubmissionError struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id,omitempty"`
	Err        error  `json:"-"`
}

func (e *SubmissionError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("failed to submit answer for question %s: %v", e.QuestionID, e.Err)
	}
	return fmt.Sprintf("failed to submit answers: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// HintRejectedError carries the point economy's refusal message.
type HintRejectedError struct {
	QuestionID string `json:"question_id"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *HintRejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("hint request failed: %v", e.Err)
	}
	return "hint request rejected"
}

func (e *HintRejectedError) Unwrap() error { return e.Err }

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, session.ErrUnknownQuestion)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrBlankOutOfRange) ||
		errors.Is(err, ErrUnknownSlot) ||
		errors.Is(err, ErrUnknownItem) ||
		errors.Is(err, ErrItemOccupied) ||
		errors.Is(err, ErrNoPendingPayload) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if err violates the session's lifecycle rules
func IsConflict(err error) bool {
	return errors.Is(err, ErrAnswerFrozen) ||
		errors.Is(err, ErrAlreadyGraded) ||
		errors.Is(err, ErrRequestInFlight) ||
		errors.Is(err, ErrAnswerRequired) ||
		errors.Is(err, ErrHintUnavailable) ||
		errors.Is(err, ErrHintLocked) ||
		errors.Is(err, ErrHintNotPaid) ||
		errors.Is(err, ErrNoQuestions) ||
		errors.Is(err, ErrNotAMission) ||
		errors.Is(err, ErrNotALesson)
}

func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func IsSubmission(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

func IsHintRejected(err error) bool {
	var he *HintRejectedError
	return errors.As(err, &he)
}

// IsUpstream checks if err came from a backend collaborator
func IsUpstream(err error) bool {
	var oe *httpapi.OperationError
	return IsFetch(err) || IsSubmission(err) || errors.As(err, &oe)
}
