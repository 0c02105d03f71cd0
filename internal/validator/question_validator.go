package validator

import (
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// QuestionValidator inspects delivered questions for shapes the renderer cannot
// fully display. Issues are reported, never enforced: a malformed question still
// renders as an empty widget.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion returns the shape issues of one question
func (v *QuestionValidator) ValidateQuestion(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	add := func(field, message string, value interface{}) {
		errs = append(errs, *NewValidationError(field, message, value))
	}

	if q.ID == "" {
		add("questionID", "is required", nil)
	}
	if q.Text == "" {
		add("questionText", "is required", nil)
	}

	switch q.Type {
	case models.SingleChoice:
		if len(q.Options) == 0 {
			add("options", "must contain at least one option", nil)
		}
	case models.FillInBlank:
		if q.BlankCount() == 0 {
			add("questionText", fmt.Sprintf("must contain the blank marker %q", models.BlankMarker), q.Text)
		}
		if q.ExpectedAnswerCount > q.BlankCount() {
			add("expectedAnswerCount", fmt.Sprintf("must not exceed the %d blanks", q.BlankCount()), q.ExpectedAnswerCount)
		}
	case models.DragDrop:
		if len(q.SlotIDs()) == 0 {
			add("blanks", "must declare at least one drop target", nil)
		}
		if len(q.Options) == 0 {
			add("options", "must contain at least one draggable item", nil)
		}
		seen := make(map[string]bool)
		for _, id := range q.SlotIDs() {
			if seen[id] {
				add("blanks", "must not repeat drop targets", id)
			}
			seen[id] = true
		}
	case models.FreeTextCode:
	default:
		add("questionTypeID", "must be a supported question type", q.TypeID)
	}

	return errs
}

// ValidateSet validates every question of a set, keyed by question id.
// Questions without issues are omitted.
func (v *QuestionValidator) ValidateSet(set *models.QuestionSet) map[string]ValidationErrors {
	issues := make(map[string]ValidationErrors)
	for i := range set.Questions {
		q := &set.Questions[i]
		if errs := v.ValidateQuestion(q); len(errs) > 0 {
			key := q.ID
			if key == "" {
				key = fmt.Sprintf("#%d", i)
			}
			issues[key] = errs
		}
	}
	return issues
}
