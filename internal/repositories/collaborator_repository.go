package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// QuestionSource lists the questions of a lesson (subunit).
// An empty list with a message is a valid answer, not an error.
type QuestionSource interface {
	ListQuestions(ctx context.Context, lessonID string) (*models.QuestionSet, error)
}

// QuestionInvalidator is implemented by sources that cache question lists.
type QuestionInvalidator interface {
	Invalidate(ctx context.Context, lessonID string) error
}

// SubmissionService grades a batch of answers. Calling it again with the same
// records overwrites earlier verdicts.
type SubmissionService interface {
	Submit(ctx context.Context, records []models.AnswerRecord) ([]models.SubmissionResult, error)
}

// PointEconomy spends the learner's points on a hint reveal. A structured
// rejection comes back as a HintSpend with Success false, not as an error.
type PointEconomy interface {
	SpendForHint(ctx context.Context) (*models.HintSpend, error)
}

// QuestionGenerator asks the backend to add questions to a lesson. The
// response body is not authoritative; callers re-fetch the list.
type QuestionGenerator interface {
	Generate(ctx context.Context, lessonID string) error
}

// MissionSource loads a mission with its chapters and questions.
type MissionSource interface {
	GetMission(ctx context.Context, missionID string) (*models.Mission, error)
}

// TelemetrySink receives graded batches after a full submission.
type TelemetrySink interface {
	Forward(ctx context.Context, batch *models.GradedBatch) error
}
