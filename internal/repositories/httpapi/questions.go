package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// QuestionAPI lists and generates lesson questions.
type QuestionAPI struct {
	client *Client
}

func NewQuestionAPI(client *Client) *QuestionAPI {
	return &QuestionAPI{client: client}
}

type questionListEnvelope struct {
	Questions []models.Question `json:"questions"`
	Message   string            `json:"message"`
}

// ListQuestions accepts either a bare array of questions or an object with a
// questions list and a message.
func (a *QuestionAPI) ListQuestions(ctx context.Context, lessonID string) (*models.QuestionSet, error) {
	const op = "list_questions"
	raw, err := a.client.doJSON(ctx, op, http.MethodGet, "/subunits/"+url.PathEscape(lessonID)+"/questions", nil)
	if err != nil {
		return nil, err
	}

	set := &models.QuestionSet{LessonID: lessonID}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		if err := decode(op, trimmed, &set.Questions); err != nil {
			return nil, err
		}
	default:
		var env questionListEnvelope
		if err := decode(op, trimmed, &env); err != nil {
			return nil, err
		}
		set.Questions = env.Questions
		set.Message = env.Message
	}
	return set, nil
}

// Generate triggers question generation. The response body is ignored.
func (a *QuestionAPI) Generate(ctx context.Context, lessonID string) error {
	_, err := a.client.doJSON(ctx, "generate_questions", http.MethodPost,
		"/subunits/"+url.PathEscape(lessonID)+"/generate-questions", map[string]string{})
	return err
}
