package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/auth"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestQuestionAPI_ListQuestionsArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/subunits/12/questions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[
			{"questionID": 1, "questionTypeID": 1, "questionText": "Pick", "options": {"B": "two", "A": "one"}},
			{"questionID": "2", "questionTypeID": 4, "questionText": "_____", "options": ["x", "y"], "blanks": ["slot"]}
		]`)
	})

	set, err := NewQuestionAPI(client).ListQuestions(auth.WithToken(context.Background(), "tok"), "12")
	require.NoError(t, err)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, "12", set.LessonID)
	assert.Equal(t, "1", set.Questions[0].ID)
	assert.Equal(t, models.SingleChoice, set.Questions[0].Type)
	assert.Equal(t, "A", set.Questions[0].Options[0].Key)
	assert.Equal(t, models.DragDrop, set.Questions[1].Type)
	assert.Equal(t, []string{"slot"}, set.Questions[1].SlotIDs())
}

func TestQuestionAPI_ListQuestionsMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"questions": [], "message": "No questions available yet"}`)
	})

	set, err := NewQuestionAPI(client).ListQuestions(context.Background(), "12")
	require.NoError(t, err)
	assert.Empty(t, set.Questions)
	assert.Equal(t, "No questions available yet", set.Message)
}

func TestQuestionAPI_FetchFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error": "database down"}`)
	})

	_, err := NewQuestionAPI(client).ListQuestions(context.Background(), "12")
	var oe *OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, http.StatusInternalServerError, oe.StatusCode)
	assert.Equal(t, "database down", oe.Message)
	assert.False(t, IsClientError(err))
}

func TestQuestionAPI_Generate(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subunits/12/generate-questions", r.URL.Path)
		_, _ = io.WriteString(w, `{"questions": "ignored"}`)
	})

	require.NoError(t, NewQuestionAPI(client).Generate(context.Background(), "12"))
	assert.True(t, called)
}

func TestSubmissionAPI_Submit(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "flat results", body: `{"results": [{"questionId": "q1", "success": true, "isCorrect": true, "points": 10, "retry": 1}]}`},
		{name: "nested results", body: `{"message": "Answers submitted successfully", "results": {"results": [{"questionId": "q1", "success": true, "isCorrect": true, "points": 10, "retry": 1}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/submit-answers", r.URL.Path)
				var records []models.AnswerRecord
				if assert.NoError(t, json.NewDecoder(r.Body).Decode(&records)) && assert.Len(t, records, 1) {
					assert.Equal(t, 1, records[0].QuestionTypeID)
					assert.JSONEq(t, `"B"`, string(records[0].UserAnswer))
				}
				_, _ = io.WriteString(w, tt.body)
			})

			results, err := NewSubmissionAPI(client).Submit(context.Background(), []models.AnswerRecord{{
				QuestionID:     "q1",
				QuestionTypeID: 1,
				UserAnswer:     json.RawMessage(`"B"`),
				StartTime:      100,
				EndTime:        160,
			}})
			require.NoError(t, err)
			assert.Equal(t, []models.SubmissionResult{{QuestionID: "q1", IsCorrect: true, Points: 10, Retry: 1}}, results)
		})
	}
}

func TestSubmissionAPI_FailedEntryFailsBatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "success false", body: `{"results": [{"questionId": "q1", "success": true}, {"questionId": "q2", "success": false, "error": "bad answer"}]}`},
		{name: "trailing error entry", body: `{"results": {"results": [{"questionId": "q1", "success": true}, {"error": "Failed to update user points"}]}}`},
		{name: "top level error", body: `{"results": [], "error": "Invalid JSON input"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			results, err := NewSubmissionAPI(client).Submit(context.Background(), nil)
			assert.ErrorIs(t, err, ErrEntryFailed)
			assert.Nil(t, results)
		})
	}
}

func TestHintAPI_SpendForHint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/hints/spend", r.URL.Path)
			_, _ = io.WriteString(w, `{"success": true, "updatedPoints": 35, "cost": 5}`)
		})

		spend, err := NewHintAPI(client).SpendForHint(context.Background())
		require.NoError(t, err)
		assert.True(t, spend.Success)
		require.NotNil(t, spend.UpdatedPoints)
		assert.Equal(t, 35, *spend.UpdatedPoints)
	})

	t.Run("rejection", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"success": false, "message": "Not enough points"}`)
		})

		spend, err := NewHintAPI(client).SpendForHint(context.Background())
		require.NoError(t, err)
		assert.False(t, spend.Success)
		assert.Equal(t, "Not enough points", spend.Message)
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := NewHintAPI(client).SpendForHint(context.Background())
		assert.Error(t, err)
	})
}

func TestMissionAPI_GetMission(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/missions/7", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"missionTitle": "Goroutines",
			"xpReward": 50,
			"chapters": [
				{"chapterID": "c1", "title": "Intro", "questions": [{"questionID": 1, "questionTypeID": 2, "questionText": "Write"}]},
				{"chapterID": "c2", "title": "Channels", "questions": []}
			]
		}`)
	})

	mission, err := NewMissionAPI(client).GetMission(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", mission.ID)
	assert.Equal(t, "Goroutines", mission.Title)
	require.Len(t, mission.Chapters, 2)
	assert.Equal(t, models.FreeTextCode, mission.Chapters[0].Questions[0].Type)
}

func TestPerformanceAPI_Forward(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/performance/submit/lesson-1", r.URL.Path)
		var entries []performanceEntry
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&entries)) && assert.Len(t, entries, 1) {
			assert.Equal(t, int64(60), entries[0].TimeTaken)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := NewPerformanceAPI(client).Forward(context.Background(), &models.GradedBatch{
		LessonID: "lesson-1",
		Questions: []models.GradedQuestion{{
			QuestionID: "q1",
			Timing:     models.TimingRecord{Start: 100, End: 160},
			Result:     models.SubmissionResult{QuestionID: "q1", IsCorrect: true, Points: 10},
		}},
	})
	assert.NoError(t, err)
}
