package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// PerformanceAPI forwards graded batches to the backend's performance endpoint.
type PerformanceAPI struct {
	client *Client
}

func NewPerformanceAPI(client *Client) *PerformanceAPI {
	return &PerformanceAPI{client: client}
}

type performanceEntry struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
	Points     int    `json:"points"`
	Retry      int    `json:"retry"`
	StartTime  int64  `json:"startTime"`
	EndTime    int64  `json:"endTime"`
	TimeTaken  int64  `json:"timeTaken"`
}

// Forward posts one entry per graded question.
func (a *PerformanceAPI) Forward(ctx context.Context, batch *models.GradedBatch) error {
	entries := make([]performanceEntry, 0, len(batch.Questions))
	for _, q := range batch.Questions {
		entries = append(entries, performanceEntry{
			QuestionID: q.QuestionID,
			IsCorrect:  q.Result.IsCorrect,
			Points:     q.Result.Points,
			Retry:      q.Result.Retry,
			StartTime:  q.Timing.Start,
			EndTime:    q.Timing.End,
			TimeTaken:  int64(q.Timing.Duration().Seconds()),
		})
	}
	_, err := a.client.doJSON(ctx, "submit_performance", http.MethodPost,
		"/performance/submit/"+url.PathEscape(batch.LessonID), entries)
	return err
}
