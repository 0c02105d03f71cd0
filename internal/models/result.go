package models

import (
	"encoding/json"
	"time"
)

// SubmissionResult is the scoring collaborator's verdict for one question.
type SubmissionResult struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
	Feedback   string `json:"feedback,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Points     int    `json:"points"`
	Retry      int    `json:"retry"`
}

// TimingRecord holds epoch-second bounds of the time spent on one question.
type TimingRecord struct {
	Start int64 `json:"startTime"`
	End   int64 `json:"endTime"`
}

func (t TimingRecord) Duration() time.Duration {
	if t.End < t.Start {
		return 0
	}
	return time.Duration(t.End-t.Start) * time.Second
}

// AnswerRecord is the wire payload for one submitted answer.
type AnswerRecord struct {
	QuestionID     string          `json:"questionId"`
	QuestionTypeID int             `json:"questionTypeId"`
	UserAnswer     json.RawMessage `json:"userAnswer"`
	StartTime      int64           `json:"startTime"`
	EndTime        int64           `json:"endTime"`
}

// HintSpend is the point economy's answer to a hint reveal request.
type HintSpend struct {
	Success       bool   `json:"success"`
	UpdatedPoints *int   `json:"updatedPoints,omitempty"`
	Cost          int    `json:"cost,omitempty"`
	Message       string `json:"message,omitempty"`
}

// GradedQuestion pairs a submitted answer with its verdict, for telemetry and reports.
type GradedQuestion struct {
	QuestionID   string           `json:"question_id"`
	QuestionType QuestionType     `json:"question_type"`
	Answer       json.RawMessage  `json:"answer"`
	Timing       TimingRecord     `json:"timing"`
	Result       SubmissionResult `json:"result"`
}

// GradedBatch is forwarded to the telemetry sink after a full submission.
type GradedBatch struct {
	SessionID   string           `json:"session_id"`
	LessonID    string           `json:"lesson_id"`
	MissionID   string           `json:"mission_id,omitempty"`
	UserID      string           `json:"user_id,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	TotalPoints int              `json:"total_points"`
	Questions   []GradedQuestion `json:"questions"`
}

// CorrectCount returns the number of correct verdicts in the batch.
func (b *GradedBatch) CorrectCount() int {
	n := 0
	for _, q := range b.Questions {
		if q.Result.IsCorrect {
			n++
		}
	}
	return n
}
