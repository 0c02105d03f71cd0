package models

import (
	"time"

	"gorm.io/datatypes"
)

// PerformanceRecord is one graded question as kept by the performance ledger.
type PerformanceRecord struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	SessionID    string       `json:"session_id" gorm:"not null;index;size:36"`
	LessonID     string       `json:"lesson_id" gorm:"not null;index;size:100"`
	MissionID    *string      `json:"mission_id" gorm:"index;size:100"`
	UserID       string       `json:"user_id" gorm:"index;size:255"`
	QuestionID   string       `json:"question_id" gorm:"not null;index;size:100"`
	QuestionType QuestionType `json:"question_type" gorm:"not null;size:32"`

	Answer    datatypes.JSON `json:"answer" gorm:"type:jsonb"`
	IsCorrect bool           `json:"is_correct"`
	Points    int            `json:"points"`
	Retry     int            `json:"retry"`
	Feedback  string         `json:"feedback" gorm:"type:text"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	TimeTaken   int       `json:"time_taken"` // seconds

	SubmittedAt time.Time `json:"submitted_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PerformanceRecord) TableName() string {
	return "performance_records"
}

// PerformanceRecordsFromBatch expands a graded batch into ledger rows.
func PerformanceRecordsFromBatch(b *GradedBatch) []*PerformanceRecord {
	var missionID *string
	if b.MissionID != "" {
		id := b.MissionID
		missionID = &id
	}

	records := make([]*PerformanceRecord, 0, len(b.Questions))
	for _, q := range b.Questions {
		records = append(records, &PerformanceRecord{
			SessionID:    b.SessionID,
			LessonID:     b.LessonID,
			MissionID:    missionID,
			UserID:       b.UserID,
			QuestionID:   q.QuestionID,
			QuestionType: q.QuestionType,
			Answer:       datatypes.JSON(q.Answer),
			IsCorrect:    q.Result.IsCorrect,
			Points:       q.Result.Points,
			Retry:        q.Result.Retry,
			Feedback:     q.Result.Feedback,
			StartedAt:    time.Unix(q.Timing.Start, 0).UTC(),
			CompletedAt:  time.Unix(q.Timing.End, 0).UTC(),
			TimeTaken:    int(q.Timing.Duration() / time.Second),
			SubmittedAt:  b.SubmittedAt,
		})
	}
	return records
}
