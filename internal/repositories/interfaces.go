package repositories

import (
	"time"
)

// ===== SHARED FILTER STRUCTS =====

type PerformanceFilters struct {
	LessonID  string     `json:"lesson_id"`
	MissionID *string    `json:"mission_id"`
	UserID    string     `json:"user_id"`
	SessionID string     `json:"session_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "submitted_at", "points", "question_id"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// ===== STATS STRUCTS =====

type LessonStats struct {
	LessonID     string  `json:"lesson_id"`
	Submissions  int64   `json:"submissions"`
	Answers      int64   `json:"answers"`
	CorrectRate  float64 `json:"correct_rate"`
	TotalPoints  int64   `json:"total_points"`
	AvgTimeTaken float64 `json:"avg_time_taken"`
}

type QuestionPerformanceStat struct {
	QuestionID   string  `json:"question_id"`
	Attempts     int64   `json:"attempts"`
	CorrectCount int64   `json:"correct_count"`
	AvgTimeTaken float64 `json:"avg_time_taken"`
	AvgRetry     float64 `json:"avg_retry"`
}
