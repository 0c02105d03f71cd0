package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"gorm.io/gorm"
)

// PerformanceRepository interface for the graded-answer ledger
type PerformanceRepository interface {
	// Write operations
	CreateBatch(ctx context.Context, tx *gorm.DB, records []*models.PerformanceRecord) error
	DeleteBySession(ctx context.Context, tx *gorm.DB, sessionID string) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters PerformanceFilters) ([]*models.PerformanceRecord, int64, error)
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.PerformanceRecord, error)

	// Statistics
	GetLessonStats(ctx context.Context, tx *gorm.DB, lessonID string) (*LessonStats, error)
	GetQuestionStats(ctx context.Context, tx *gorm.DB, lessonID string) ([]QuestionPerformanceStat, error)
}
