package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type PerformancePostgreSQL struct {
	db *gorm.DB
}

func NewPerformancePostgreSQL(db *gorm.DB) repositories.PerformanceRepository {
	return &PerformancePostgreSQL{db: db}
}

func (p *PerformancePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PerformancePostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, records []*models.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return p.getDB(tx).WithContext(ctx).CreateInBatches(records, insertBatchSize).Error
}

func (p *PerformancePostgreSQL) DeleteBySession(ctx context.Context, tx *gorm.DB, sessionID string) error {
	return p.getDB(tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.PerformanceRecord{}).Error
}

func (p *PerformancePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PerformanceFilters) ([]*models.PerformanceRecord, int64, error) {
	var records []*models.PerformanceRecord
	var total int64

	// apply filter first
	query := p.getDB(tx).WithContext(ctx).Model(&models.PerformanceRecord{})
	query = applyPerformanceFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (p *PerformancePostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.PerformanceRecord, error) {
	var records []*models.PerformanceRecord
	err := p.getDB(tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *PerformancePostgreSQL) GetLessonStats(ctx context.Context, tx *gorm.DB, lessonID string) (*repositories.LessonStats, error) {
	stats := repositories.LessonStats{LessonID: lessonID}

	var correct int64
	err := p.getDB(tx).WithContext(ctx).
		Model(&models.PerformanceRecord{}).
		Where("lesson_id = ?", lessonID).
		Select("COUNT(DISTINCT session_id), COUNT(*), " +
			"COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0), " +
			"COALESCE(SUM(points), 0), COALESCE(AVG(time_taken), 0)").
		Row().Scan(&stats.Submissions, &stats.Answers, &correct, &stats.TotalPoints, &stats.AvgTimeTaken)
	if err != nil {
		return nil, fmt.Errorf("lesson stats: %w", err)
	}

	if stats.Answers > 0 {
		stats.CorrectRate = float64(correct) / float64(stats.Answers)
	}
	return &stats, nil
}

func (p *PerformancePostgreSQL) GetQuestionStats(ctx context.Context, tx *gorm.DB, lessonID string) ([]repositories.QuestionPerformanceStat, error) {
	var stats []repositories.QuestionPerformanceStat
	err := p.getDB(tx).WithContext(ctx).
		Model(&models.PerformanceRecord{}).
		Where("lesson_id = ?", lessonID).
		Select("question_id, COUNT(*) AS attempts, " +
			"SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct_count, " +
			"AVG(time_taken) AS avg_time_taken, AVG(retry) AS avg_retry").
		Group("question_id").
		Order("question_id ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("question stats: %w", err)
	}
	return stats, nil
}

func applyPerformanceFilters(query *gorm.DB, filters repositories.PerformanceFilters) *gorm.DB {
	if filters.LessonID != "" {
		query = query.Where("lesson_id = ?", filters.LessonID)
	}
	if filters.MissionID != nil {
		query = query.Where("mission_id = ?", *filters.MissionID)
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.SessionID != "" {
		query = query.Where("session_id = ?", filters.SessionID)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}

var sortableColumns = map[string]bool{
	"submitted_at": true,
	"points":       true,
	"question_id":  true,
	"time_taken":   true,
}

func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if !sortableColumns[sortBy] {
		sortBy = "submitted_at"
	}
	if strings.ToLower(sortOrder) != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder).Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
