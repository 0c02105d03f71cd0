package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"gorm.io/gorm"
)

// LedgerSink stores every forwarded batch in the performance ledger.
type LedgerSink struct {
	db   *gorm.DB
	repo repositories.PerformanceRepository
}

func NewLedgerSink(db *gorm.DB, repo repositories.PerformanceRepository) *LedgerSink {
	return &LedgerSink{db: db, repo: repo}
}

// Forward replaces any rows of the same session so a resubmission overwrites
// the earlier round.
func (s *LedgerSink) Forward(ctx context.Context, batch *models.GradedBatch) error {
	records := models.PerformanceRecordsFromBatch(batch)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteBySession(ctx, tx, batch.SessionID); err != nil {
			return err
		}
		return s.repo.CreateBatch(ctx, tx, records)
	})
}
