package pkg

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/learning-engine/internal/config"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase opens the performance ledger. URLs starting with "sqlite:" open
// a local SQLite file, anything else is handed to the Postgres driver.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(cfg.DatabaseURL, "sqlite:"); ok {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.PerformanceRecord{}); err != nil {
		return fmt.Errorf("failed to migrate performance records: %w", err)
	}
	return nil
}
