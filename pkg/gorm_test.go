package pkg

import (
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/learning-engine/internal/config"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_SQLite(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "sqlite:" + filepath.Join(t.TempDir(), "ledger.db"),
		Environment: "test",
	}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.PerformanceRecord{}))
}
