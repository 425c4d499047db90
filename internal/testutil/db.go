// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"reelhub/internal/database"
	"reelhub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewTestDB returns an isolated in-memory SQLite database with every collection migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return NewTestDBWith(t, models.DefaultCollections())
}

// NewTestDBWith is NewTestDB with custom collection names.
func NewTestDBWith(t *testing.T, cols models.Collections) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:reelhub_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         database.NewGormLogger(),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, cols))
	return db
}
