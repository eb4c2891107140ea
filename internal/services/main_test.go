package services

import (
	"context"
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "console"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestDB opens an isolated in-memory store with foreign keys enabled so
// the cascade behavior under test matches production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Project{}, &models.WorkItem{}))
	return db
}

// stubDirectory is a fixed-membership user directory.
type stubDirectory map[uuid.UUID]bool

func (d stubDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return d[id], nil
}
