// Package testutil provides shared helpers for database backed tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crm/internal/db"
)

// NewDB opens a private in-memory SQLite database with foreign keys enabled.
// The database is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	conn, err := db.Open(db.Config{
		Driver: db.DriverSQLite,
		DSN:    dsn,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// a single connection keeps the shared in-memory database alive and serializes writes
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return conn
}

// NewSchemaDB returns NewDB with every table created.
func NewSchemaDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn := NewDB(t)
	require.NoError(t, db.EnsureSchema(context.Background(), conn))
	return conn
}
