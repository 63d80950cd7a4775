package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_DSN", "MYSQL_DSN", "DB_DRIVER", "SERVER_PORT", "AUTH_REQUIRED"} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_PASSWORD", "secret")

	cfg := Load("testdata/does-not-exist.env")

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, "crm_user:secret@tcp(database:3306)/crm_db?charset=utf8mb4&parseTime=True&loc=Local", cfg.DatabaseDSN)
}

func TestLoad_ExplicitDSNWins(t *testing.T) {
	t.Setenv("DATABASE_DSN", "file:crm.db?_pragma=foreign_keys(1)")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("APP_ENV", "development")

	cfg := Load("testdata/does-not-exist.env")

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:crm.db?_pragma=foreign_keys(1)", cfg.DatabaseDSN)
	assert.True(t, cfg.AuthRequired)
	assert.True(t, cfg.Development())
}
