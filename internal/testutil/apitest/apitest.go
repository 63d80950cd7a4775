// Package apitest builds a fully wired API server on an in-memory database.
package apitest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"crm/internal/auth"
	"crm/internal/config"
	"crm/internal/dashboard"
	"crm/internal/db"
	"crm/internal/handler"
	"crm/internal/repository"
	"crm/internal/router"
	"crm/internal/service"
	"crm/internal/testutil"
)

// Options tweak the server built by NewServer.
type Options struct {
	AuthRequired bool
}

// NewServer returns an echo instance with every route registered. The schema
// and default logins are created by the first request, as in production.
func NewServer(t *testing.T, opts Options) *echo.Echo {
	t.Helper()

	conn := testutil.NewDB(t)
	logger := zap.NewNop()
	repos := repository.NewSet(conn)
	jwtService := auth.NewJWTService("test-secret")
	tokenStore := auth.NewTokenStore(NewMemoryStore())

	crmService := service.NewCRMService(repos)
	authService := service.NewAuthService(repos.Logins, jwtService, tokenStore, logger)
	sessions := handler.NewSessionStore("session-secret", false)

	cfg := &config.Config{AppEnv: "development", AuthRequired: opts.AuthRequired}
	e := echo.New()
	router.Register(e, cfg, logger, db.NewBootstrapper(conn, logger), jwtService, router.Handlers{
		CRM:    handler.NewCRMHandler(crmService),
		Auth:   handler.NewAuthHandler(authService),
		Report: handler.NewReportHandler(crmService),
		Web:    handler.NewWebHandler(authService, crmService, sessions, dashboard.NewFormatter("en", "₽"), logger),
		Seed:   handler.NewSeedHandler(crmService),
	})
	return e
}

// MemoryStore is an in-process auth.KeyValueStore.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
