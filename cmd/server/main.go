package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"crm/docs"
	"crm/internal/auth"
	"crm/internal/cache"
	"crm/internal/config"
	"crm/internal/dashboard"
	"crm/internal/db"
	"crm/internal/handler"
	"crm/internal/logging"
	"crm/internal/repository"
	"crm/internal/router"
	"crm/internal/service"
)

// @title CRM API
// @version 1.0
// @description Clients, workers, deals, attendance and production records with a login endpoint.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Only enforced with AUTH_REQUIRED=true.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Development())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Open(db.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.DropAll(ctx, gormDB); err != nil {
			logger.Warn("drop tables", zap.Error(err))
		}
		cancel()
	}

	// The schema is created on the first request so the server starts without the database.
	bootstrapper := db.NewBootstrapper(gormDB, logger)

	cacheClient := cache.New(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	defer func() { _ = cacheClient.Close() }()
	if cacheClient == nil {
		logger.Warn("REDIS_ADDR is empty, refresh tokens are disabled")
	}

	repos := repository.NewSet(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	crmService := service.NewCRMService(repos)
	authService := service.NewAuthService(repos.Logins, jwtService, tokenStore, logger)

	formatter := dashboard.NewFormatter(cfg.Locale, cfg.CurrencySymbol)
	sessionStore := handler.NewSessionStore(cfg.SessionSecret, !cfg.Development())

	handlers := router.Handlers{
		CRM:    handler.NewCRMHandler(crmService),
		Auth:   handler.NewAuthHandler(authService),
		Report: handler.NewReportHandler(crmService),
		Web:    handler.NewWebHandler(authService, crmService, sessionStore, formatter, logger),
		Seed:   handler.NewSeedHandler(crmService),
	}

	e := echo.New()
	router.Register(e, cfg, logger, bootstrapper, jwtService, handlers)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	addr := ":" + cfg.ServerPort
	logger.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.AppEnv), zap.String("db_driver", cfg.DBDriver))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}

// swaggerURL builds the public swagger address; SwaggerHost may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
