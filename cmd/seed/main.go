package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"crm/internal/config"
	"crm/internal/db"
	"crm/internal/logging"
	"crm/internal/model"
	"crm/internal/repository"
	"crm/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Development())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting seed script")

	gormDB, err := db.Open(db.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.EnsureSchema(ctx, gormDB); err != nil {
		logger.Fatal("failed to prepare schema", zap.Error(err))
	}
	logger.Info("schema is up to date")

	logins, err := db.SeedLogins(ctx, gormDB)
	if err != nil {
		logger.Fatal("failed to seed logins", zap.Error(err))
	}
	logger.Info("logins seeded", zap.Int("inserted", logins))

	crmService := service.NewCRMService(repository.NewSet(gormDB))
	seeded, err := service.SeedDemo(ctx, crmService, model.Today())
	if err != nil {
		logger.Fatal("failed to seed demo data", zap.Error(err))
	}
	if !seeded {
		logger.Info("clients or workers already exist, demo data skipped")
		return
	}
	logger.Info("demo data seeded")
}
