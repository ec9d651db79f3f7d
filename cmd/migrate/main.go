// cmd/migrate/main.go はスキーマのマイグレーションとクエスト定義の投入を行います
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/repository"
	"go_flashcard_study/internal/service"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.RFC3339}))
	slog.SetDefault(logger)

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := &config.Cfg

	db, err := repository.NewDB(cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	slog.Info("Running AutoMigrate...", slog.Int("models", len(repository.Models())))
	if err := repository.Migrate(db); err != nil {
		slog.Error("Failed to auto migrate", slog.Any("error", err))
		os.Exit(1)
	}

	questService := service.NewQuestService(db, repository.NewGormQuestRepository(), repository.NewGormUserRepository(),
		service.NewNotificationService(db, repository.NewGormNotificationRepository()), cfg.Location())
	created, err := questService.SeedCatalog(context.Background())
	if err != nil {
		slog.Error("Failed to seed quest catalog", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migration completed", slog.Int("quests_created", created))
}
