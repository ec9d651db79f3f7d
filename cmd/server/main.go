// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"gorm.io/gorm"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/handlers"
	"go_flashcard_study/internal/repository"
	"go_flashcard_study/internal/scheduler"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/study"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := &config.Cfg

	logger := newLogger(cfg.Log.Level, tempLogger)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	db, err := repository.NewDB(cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	mailer, err := service.NewMailer(cfg)
	if err != nil {
		slog.Error("Error initializing mailer", slog.Any("error", err))
		os.Exit(1)
	}

	loc := cfg.Location()

	// Dependency Injection
	userRepo := repository.NewGormUserRepository()
	tokenRepo := repository.NewGormTokenRepository()
	cardRepo := repository.NewGormFlashcardRepository()
	friendRepo := repository.NewGormFriendRepository()
	favoriteRepo := repository.NewGormFavoriteRepository()
	notificationRepo := repository.NewGormNotificationRepository()
	questRepo := repository.NewGormQuestRepository()
	streakRepo := repository.NewGormStreakRepository()

	notificationService := service.NewNotificationService(db, notificationRepo)
	questService := service.NewQuestService(db, questRepo, userRepo, notificationService, loc)
	streakService := service.NewStreakService(db, streakRepo, notificationService, loc)
	authService := service.NewAuthService(db, userRepo, tokenRepo, mailer, cfg)
	userService := service.NewUserService(db, userRepo, streakRepo, friendRepo, loc)
	friendService := service.NewFriendService(db, friendRepo, userRepo, notificationService)
	flashcardService := service.NewFlashcardService(db, cardRepo, friendRepo, favoriteRepo, questService, notificationService, cfg.Study.MaxDeckSize)
	favoriteService := service.NewFavoriteService(db, favoriteRepo, cardRepo)
	leaderboardService := service.NewLeaderboardService(db, userRepo, friendRepo, streakRepo, cfg.App.LeaderboardLimit, loc)
	studyService := service.NewStudyService(db, study.NewStore(), flashcardService, questService, streakService, cfg.Study)
	feedbackService := service.NewFeedbackService(db, userRepo, cfg.Feedback.WebhookURL, service.NewFeedbackClient(cfg.Feedback, nil))

	if n, err := questService.SeedCatalog(context.Background()); err != nil {
		slog.Error("Error seeding quest catalog", slog.Any("error", err))
		os.Exit(1)
	} else if n > 0 {
		slog.Info("Quest catalog seeded", slog.Int("created", n))
	}

	jobs := scheduler.New(scheduler.Jobs{
		Quests:          questService,
		Streaks:         streakService,
		Sessions:        studyService,
		Tokens:          authService,
		QuestRetainDays: cfg.App.QuestRetainDays,
	}, loc, logger)
	if err := jobs.Start(); err != nil {
		slog.Error("Error starting scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer jobs.Stop()

	router := handlers.NewRouter(cfg, logger, &handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService, flashcardService),
		Flashcard:    handlers.NewFlashcardHandler(flashcardService),
		Playlist:     handlers.NewPlaylistHandler(flashcardService),
		Favorite:     handlers.NewFavoriteHandler(favoriteService),
		Friend:       handlers.NewFriendHandler(friendService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Progress:     handlers.NewProgressHandler(questService, streakService),
		Leaderboard:  handlers.NewLeaderboardHandler(leaderboardService, cfg.App.LeaderboardLimit),
		Study:        handlers.NewStudyHandler(studyService),
		Feedback:     handlers.NewFeedbackHandler(feedbackService),
		Health:       healthHandler(db),
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}

// newLogger は log.level と APP_ENV から slog ロガーを組み立てます
func newLogger(level string, tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		tempLogger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}

func healthHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
