// Package scheduler は定期的なメンテナンスジョブを実行します
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go_flashcard_study/internal/middleware"

	"github.com/go-co-op/gocron"
)

type QuestPurger interface {
	PurgeOldProgress(ctx context.Context, retainDays int) (int64, error)
}

type StreakResetter interface {
	ResetBroken(ctx context.Context) (int64, error)
}

type SessionSweeper interface {
	SweepExpired(ctx context.Context) int
}

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Jobs struct {
	Quests          QuestPurger
	Streaks         StreakResetter
	Sessions        SessionSweeper
	Tokens          TokenPurger
	QuestRetainDays int
}

// Scheduler はアプリケーションの定期ジョブを管理します
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      Jobs
	logger    *slog.Logger
}

func New(jobs Jobs, loc *time.Location, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start はジョブを登録し、非同期で実行を開始します
func (s *Scheduler) Start() error {
	// 日付が変わった直後に途切れた連続記録をリセットする
	if _, err := s.scheduler.Every(1).Day().At("00:05").Do(s.resetStreaks); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(1).Day().At("00:10").Do(s.purgeQuestProgress); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(5).Minutes().Do(s.sweepSessions); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(1).Hour().Do(s.purgeTokens); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) jobContext(name string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	return middleware.WithLogger(ctx, s.logger.With("job", name)), cancel
}

func (s *Scheduler) resetStreaks() {
	ctx, cancel := s.jobContext("reset_streaks")
	defer cancel()
	if _, err := s.jobs.Streaks.ResetBroken(ctx); err != nil {
		middleware.GetLogger(ctx).Error("Failed to reset broken streaks", "error", err)
	}
}

func (s *Scheduler) purgeQuestProgress() {
	ctx, cancel := s.jobContext("purge_quest_progress")
	defer cancel()
	if _, err := s.jobs.Quests.PurgeOldProgress(ctx, s.jobs.QuestRetainDays); err != nil {
		middleware.GetLogger(ctx).Error("Failed to purge quest progress", "error", err)
	}
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := s.jobContext("sweep_sessions")
	defer cancel()
	s.jobs.Sessions.SweepExpired(ctx)
}

func (s *Scheduler) purgeTokens() {
	ctx, cancel := s.jobContext("purge_tokens")
	defer cancel()
	if _, err := s.jobs.Tokens.PurgeExpiredTokens(ctx); err != nil {
		middleware.GetLogger(ctx).Error("Failed to purge expired tokens", "error", err)
	}
}
