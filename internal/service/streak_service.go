//go:generate mockery --name StreakService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"time"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// streakMilestones に到達した日は streak_milestone 通知を出します
var streakMilestones = map[int]bool{3: true, 7: true, 30: true, 100: true}

type StreakService interface {
	// RecordActivity は tx の中で今日の学習を記録します
	RecordActivity(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.StreakResponse, error)
	GetStreak(ctx context.Context, userID uuid.UUID) (*model.StreakResponse, error)
	ResetBroken(ctx context.Context) (int64, error)
}

type streakService struct {
	db            *gorm.DB
	streakRepo    repository.StreakRepository
	notifications NotificationService
	loc           *time.Location
	now           func() time.Time
}

func NewStreakService(db *gorm.DB, streakRepo repository.StreakRepository, notifications NotificationService, loc *time.Location) StreakService {
	return &streakService{
		db:            db,
		streakRepo:    streakRepo,
		notifications: notifications,
		loc:           loc,
		now:           time.Now,
	}
}

func (s *streakService) RecordActivity(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.StreakResponse, error) {
	logger := middleware.GetLogger(ctx)
	today := dayOf(s.now(), s.loc)

	streak, err := s.streakRepo.Find(ctx, tx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, internalError(err)
		}
		streak = &model.UserStreak{UserID: userID}
	}

	if streak.LastStudyDate == today {
		return toStreakResponse(streak, today), nil
	}

	if streak.LastStudyDate != "" && streak.LastStudyDate == dayBefore(today, 1) {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastStudyDate = today

	if err := s.streakRepo.Save(ctx, tx, streak); err != nil {
		return nil, internalError(err)
	}

	resp := toStreakResponse(streak, today)
	if streakMilestones[streak.CurrentStreak] {
		payload := map[string]any{"streak": streak.CurrentStreak}
		if err := s.notifications.Notify(ctx, tx, userID, nil, model.NotificationStreakMilestone, payload); err != nil {
			return nil, err
		}
		resp.MilestoneToday = streak.CurrentStreak
		logger.Info("Streak milestone reached", "streak", streak.CurrentStreak)
	}
	return resp, nil
}

func (s *streakService) GetStreak(ctx context.Context, userID uuid.UUID) (*model.StreakResponse, error) {
	today := dayOf(s.now(), s.loc)
	streak, err := s.streakRepo.Find(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return &model.StreakResponse{}, nil
		}
		return nil, internalError(err)
	}
	return toStreakResponse(streak, today), nil
}

// ResetBroken は昨日も今日も学習していないユーザーの連続日数を 0 にします
func (s *streakService) ResetBroken(ctx context.Context) (int64, error) {
	keepSince := dayBefore(dayOf(s.now(), s.loc), 1)
	n, err := s.streakRepo.ResetBroken(ctx, s.db, keepSince)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

// currentStreakOn は最終学習日が昨日より前なら 0 を返します
func currentStreakOn(streak *model.UserStreak, today string) int {
	if streak == nil {
		return 0
	}
	if streak.LastStudyDate == today || streak.LastStudyDate == dayBefore(today, 1) {
		return streak.CurrentStreak
	}
	return 0
}

func toStreakResponse(streak *model.UserStreak, today string) *model.StreakResponse {
	return &model.StreakResponse{
		CurrentStreak: currentStreakOn(streak, today),
		LongestStreak: streak.LongestStreak,
		LastStudyDate: streak.LastStudyDate,
		StudiedToday:  streak.LastStudyDate == today,
	}
}
