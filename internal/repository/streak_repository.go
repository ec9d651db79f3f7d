//go:generate mockery --name StreakRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StreakRepository interface {
	Find(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.UserStreak, error)
	FindByUserIDs(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) ([]*model.UserStreak, error)
	Save(ctx context.Context, tx *gorm.DB, streak *model.UserStreak) error
	// ResetBroken は最終学習日が keepSince より前のストリークを 0 に戻します
	ResetBroken(ctx context.Context, db *gorm.DB, keepSince string) (int64, error)
	TopByCurrent(ctx context.Context, db *gorm.DB, limit int) ([]*model.UserStreak, error)
}

type gormStreakRepository struct{}

func NewGormStreakRepository() StreakRepository {
	return &gormStreakRepository{}
}

func (r *gormStreakRepository) Find(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.UserStreak, error) {
	logger := middleware.GetLogger(ctx)
	var streak model.UserStreak
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding streak in DB", "error", err, "user_id", userID.String())
		return nil, fmt.Errorf("gormStreakRepository.Find: %w", err)
	}
	return &streak, nil
}

func (r *gormStreakRepository) FindByUserIDs(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) ([]*model.UserStreak, error) {
	logger := middleware.GetLogger(ctx)
	var streaks []*model.UserStreak
	if len(userIDs) == 0 {
		return streaks, nil
	}
	if err := db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&streaks).Error; err != nil {
		logger.Error("Error finding streaks by user IDs in DB", "error", err)
		return nil, fmt.Errorf("gormStreakRepository.FindByUserIDs: %w", err)
	}
	return streaks, nil
}

// Save は主キー (user_id) で INSERT または UPDATE します
func (r *gormStreakRepository) Save(ctx context.Context, tx *gorm.DB, streak *model.UserStreak) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Omit("User").Save(streak).Error; err != nil {
		logger.Error("Error saving streak in DB", "error", err, "user_id", streak.UserID.String())
		return fmt.Errorf("gormStreakRepository.Save: %w", err)
	}
	return nil
}

func (r *gormStreakRepository) ResetBroken(ctx context.Context, db *gorm.DB, keepSince string) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.UserStreak{}).
		Where("current_streak > 0 AND last_study_date < ?", keepSince).
		Update("current_streak", 0)
	if result.Error != nil {
		logger.Error("Error resetting broken streaks in DB", "error", result.Error)
		return 0, fmt.Errorf("gormStreakRepository.ResetBroken: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormStreakRepository) TopByCurrent(ctx context.Context, db *gorm.DB, limit int) ([]*model.UserStreak, error) {
	logger := middleware.GetLogger(ctx)
	var streaks []*model.UserStreak
	result := db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.user_id = user_streaks.user_id AND users.deleted_at IS NULL").
		Where("user_streaks.current_streak > 0").
		Order("user_streaks.current_streak DESC").
		Order("user_streaks.longest_streak DESC").
		Order("users.username ASC").
		Limit(limit).
		Find(&streaks)
	if result.Error != nil {
		logger.Error("Error listing top streaks in DB", "error", result.Error)
		return nil, fmt.Errorf("gormStreakRepository.TopByCurrent: %w", result.Error)
	}
	return streaks, nil
}
