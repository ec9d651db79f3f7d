//go:generate mockery --name QuestRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestRepository interface {
	Create(ctx context.Context, db *gorm.DB, quest *model.Quest) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*model.Quest, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]*model.Quest, error)
	ListActiveByEvent(ctx context.Context, db *gorm.DB, eventType model.QuestEventType) ([]*model.Quest, error)

	// EnsureUserQuest はその日の進捗行が無ければ作成し、行を返します
	EnsureUserQuest(ctx context.Context, tx *gorm.DB, userID, questID uuid.UUID, questDate string) (*model.UserQuest, error)
	// IncrementProgress は進捗を amount 加算し、target で頭打ちにします
	IncrementProgress(ctx context.Context, tx *gorm.DB, userQuestID uuid.UUID, amount, target int) error
	// MarkCompleted は進捗が target に達していて未達成のときだけ達成日時を記録し、記録したかを返します
	MarkCompleted(ctx context.Context, tx *gorm.DB, userQuestID uuid.UUID, target int, at time.Time) (bool, error)
	DeleteUserQuestsBefore(ctx context.Context, db *gorm.DB, questDate string) (int64, error)
}

type gormQuestRepository struct{}

func NewGormQuestRepository() QuestRepository {
	return &gormQuestRepository{}
}

func (r *gormQuestRepository) Create(ctx context.Context, db *gorm.DB, quest *model.Quest) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(quest).Error; err != nil {
		if isDuplicateKey(err) {
			return model.ErrConflict
		}
		logger.Error("Error creating quest in DB", "error", err, "code", quest.Code)
		return fmt.Errorf("gormQuestRepository.Create: %w", err)
	}
	return nil
}

func (r *gormQuestRepository) FindByCode(ctx context.Context, db *gorm.DB, code string) (*model.Quest, error) {
	logger := middleware.GetLogger(ctx)
	var quest model.Quest
	if err := db.WithContext(ctx).Where("code = ?", code).First(&quest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding quest by code in DB", "error", err, "code", code)
		return nil, fmt.Errorf("gormQuestRepository.FindByCode: %w", err)
	}
	return &quest, nil
}

func (r *gormQuestRepository) ListActive(ctx context.Context, db *gorm.DB) ([]*model.Quest, error) {
	logger := middleware.GetLogger(ctx)
	var quests []*model.Quest
	if err := db.WithContext(ctx).Where("is_active = ?", true).Order("code ASC").Find(&quests).Error; err != nil {
		logger.Error("Error listing active quests in DB", "error", err)
		return nil, fmt.Errorf("gormQuestRepository.ListActive: %w", err)
	}
	return quests, nil
}

func (r *gormQuestRepository) ListActiveByEvent(ctx context.Context, db *gorm.DB, eventType model.QuestEventType) ([]*model.Quest, error) {
	logger := middleware.GetLogger(ctx)
	var quests []*model.Quest
	result := db.WithContext(ctx).
		Where("is_active = ? AND event_type = ?", true, eventType).
		Order("code ASC").
		Find(&quests)
	if result.Error != nil {
		logger.Error("Error listing quests by event in DB", "error", result.Error, "event_type", eventType)
		return nil, fmt.Errorf("gormQuestRepository.ListActiveByEvent: %w", result.Error)
	}
	return quests, nil
}

func (r *gormQuestRepository) EnsureUserQuest(ctx context.Context, tx *gorm.DB, userID, questID uuid.UUID, questDate string) (*model.UserQuest, error) {
	logger := middleware.GetLogger(ctx)
	uq := &model.UserQuest{
		UserQuestID: uuid.New(),
		UserID:      userID,
		QuestID:     questID,
		QuestDate:   questDate,
	}
	// 同時リクエストで既に作られていても失敗させない
	if err := tx.WithContext(ctx).Omit("Quest").Clauses(clause.OnConflict{DoNothing: true}).Create(uq).Error; err != nil {
		logger.Error("Error creating user quest in DB", "error", err, "quest_id", questID.String())
		return nil, fmt.Errorf("gormQuestRepository.EnsureUserQuest: %w", err)
	}

	var existing model.UserQuest
	result := tx.WithContext(ctx).
		Where("user_id = ? AND quest_id = ? AND quest_date = ?", userID, questID, questDate).
		First(&existing)
	if result.Error != nil {
		logger.Error("Error reading user quest in DB", "error", result.Error, "quest_id", questID.String())
		return nil, fmt.Errorf("gormQuestRepository.EnsureUserQuest: %w", result.Error)
	}
	return &existing, nil
}

func (r *gormQuestRepository) IncrementProgress(ctx context.Context, tx *gorm.DB, userQuestID uuid.UUID, amount, target int) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.UserQuest{}).
		Where("user_quest_id = ?", userQuestID).
		Updates(map[string]interface{}{
			"progress":   gorm.Expr("CASE WHEN progress + ? > ? THEN ? ELSE progress + ? END", amount, target, target, amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Error incrementing quest progress in DB", "error", result.Error, "user_quest_id", userQuestID.String())
		return fmt.Errorf("gormQuestRepository.IncrementProgress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormQuestRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, userQuestID uuid.UUID, target int, at time.Time) (bool, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.UserQuest{}).
		Where("user_quest_id = ? AND completed_at IS NULL AND progress >= ?", userQuestID, target).
		Update("completed_at", at)
	if result.Error != nil {
		logger.Error("Error marking quest completed in DB", "error", result.Error, "user_quest_id", userQuestID.String())
		return false, fmt.Errorf("gormQuestRepository.MarkCompleted: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormQuestRepository) DeleteUserQuestsBefore(ctx context.Context, db *gorm.DB, questDate string) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("quest_date < ?", questDate).Delete(&model.UserQuest{})
	if result.Error != nil {
		logger.Error("Error purging user quests in DB", "error", result.Error, "before", questDate)
		return 0, fmt.Errorf("gormQuestRepository.DeleteUserQuestsBefore: %w", result.Error)
	}
	return result.RowsAffected, nil
}
