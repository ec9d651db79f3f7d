//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error)
	FindByIDs(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) ([]*model.User, error)
	Update(ctx context.Context, db *gorm.DB, userID uuid.UUID, updates map[string]interface{}) error
	AddXP(ctx context.Context, db *gorm.DB, userID uuid.UUID, amount int64) error
	Search(ctx context.Context, db *gorm.DB, query string, excludeID uuid.UUID, limit int) ([]*model.User, error)
	TopByXP(ctx context.Context, db *gorm.DB, limit int) ([]*model.User, error)
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

func (r *gormUserRepository) Create(ctx context.Context, db *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			logger.Warn("Duplicate key error on create user",
				"error", result.Error,
				"username", user.Username,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating user in DB", "error", result.Error, "username", user.Username)
		return fmt.Errorf("gormUserRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, db, "FindByID", "user_id = ?", userID)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByEmail", "email = ?", strings.ToLower(email))
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByUsername", "LOWER(username) = ?", strings.ToLower(username))
}

func (r *gormUserRepository) findOne(ctx context.Context, db *gorm.DB, op, cond string, arg interface{}) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User

	result := db.WithContext(ctx).Where(cond, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user in DB", "error", result.Error, "op", op)
		return nil, fmt.Errorf("gormUserRepository.%s: %w", op, result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByIDs(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) ([]*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var users []*model.User
	if len(userIDs) == 0 {
		return users, nil
	}
	if err := db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		logger.Error("Error finding users by IDs in DB", "error", err, "count", len(userIDs))
		return nil, fmt.Errorf("gormUserRepository.FindByIDs: %w", err)
	}
	return users, nil
}

func (r *gormUserRepository) Update(ctx context.Context, db *gorm.DB, userID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.User{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating user in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormUserRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// AddXP は経験値を加算します (読み取りを挟まない UPDATE xp = xp + ?)
func (r *gormUserRepository) AddXP(ctx context.Context, db *gorm.DB, userID uuid.UUID, amount int64) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("xp", gorm.Expr("xp + ?", amount))
	if result.Error != nil {
		logger.Error("Error adding xp in DB", "error", result.Error, "user_id", userID.String(), "amount", amount)
		return fmt.Errorf("gormUserRepository.AddXP: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Search はユーザー名の前方一致 (大文字小文字を区別しない) で有効なユーザーを探します
func (r *gormUserRepository) Search(ctx context.Context, db *gorm.DB, query string, excludeID uuid.UUID, limit int) ([]*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var users []*model.User
	pattern := escapeLike(strings.ToLower(query)) + "%"
	result := db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '\\'", pattern).
		Where("user_id <> ? AND is_active = ?", excludeID, true).
		Order("username ASC").
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		logger.Error("Error searching users in DB", "error", result.Error, "query", query)
		return nil, fmt.Errorf("gormUserRepository.Search: %w", result.Error)
	}
	return users, nil
}

func (r *gormUserRepository) TopByXP(ctx context.Context, db *gorm.DB, limit int) ([]*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var users []*model.User
	result := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("xp DESC").Order("username ASC").
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		logger.Error("Error listing users by xp in DB", "error", result.Error)
		return nil, fmt.Errorf("gormUserRepository.TopByXP: %w", result.Error)
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
