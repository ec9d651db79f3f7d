package repository

import (
	"context"
	"fmt"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(ctx context.Context, db *gorm.DB, fav *model.FavoriteFolder) error
	Delete(ctx context.Context, db *gorm.DB, userID, creatorID uuid.UUID, playlistName string) error
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FavoriteFolder, error)
	// RenamePlaylist / DeletePlaylist は作成者側のプレイリスト操作に追従します
	RenamePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, oldName, newName string) error
	DeletePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, playlistName string) error
}

type gormFavoriteRepository struct{}

func NewGormFavoriteRepository() FavoriteRepository {
	return &gormFavoriteRepository{}
}

func (r *gormFavoriteRepository) Create(ctx context.Context, db *gorm.DB, fav *model.FavoriteFolder) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(fav).Error; err != nil {
		if isDuplicateKey(err) {
			return model.ErrConflict
		}
		logger.Error("Error creating favorite folder in DB", "error", err, "playlist_name", fav.PlaylistName)
		return fmt.Errorf("gormFavoriteRepository.Create: %w", err)
	}
	return nil
}

func (r *gormFavoriteRepository) Delete(ctx context.Context, db *gorm.DB, userID, creatorID uuid.UUID, playlistName string) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Where("user_id = ? AND creator_id = ? AND playlist_name = ?", userID, creatorID, playlistName).
		Delete(&model.FavoriteFolder{})
	if result.Error != nil {
		logger.Error("Error deleting favorite folder in DB", "error", result.Error)
		return fmt.Errorf("gormFavoriteRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFavoriteRepository) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FavoriteFolder, error) {
	logger := middleware.GetLogger(ctx)
	var favs []*model.FavoriteFolder
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&favs).Error; err != nil {
		logger.Error("Error listing favorite folders in DB", "error", err)
		return nil, fmt.Errorf("gormFavoriteRepository.ListByUser: %w", err)
	}
	return favs, nil
}

func (r *gormFavoriteRepository) RenamePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, oldName, newName string) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.FavoriteFolder{}).
		Where("creator_id = ? AND playlist_name = ?", creatorID, oldName).
		Update("playlist_name", newName)
	if result.Error != nil {
		logger.Error("Error renaming favorite folders in DB", "error", result.Error)
		return fmt.Errorf("gormFavoriteRepository.RenamePlaylist: %w", result.Error)
	}
	return nil
}

func (r *gormFavoriteRepository) DeletePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, playlistName string) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("creator_id = ? AND playlist_name = ?", creatorID, playlistName).
		Delete(&model.FavoriteFolder{})
	if result.Error != nil {
		logger.Error("Error deleting favorite folders in DB", "error", result.Error)
		return fmt.Errorf("gormFavoriteRepository.DeletePlaylist: %w", result.Error)
	}
	return nil
}
