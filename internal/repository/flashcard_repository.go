//go:generate mockery --name FlashcardRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistFilter はプレイリスト単位でカードを絞り込む条件です
type PlaylistFilter struct {
	CreatorID    uuid.UUID
	PlaylistName string
	// RecipientID を指定すると、その人宛てに共有されたコピーを対象にします
	RecipientID *uuid.UUID
	PublicOnly  bool
}

type FlashcardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, card *model.Flashcard) error
	CreateBatch(ctx context.Context, tx *gorm.DB, cards []*model.Flashcard) error
	FindByID(ctx context.Context, db *gorm.DB, flashcardID uuid.UUID) (*model.Flashcard, error)
	FindByPublicID(ctx context.Context, db *gorm.DB, publicID string) (*model.Flashcard, error)
	ListByCreator(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, playlistName string) ([]*model.Flashcard, error)
	ListPlaylist(ctx context.Context, db *gorm.DB, filter PlaylistFilter) ([]*model.Flashcard, error)
	ListReceived(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) ([]*model.Flashcard, error)
	ListPlaylists(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, publicOnly bool) ([]model.PlaylistSummary, error)
	PlaylistExists(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, playlistName string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID) error
	// RenamePlaylist は作成者のカードと、共有済みのコピーをまとめて改名します
	RenamePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, oldName, newName string) (int64, error)
	DeletePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, playlistName string) (int64, error)
	// DeleteSharedCopies は以前 recipientID に共有したプレイリストのコピーを削除します
	DeleteSharedCopies(ctx context.Context, tx *gorm.DB, creatorID, recipientID uuid.UUID, playlistName string) (int64, error)
}

type gormFlashcardRepository struct{}

func NewGormFlashcardRepository() FlashcardRepository {
	return &gormFlashcardRepository{}
}

// ownCards は作成者本人のカード (共有で受け取ったコピーを除く) に絞り込みます
func ownCards(db *gorm.DB, creatorID uuid.UUID) *gorm.DB {
	return db.Where("creator_id = ? AND recipient_id IS NULL", creatorID)
}

func (r *gormFlashcardRepository) Create(ctx context.Context, tx *gorm.DB, card *model.Flashcard) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(card).Error; err != nil {
		if isDuplicateKey(err) {
			logger.Warn("Duplicate key error on create flashcard", "error", err, "public_id", card.PublicID)
			return model.ErrConflict
		}
		logger.Error("Error creating flashcard in DB",
			"error", err,
			"creator_id", card.CreatorID.String(),
			"playlist_name", card.PlaylistName,
		)
		return fmt.Errorf("gormFlashcardRepository.Create: %w", err)
	}
	return nil
}

func (r *gormFlashcardRepository) CreateBatch(ctx context.Context, tx *gorm.DB, cards []*model.Flashcard) error {
	logger := middleware.GetLogger(ctx)
	if len(cards) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(cards, 100).Error; err != nil {
		if isDuplicateKey(err) {
			logger.Warn("Duplicate key error on batch create flashcards", "error", err)
			return model.ErrConflict
		}
		logger.Error("Error batch creating flashcards in DB", "error", err, "count", len(cards))
		return fmt.Errorf("gormFlashcardRepository.CreateBatch: %w", err)
	}
	return nil
}

func (r *gormFlashcardRepository) FindByID(ctx context.Context, db *gorm.DB, flashcardID uuid.UUID) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var card model.Flashcard
	result := db.WithContext(ctx).Where("flashcard_id = ?", flashcardID).First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding flashcard by ID in DB", "error", result.Error, "flashcard_id", flashcardID.String())
		return nil, fmt.Errorf("gormFlashcardRepository.FindByID: %w", result.Error)
	}
	return &card, nil
}

func (r *gormFlashcardRepository) FindByPublicID(ctx context.Context, db *gorm.DB, publicID string) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var card model.Flashcard
	result := db.WithContext(ctx).Where("public_id = ?", publicID).First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding flashcard by public ID in DB", "error", result.Error, "public_id", publicID)
		return nil, fmt.Errorf("gormFlashcardRepository.FindByPublicID: %w", result.Error)
	}
	return &card, nil
}

// ListByCreator は作成者のカードを新しい順に返します。playlistName が空なら全件です。
func (r *gormFlashcardRepository) ListByCreator(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, playlistName string) ([]*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var cards []*model.Flashcard
	query := ownCards(db.WithContext(ctx), creatorID)
	if playlistName != "" {
		query = query.Where("playlist_name = ?", playlistName)
	}
	if err := query.Order("created_at DESC").Find(&cards).Error; err != nil {
		logger.Error("Error listing flashcards by creator in DB", "error", err, "creator_id", creatorID.String())
		return nil, fmt.Errorf("gormFlashcardRepository.ListByCreator: %w", err)
	}
	return cards, nil
}

// ListPlaylist はプレイリスト1つ分のカードを作成順に返します
func (r *gormFlashcardRepository) ListPlaylist(ctx context.Context, db *gorm.DB, filter PlaylistFilter) ([]*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var cards []*model.Flashcard
	query := db.WithContext(ctx).Where("creator_id = ? AND playlist_name = ?", filter.CreatorID, filter.PlaylistName)
	if filter.RecipientID != nil {
		query = query.Where("recipient_id = ?", *filter.RecipientID)
	} else {
		query = query.Where("recipient_id IS NULL")
	}
	if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if err := query.Order("created_at ASC").Find(&cards).Error; err != nil {
		logger.Error("Error listing playlist cards in DB",
			"error", err,
			"creator_id", filter.CreatorID.String(),
			"playlist_name", filter.PlaylistName,
		)
		return nil, fmt.Errorf("gormFlashcardRepository.ListPlaylist: %w", err)
	}
	return cards, nil
}

func (r *gormFlashcardRepository) ListReceived(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) ([]*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var cards []*model.Flashcard
	result := db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&cards)
	if result.Error != nil {
		logger.Error("Error listing received flashcards in DB", "error", result.Error, "recipient_id", recipientID.String())
		return nil, fmt.Errorf("gormFlashcardRepository.ListReceived: %w", result.Error)
	}
	return cards, nil
}

// ListPlaylists はプレイリスト名ごとに集計して名前順で返します。
// publicOnly の場合は公開カードだけを数えます。
func (r *gormFlashcardRepository) ListPlaylists(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, publicOnly bool) ([]model.PlaylistSummary, error) {
	logger := middleware.GetLogger(ctx)
	var cards []*model.Flashcard
	query := ownCards(db.WithContext(ctx), creatorID).Select("creator_id", "playlist_name", "is_public", "updated_at")
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	if err := query.Find(&cards).Error; err != nil {
		logger.Error("Error listing playlists in DB", "error", err, "creator_id", creatorID.String())
		return nil, fmt.Errorf("gormFlashcardRepository.ListPlaylists: %w", err)
	}

	byName := make(map[string]*model.PlaylistSummary)
	for _, c := range cards {
		s, ok := byName[c.PlaylistName]
		if !ok {
			s = &model.PlaylistSummary{CreatorID: c.CreatorID, PlaylistName: c.PlaylistName}
			byName[c.PlaylistName] = s
		}
		s.CardCount++
		s.IsPublic = s.IsPublic || c.IsPublic
		if c.UpdatedAt.After(s.UpdatedAt) {
			s.UpdatedAt = c.UpdatedAt
		}
	}

	summaries := make([]model.PlaylistSummary, 0, len(byName))
	for _, s := range byName {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PlaylistName < summaries[j].PlaylistName
	})
	return summaries, nil
}

func (r *gormFlashcardRepository) PlaylistExists(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, playlistName string) (bool, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := ownCards(db.WithContext(ctx).Model(&model.Flashcard{}), creatorID).
		Where("playlist_name = ?", playlistName).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error checking playlist existence in DB", "error", result.Error, "playlist_name", playlistName)
		return false, fmt.Errorf("gormFlashcardRepository.PlaylistExists: %w", result.Error)
	}
	return count > 0, nil
}

func (r *gormFlashcardRepository) Update(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Flashcard{}).Where("flashcard_id = ?", flashcardID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating flashcard in DB", "error", result.Error, "flashcard_id", flashcardID.String())
		return fmt.Errorf("gormFlashcardRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFlashcardRepository) Delete(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("flashcard_id = ?", flashcardID).Delete(&model.Flashcard{})
	if result.Error != nil {
		logger.Error("Error deleting flashcard in DB", "error", result.Error, "flashcard_id", flashcardID.String())
		return fmt.Errorf("gormFlashcardRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFlashcardRepository) RenamePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, oldName, newName string) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.Flashcard{}).
		Where("creator_id = ? AND playlist_name = ?", creatorID, oldName).
		Update("playlist_name", newName)
	if result.Error != nil {
		logger.Error("Error renaming playlist in DB", "error", result.Error, "old_name", oldName, "new_name", newName)
		return 0, fmt.Errorf("gormFlashcardRepository.RenamePlaylist: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormFlashcardRepository) DeletePlaylist(ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, playlistName string) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := ownCards(tx.WithContext(ctx), creatorID).
		Where("playlist_name = ?", playlistName).
		Delete(&model.Flashcard{})
	if result.Error != nil {
		logger.Error("Error deleting playlist in DB", "error", result.Error, "playlist_name", playlistName)
		return 0, fmt.Errorf("gormFlashcardRepository.DeletePlaylist: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormFlashcardRepository) DeleteSharedCopies(ctx context.Context, tx *gorm.DB, creatorID, recipientID uuid.UUID, playlistName string) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("creator_id = ? AND recipient_id = ? AND playlist_name = ?", creatorID, recipientID, playlistName).
		Delete(&model.Flashcard{})
	if result.Error != nil {
		logger.Error("Error deleting shared copies in DB", "error", result.Error, "playlist_name", playlistName)
		return 0, fmt.Errorf("gormFlashcardRepository.DeleteSharedCopies: %w", result.Error)
	}
	return result.RowsAffected, nil
}
