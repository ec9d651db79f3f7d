package service

import (
	"context"
	"errors"
	"strings"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID uuid.UUID, req *model.FavoriteRequest) (*model.FavoriteFolder, error)
	RemoveFavorite(ctx context.Context, userID uuid.UUID, req *model.FavoriteRequest) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*model.FavoriteFolder, error)
}

type favoriteService struct {
	db           *gorm.DB
	favoriteRepo repository.FavoriteRepository
	cardRepo     repository.FlashcardRepository
}

func NewFavoriteService(db *gorm.DB, favoriteRepo repository.FavoriteRepository, cardRepo repository.FlashcardRepository) FavoriteService {
	return &favoriteService{db: db, favoriteRepo: favoriteRepo, cardRepo: cardRepo}
}

// playlistVisible は自分のもの、公開カードを含むもの、自分宛てに共有されたもののいずれかかを判定します
func (s *favoriteService) playlistVisible(ctx context.Context, userID, creatorID uuid.UUID, playlistName string) (bool, error) {
	filters := []repository.PlaylistFilter{{CreatorID: creatorID, PlaylistName: playlistName, PublicOnly: creatorID != userID}}
	if creatorID != userID {
		filters = append(filters, repository.PlaylistFilter{CreatorID: creatorID, PlaylistName: playlistName, RecipientID: &userID})
	}
	for _, f := range filters {
		cards, err := s.cardRepo.ListPlaylist(ctx, s.db, f)
		if err != nil {
			return false, err
		}
		if len(cards) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID uuid.UUID, req *model.FavoriteRequest) (*model.FavoriteFolder, error) {
	playlistName := strings.TrimSpace(req.PlaylistName)
	visible, err := s.playlistVisible(ctx, userID, req.CreatorID, playlistName)
	if err != nil {
		return nil, internalError(err)
	}
	if !visible {
		return nil, errPlaylistNotFound
	}

	fav := &model.FavoriteFolder{
		FavoriteID:   uuid.New(),
		UserID:       userID,
		CreatorID:    req.CreatorID,
		PlaylistName: playlistName,
	}
	if err := s.favoriteRepo.Create(ctx, s.db, fav); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("ALREADY_FAVORITED", "既にお気に入りに登録されています。", "playlist_name", model.ErrConflict)
		}
		return nil, internalError(err)
	}
	middleware.GetLogger(ctx).Info("Favorite added", "creator_id", req.CreatorID, "playlist_name", playlistName)
	return fav, nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID uuid.UUID, req *model.FavoriteRequest) error {
	if err := s.favoriteRepo.Delete(ctx, s.db, userID, req.CreatorID, strings.TrimSpace(req.PlaylistName)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notFoundError("FAVORITE_NOT_FOUND", "お気に入りが見つかりません。")
		}
		return internalError(err)
	}
	return nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*model.FavoriteFolder, error) {
	favs, err := s.favoriteRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return favs, nil
}
