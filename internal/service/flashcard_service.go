//go:generate mockery --name FlashcardService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go_flashcard_study/internal/excel"
	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

type FlashcardService interface {
	CreateFlashcard(ctx context.Context, userID uuid.UUID, req *model.CreateFlashcardRequest) (*model.Flashcard, error)
	GetFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) (*model.Flashcard, error)
	GetByPublicID(ctx context.Context, viewerID uuid.UUID, publicID string) (*model.Flashcard, error)
	ListFlashcards(ctx context.Context, userID uuid.UUID, playlistName string) ([]*model.Flashcard, error)
	UpdateFlashcard(ctx context.Context, userID, flashcardID uuid.UUID, req *model.UpdateFlashcardRequest) (*model.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) error
	ListReceived(ctx context.Context, userID uuid.UUID) ([]*model.Flashcard, error)

	ListPlaylists(ctx context.Context, viewerID, ownerID uuid.UUID) ([]model.PlaylistSummary, error)
	RenamePlaylist(ctx context.Context, userID uuid.UUID, oldName, newName string) error
	DeletePlaylist(ctx context.Context, userID uuid.UUID, playlistName string) error
	SharePlaylist(ctx context.Context, userID uuid.UUID, playlistName string, req *model.SharePlaylistRequest) (*model.ShareResult, error)
	ImportPlaylist(ctx context.Context, userID uuid.UUID, playlistName string, isPublic bool, r io.Reader, filename string) (*model.ImportResult, error)
	ExportPlaylist(ctx context.Context, userID uuid.UUID, playlistName string, w io.Writer) error

	// LoadDeck は viewerID が学習できるプレイリストのカードを返します
	LoadDeck(ctx context.Context, viewerID, creatorID uuid.UUID, playlistName string, received bool) ([]*model.Flashcard, error)
}

type flashcardService struct {
	db            *gorm.DB
	cardRepo      repository.FlashcardRepository
	friendRepo    repository.FriendRepository
	favoriteRepo  repository.FavoriteRepository
	quests        QuestService
	notifications NotificationService
	maxDeckSize   int
}

func NewFlashcardService(
	db *gorm.DB,
	cardRepo repository.FlashcardRepository,
	friendRepo repository.FriendRepository,
	favoriteRepo repository.FavoriteRepository,
	quests QuestService,
	notifications NotificationService,
	maxDeckSize int,
) FlashcardService {
	return &flashcardService{
		db:            db,
		cardRepo:      cardRepo,
		friendRepo:    friendRepo,
		favoriteRepo:  favoriteRepo,
		quests:        quests,
		notifications: notifications,
		maxDeckSize:   maxDeckSize,
	}
}

var (
	errFlashcardNotFound = model.NewAppError("FLASHCARD_NOT_FOUND", "カードが見つかりません。", "", model.ErrNotFound)
	errPlaylistNotFound  = model.NewAppError("PLAYLIST_NOT_FOUND", "プレイリストが見つかりません。", "", model.ErrNotFound)
)

func requiredField(value, field, label string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", model.NewAppError("VALIDATION_ERROR", label+"は必須項目です。", field, model.ErrInvalidInput)
	}
	return v, nil
}

func newFlashcard(creatorID uuid.UUID, playlist, front, back string, isPublic bool) (*model.Flashcard, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	return &model.Flashcard{
		FlashcardID:  uuid.New(),
		PublicID:     publicID,
		CreatorID:    creatorID,
		PlaylistName: playlist,
		Front:        front,
		Back:         back,
		IsPublic:     isPublic,
	}, nil
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID uuid.UUID, req *model.CreateFlashcardRequest) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)

	front, err := requiredField(req.Front, "front", "表面")
	if err != nil {
		return nil, err
	}
	back, err := requiredField(req.Back, "back", "裏面")
	if err != nil {
		return nil, err
	}
	playlist, err := requiredField(req.PlaylistName, "playlist_name", "プレイリスト名")
	if err != nil {
		return nil, err
	}

	card, err := newFlashcard(userID, playlist, front, back, req.IsPublic)
	if err != nil {
		logger.Error("Failed to generate public id", "error", err)
		return nil, internalError(err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cardRepo.Create(ctx, tx, card); err != nil {
			return internalError(err)
		}
		if _, err := s.quests.RecordEvent(ctx, tx, userID, model.EventFlashcardsCreated, 1); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Flashcard created", "flashcard_id", card.FlashcardID, "playlist_name", card.PlaylistName)
	return card, nil
}

func (s *flashcardService) find(ctx context.Context, db *gorm.DB, flashcardID uuid.UUID) (*model.Flashcard, error) {
	card, err := s.cardRepo.FindByID(ctx, db, flashcardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errFlashcardNotFound
		}
		return nil, internalError(err)
	}
	return card, nil
}

// GetFlashcard は作成者・受信者・公開カードのいずれかなら返します。見えないカードは存在しない扱いです。
func (s *flashcardService) GetFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) (*model.Flashcard, error) {
	card, err := s.find(ctx, s.db, flashcardID)
	if err != nil {
		return nil, err
	}
	if !card.VisibleTo(userID) {
		return nil, errFlashcardNotFound
	}
	return card, nil
}

func (s *flashcardService) GetByPublicID(ctx context.Context, viewerID uuid.UUID, publicID string) (*model.Flashcard, error) {
	card, err := s.cardRepo.FindByPublicID(ctx, s.db, publicID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errFlashcardNotFound
		}
		return nil, internalError(err)
	}
	if !card.IsPublic && (viewerID == uuid.Nil || card.CreatorID != viewerID || card.RecipientID != nil) {
		return nil, errFlashcardNotFound
	}
	return card, nil
}

func (s *flashcardService) ListFlashcards(ctx context.Context, userID uuid.UUID, playlistName string) ([]*model.Flashcard, error) {
	cards, err := s.cardRepo.ListByCreator(ctx, s.db, userID, strings.TrimSpace(playlistName))
	if err != nil {
		return nil, internalError(err)
	}
	return cards, nil
}

// ownedCard は自分が作成したカード (受け取ったコピーを除く) を返します
func (s *flashcardService) ownedCard(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID) (*model.Flashcard, error) {
	card, err := s.find(ctx, tx, flashcardID)
	if err != nil {
		return nil, err
	}
	if card.CreatorID != userID || card.RecipientID != nil {
		if card.VisibleTo(userID) {
			return nil, forbiddenError("NOT_FLASHCARD_OWNER", "このカードを編集する権限がありません。")
		}
		return nil, errFlashcardNotFound
	}
	return card, nil
}

func (s *flashcardService) UpdateFlashcard(ctx context.Context, userID, flashcardID uuid.UUID, req *model.UpdateFlashcardRequest) (*model.Flashcard, error) {
	var updated *model.Flashcard
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedCard(ctx, tx, userID, flashcardID); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Front != nil {
			v, err := requiredField(*req.Front, "front", "表面")
			if err != nil {
				return err
			}
			updates["front"] = v
		}
		if req.Back != nil {
			v, err := requiredField(*req.Back, "back", "裏面")
			if err != nil {
				return err
			}
			updates["back"] = v
		}
		if req.PlaylistName != nil {
			v, err := requiredField(*req.PlaylistName, "playlist_name", "プレイリスト名")
			if err != nil {
				return err
			}
			updates["playlist_name"] = v
		}
		if req.IsPublic != nil {
			updates["is_public"] = *req.IsPublic
		}

		if err := s.cardRepo.Update(ctx, tx, flashcardID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return errFlashcardNotFound
			}
			return internalError(err)
		}
		card, err := s.find(ctx, tx, flashcardID)
		if err != nil {
			return err
		}
		updated = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Flashcard updated", "flashcard_id", flashcardID)
	return updated, nil
}

func (s *flashcardService) DeleteFlashcard(ctx context.Context, userID, flashcardID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedCard(ctx, tx, userID, flashcardID); err != nil {
			return err
		}
		if err := s.cardRepo.Delete(ctx, tx, flashcardID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return errFlashcardNotFound
			}
			return internalError(err)
		}
		middleware.GetLogger(ctx).Info("Flashcard deleted", "flashcard_id", flashcardID)
		return nil
	})
}

func (s *flashcardService) ListReceived(ctx context.Context, userID uuid.UUID) ([]*model.Flashcard, error) {
	cards, err := s.cardRepo.ListReceived(ctx, s.db, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return cards, nil
}

// ListPlaylists は本人には全プレイリスト、他人には公開カードのあるプレイリストのみを返します
func (s *flashcardService) ListPlaylists(ctx context.Context, viewerID, ownerID uuid.UUID) ([]model.PlaylistSummary, error) {
	summaries, err := s.cardRepo.ListPlaylists(ctx, s.db, ownerID, viewerID != ownerID)
	if err != nil {
		return nil, internalError(err)
	}
	return summaries, nil
}

func (s *flashcardService) RenamePlaylist(ctx context.Context, userID uuid.UUID, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName, err := requiredField(newName, "new_name", "新しいプレイリスト名")
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.cardRepo.PlaylistExists(ctx, tx, userID, oldName)
		if err != nil {
			return internalError(err)
		}
		if !exists {
			return errPlaylistNotFound
		}
		taken, err := s.cardRepo.PlaylistExists(ctx, tx, userID, newName)
		if err != nil {
			return internalError(err)
		}
		if taken {
			return model.NewAppError("DUPLICATE_PLAYLIST", "同じ名前のプレイリストが既に存在します。", "new_name", model.ErrConflict)
		}

		n, err := s.cardRepo.RenamePlaylist(ctx, tx, userID, oldName, newName)
		if err != nil {
			return internalError(err)
		}
		if err := s.favoriteRepo.RenamePlaylist(ctx, tx, userID, oldName, newName); err != nil {
			return internalError(err)
		}
		middleware.GetLogger(ctx).Info("Playlist renamed", "old_name", oldName, "new_name", newName, "cards", n)
		return nil
	})
}

func (s *flashcardService) DeletePlaylist(ctx context.Context, userID uuid.UUID, playlistName string) error {
	playlistName = strings.TrimSpace(playlistName)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.cardRepo.DeletePlaylist(ctx, tx, userID, playlistName)
		if err != nil {
			return internalError(err)
		}
		if n == 0 {
			return errPlaylistNotFound
		}
		if err := s.favoriteRepo.DeletePlaylist(ctx, tx, userID, playlistName); err != nil {
			return internalError(err)
		}
		middleware.GetLogger(ctx).Info("Playlist deleted", "playlist_name", playlistName, "cards", n)
		return nil
	})
}

// SharePlaylist はプレイリストを承認済みの友達にコピーして共有します。
// 同じ相手への再共有は前回のコピーを置き換えます。
func (s *flashcardService) SharePlaylist(ctx context.Context, userID uuid.UUID, playlistName string, req *model.SharePlaylistRequest) (*model.ShareResult, error) {
	logger := middleware.GetLogger(ctx)
	playlistName = strings.TrimSpace(playlistName)

	seen := make(map[uuid.UUID]bool, len(req.RecipientIDs))
	recipients := make([]uuid.UUID, 0, len(req.RecipientIDs))
	for _, id := range req.RecipientIDs {
		if id == userID {
			return nil, model.NewAppError("SELF_SHARE", "自分自身には共有できません。", "recipient_ids", model.ErrInvalidInput)
		}
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	result := &model.ShareResult{PlaylistName: playlistName, Recipients: recipients}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		friendIDs, err := s.friendRepo.FriendIDs(ctx, tx, userID)
		if err != nil {
			return internalError(err)
		}
		friends := make(map[uuid.UUID]bool, len(friendIDs))
		for _, id := range friendIDs {
			friends[id] = true
		}
		for _, id := range recipients {
			if !friends[id] {
				return model.NewAppError("NOT_FRIENDS", "友達以外には共有できません。", "recipient_ids", model.ErrForbidden)
			}
		}

		cards, err := s.cardRepo.ListPlaylist(ctx, tx, repository.PlaylistFilter{CreatorID: userID, PlaylistName: playlistName})
		if err != nil {
			return internalError(err)
		}
		if len(cards) == 0 {
			return errPlaylistNotFound
		}

		for _, rid := range recipients {
			if _, err := s.cardRepo.DeleteSharedCopies(ctx, tx, userID, rid, playlistName); err != nil {
				return internalError(err)
			}
			copies := make([]*model.Flashcard, 0, len(cards))
			for _, c := range cards {
				cp, err := newFlashcard(userID, playlistName, c.Front, c.Back, false)
				if err != nil {
					return internalError(err)
				}
				recipientID := rid
				cp.RecipientID = &recipientID
				copies = append(copies, cp)
			}
			if err := s.cardRepo.CreateBatch(ctx, tx, copies); err != nil {
				return internalError(err)
			}
			result.CardsShared += len(copies)
		}

		payload := map[string]any{
			"playlist_name": playlistName,
			"card_count":    len(cards),
		}
		return s.notifications.NotifyMany(ctx, tx, recipients, &userID, model.NotificationFlashcardShared, payload)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Playlist shared", "playlist_name", playlistName, "recipients", len(recipients), "cards", result.CardsShared)
	return result, nil
}

// ImportPlaylist はファイルのカードを全件まとめてプレイリストに追加します。1件でも失敗すれば何も追加しません。
func (s *flashcardService) ImportPlaylist(ctx context.Context, userID uuid.UUID, playlistName string, isPublic bool, r io.Reader, filename string) (*model.ImportResult, error) {
	logger := middleware.GetLogger(ctx)
	playlistName, err := requiredField(playlistName, "playlist_name", "プレイリスト名")
	if err != nil {
		return nil, err
	}

	parsed, err := excel.ReadCards(r, filename, s.maxDeckSize)
	if err != nil {
		return nil, importError(err)
	}
	if len(parsed.Cards) == 0 {
		return nil, model.NewAppError("EMPTY_IMPORT", "取り込めるカードがありません。", "file", model.ErrInvalidInput)
	}

	cards := make([]*model.Flashcard, 0, len(parsed.Cards))
	for _, c := range parsed.Cards {
		card, err := newFlashcard(userID, playlistName, c.Front, c.Back, isPublic)
		if err != nil {
			return nil, internalError(err)
		}
		cards = append(cards, card)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cardRepo.CreateBatch(ctx, tx, cards); err != nil {
			return internalError(err)
		}
		if _, err := s.quests.RecordEvent(ctx, tx, userID, model.EventFlashcardsCreated, len(cards)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Playlist imported", "playlist_name", playlistName, "created", len(cards), "skipped", parsed.Skipped)
	return &model.ImportResult{PlaylistName: playlistName, Created: len(cards), Skipped: parsed.Skipped}, nil
}

func importError(err error) error {
	var rowErr *excel.RowError
	switch {
	case errors.Is(err, excel.ErrUnsupportedFormat):
		return model.NewAppError("UNSUPPORTED_FILE", ".xlsx または .csv ファイルを指定してください。", "file", model.ErrInvalidInput)
	case errors.Is(err, excel.ErrTooManyRows):
		return model.NewAppError("TOO_MANY_CARDS", "一度に取り込めるカード数の上限を超えています。", "file", model.ErrInvalidInput)
	case errors.As(err, &rowErr):
		return model.NewAppError("INVALID_ROW", rowErr.Error(), "file", model.ErrInvalidInput)
	default:
		return model.NewAppError("INVALID_FILE", "ファイルを読み込めませんでした。", "file", errors.Join(model.ErrInvalidInput, err))
	}
}

func (s *flashcardService) ExportPlaylist(ctx context.Context, userID uuid.UUID, playlistName string, w io.Writer) error {
	cards, err := s.cardRepo.ListPlaylist(ctx, s.db, repository.PlaylistFilter{CreatorID: userID, PlaylistName: strings.TrimSpace(playlistName)})
	if err != nil {
		return internalError(err)
	}
	if len(cards) == 0 {
		return errPlaylistNotFound
	}
	rows := make([]excel.Card, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, excel.Card{Front: c.Front, Back: c.Back})
	}
	if err := excel.WriteCards(w, rows); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *flashcardService) LoadDeck(ctx context.Context, viewerID, creatorID uuid.UUID, playlistName string, received bool) ([]*model.Flashcard, error) {
	filter := repository.PlaylistFilter{CreatorID: creatorID, PlaylistName: strings.TrimSpace(playlistName)}
	switch {
	case received:
		filter.RecipientID = &viewerID
	case creatorID != viewerID:
		filter.PublicOnly = true
	}
	cards, err := s.cardRepo.ListPlaylist(ctx, s.db, filter)
	if err != nil {
		return nil, internalError(err)
	}
	if len(cards) == 0 {
		return nil, errPlaylistNotFound
	}
	return cards, nil
}
