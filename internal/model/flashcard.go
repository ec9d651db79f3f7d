// internal/model/flashcard.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Flashcard は表裏のテキストを持つカード1枚を表します。
// 同じ作成者・同じ PlaylistName のカードが1つのプレイリスト(フォルダ)になります。
type Flashcard struct {
	FlashcardID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"flashcard_id"`
	PublicID     string         `gorm:"size:32;uniqueIndex;not null" json:"public_id"`
	CreatorID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_creator_playlist" json:"creator_id"`
	RecipientID  *uuid.UUID     `gorm:"type:uuid;index" json:"recipient_id,omitempty"`
	PlaylistName string         `gorm:"not null;size:100;index:idx_creator_playlist" json:"playlist_name"`
	Front        string         `gorm:"not null;size:1000" json:"front"`
	Back         string         `gorm:"not null;size:1000" json:"back"`
	IsPublic     bool           `gorm:"not null;default:false" json:"is_public"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}

// VisibleTo は userID がこのカードを閲覧できるかを返します
func (f *Flashcard) VisibleTo(userID uuid.UUID) bool {
	if f.IsPublic || f.CreatorID == userID {
		return true
	}
	return f.RecipientID != nil && *f.RecipientID == userID
}

// カード作成リクエストDTO
type CreateFlashcardRequest struct {
	Front        string `json:"front" validate:"required,max=1000"`
	Back         string `json:"back" validate:"required,max=1000"`
	PlaylistName string `json:"playlist_name" validate:"required,max=100"`
	IsPublic     bool   `json:"is_public"`
}

// カード更新（部分）リクエストDTO
type UpdateFlashcardRequest struct {
	Front        *string `json:"front,omitempty" validate:"omitempty,min=1,max=1000"`
	Back         *string `json:"back,omitempty" validate:"omitempty,min=1,max=1000"`
	PlaylistName *string `json:"playlist_name,omitempty" validate:"omitempty,min=1,max=100"`
	IsPublic     *bool   `json:"is_public,omitempty"`
}

// PlaylistSummary はプレイリストごとの集計
type PlaylistSummary struct {
	CreatorID    uuid.UUID `json:"creator_id"`
	PlaylistName string    `json:"playlist_name"`
	CardCount    int64     `json:"card_count"`
	IsPublic     bool      `json:"is_public"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RenamePlaylistRequest struct {
	NewName string `json:"new_name" validate:"required,max=100"`
}

type SharePlaylistRequest struct {
	RecipientIDs []uuid.UUID `json:"recipient_ids" validate:"required,min=1,max=50,dive,required"`
}

type ShareResult struct {
	PlaylistName string      `json:"playlist_name"`
	Recipients   []uuid.UUID `json:"recipients"`
	CardsShared  int         `json:"cards_shared"`
}

type ImportResult struct {
	PlaylistName string `json:"playlist_name"`
	Created      int    `json:"created"`
	Skipped      int    `json:"skipped"`
}
