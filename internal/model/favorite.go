package model

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteFolder はお気に入り登録されたプレイリストの目印です
type FavoriteFolder struct {
	FavoriteID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"favorite_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_favorite_folder" json:"user_id"`
	CreatorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_favorite_folder" json:"creator_id"`
	PlaylistName string    `gorm:"not null;size:100;uniqueIndex:uq_favorite_folder" json:"playlist_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (FavoriteFolder) TableName() string {
	return "favorite_folders"
}

type FavoriteRequest struct {
	CreatorID    uuid.UUID `json:"creator_id" validate:"required"`
	PlaylistName string    `json:"playlist_name" validate:"required,max=100"`
}
