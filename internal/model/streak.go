// internal/model/streak.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout は日単位の値 (streak, quest) の保存形式
const DateLayout = "2006-01-02"

// UserStreak は連続学習日数を表します
type UserStreak struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CurrentStreak int       `gorm:"not null;default:0;index" json:"current_streak"`
	LongestStreak int       `gorm:"not null;default:0" json:"longest_streak"`
	LastStudyDate string    `gorm:"type:varchar(10)" json:"last_study_date"` // YYYY-MM-DD, 未学習なら空
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (UserStreak) TableName() string {
	return "user_streaks"
}

type StreakResponse struct {
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	LastStudyDate  string `json:"last_study_date,omitempty"`
	StudiedToday   bool   `json:"studied_today"`
	MilestoneToday int    `json:"milestone_today,omitempty"`
}
