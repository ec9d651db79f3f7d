package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestEventType string

const (
	EventCardsStudied      QuestEventType = "cards_studied"
	EventSessionCompleted  QuestEventType = "session_completed"
	EventPerfectCycle      QuestEventType = "perfect_cycle"
	EventFlashcardsCreated QuestEventType = "flashcards_created"
)

// Quest はデイリークエストの定義 (カタログ) です
type Quest struct {
	QuestID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"quest_id"`
	Code        string         `gorm:"unique;not null;size:50" json:"code"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	EventType   QuestEventType `gorm:"type:varchar(30);not null;index" json:"event_type"`
	Target      int            `gorm:"not null" json:"target"`
	XPReward    int64          `gorm:"not null" json:"xp_reward"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (Quest) TableName() string {
	return "quests"
}

// UserQuest はユーザーごと・日ごとのクエスト進捗です
type UserQuest struct {
	UserQuestID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_user_quest_day"`
	QuestID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_user_quest_day"`
	QuestDate   string     `gorm:"type:varchar(10);not null;uniqueIndex:uq_user_quest_day;index"` // YYYY-MM-DD
	Progress    int        `gorm:"not null;default:0"`
	CompletedAt *time.Time `gorm:"default:null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Quest *Quest `gorm:"foreignKey:QuestID;references:QuestID"`
}

func (UserQuest) TableName() string {
	return "user_quests"
}

// DailyQuestResponse はクエストと本日の進捗をまとめたDTO
type DailyQuestResponse struct {
	QuestID     uuid.UUID      `json:"quest_id"`
	Code        string         `json:"code"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	EventType   QuestEventType `json:"event_type"`
	Target      int            `json:"target"`
	Progress    int            `json:"progress"`
	XPReward    int64          `json:"xp_reward"`
	Completed   bool           `json:"completed"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	QuestDate   string         `json:"quest_date"`
}

// QuestCompletion は RecordEvent で新たに達成されたクエスト
type QuestCompletion struct {
	QuestID  uuid.UUID `json:"quest_id"`
	Code     string    `json:"code"`
	Title    string    `json:"title"`
	XPReward int64     `json:"xp_reward"`
}
