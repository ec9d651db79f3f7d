package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFriendRequest   NotificationType = "friend_request"
	NotificationFriendAccepted  NotificationType = "friend_accepted"
	NotificationFlashcardShared NotificationType = "flashcard_shared"
	NotificationQuestCompleted  NotificationType = "quest_completed"
	NotificationStreakMilestone NotificationType = "streak_milestone"
)

// Notification は受信者宛ての型付き通知です
type Notification struct {
	NotificationID uuid.UUID        `gorm:"type:uuid;primaryKey" json:"notification_id"`
	RecipientID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_recipient" json:"recipient_id"`
	ActorID        *uuid.UUID       `gorm:"type:uuid" json:"actor_id,omitempty"`
	Type           NotificationType `gorm:"type:varchar(30);not null;index" json:"type"`
	Payload        map[string]any   `gorm:"type:text;serializer:json" json:"payload"`
	IsRead         bool             `gorm:"not null;default:false;index:idx_notification_recipient" json:"is_read"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type NotificationListQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
