package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
)

// FriendConnection は requester -> addressee の有向エッジです。
// accepted になった時点で双方向の友達関係として扱います。
// 2人の間のエッジは向きを問わず1本だけです (uq_friend_pair)。
type FriendConnection struct {
	ConnectionID uuid.UUID    `gorm:"type:uuid;primaryKey" json:"connection_id"`
	RequesterID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"requester_id"`
	AddresseeID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"addressee_id"`
	UserLow      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_friend_pair" json:"-"`
	UserHigh     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_friend_pair" json:"-"`
	Status       FriendStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	RespondedAt  *time.Time   `json:"responded_at,omitempty"`

	Requester *User `gorm:"foreignKey:RequesterID;references:UserID" json:"-"`
	Addressee *User `gorm:"foreignKey:AddresseeID;references:UserID" json:"-"`
}

func (FriendConnection) TableName() string {
	return "friend_connections"
}

// BeforeCreate は UserLow / UserHigh を埋めます
func (c *FriendConnection) BeforeCreate(*gorm.DB) error {
	c.UserLow, c.UserHigh = FriendPair(c.RequesterID, c.AddresseeID)
	return nil
}

// FriendPair は2人のIDを向きによらない順序に並べます
func FriendPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

// OtherSide は userID から見た相手のIDを返します
func (c *FriendConnection) OtherSide(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

type FriendRequestRequest struct {
	AddresseeID uuid.UUID `json:"addressee_id" validate:"required"`
}

// FriendRequestResponse は申請一覧の1件
type FriendRequestResponse struct {
	ConnectionID uuid.UUID    `json:"connection_id"`
	Status       FriendStatus `json:"status"`
	User         UserSummary  `json:"user"`
	CreatedAt    time.Time    `json:"created_at"`
}

type FriendResponse struct {
	User         UserSummary `json:"user"`
	XP           int64       `json:"xp"`
	FriendsSince *time.Time  `json:"friends_since,omitempty"`
}
