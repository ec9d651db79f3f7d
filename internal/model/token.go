package model

import (
	"time"

	"github.com/google/uuid"
)

// メールで送る使い捨てトークンの有効期間
const (
	VerificationTokenTTL  = 24 * time.Hour
	PasswordResetTokenTTL = time.Hour
)

// UserVerificationToken はアカウント有効化リンクに載せるトークンです。
// 有効化に成功するか期限切れで参照された時点で削除します。
type UserVerificationToken struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"` // スケジューラの期限切れ削除で使う
	CreatedAt time.Time
}

func NewUserVerificationToken(userID uuid.UUID, token string, now time.Time) *UserVerificationToken {
	return &UserVerificationToken{Token: token, UserID: userID, ExpiresAt: now.Add(VerificationTokenTTL)}
}

func (t *UserVerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (UserVerificationToken) TableName() string {
	return "user_verification_tokens"
}

// PasswordResetToken はパスワード再設定リンク用。再設定に成功したらユーザーの分を全て消します。
type PasswordResetToken struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func NewPasswordResetToken(userID uuid.UUID, token string, now time.Time) *PasswordResetToken {
	return &PasswordResetToken{Token: token, UserID: userID, ExpiresAt: now.Add(PasswordResetTokenTTL)}
}

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
