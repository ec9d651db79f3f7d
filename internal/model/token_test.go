package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	verification := NewUserVerificationToken(userID, "verify-token", now)
	assert.Equal(t, userID, verification.UserID)
	assert.Equal(t, now.Add(VerificationTokenTTL), verification.ExpiresAt)
	assert.False(t, verification.Expired(now.Add(VerificationTokenTTL)), "期限ちょうどはまだ有効")
	assert.True(t, verification.Expired(now.Add(VerificationTokenTTL+time.Second)))

	reset := NewPasswordResetToken(userID, "reset-token", now)
	assert.Equal(t, "reset-token", reset.Token)
	assert.False(t, reset.Expired(now.Add(30*time.Minute)))
	assert.True(t, reset.Expired(now.Add(PasswordResetTokenTTL+time.Second)))
}
