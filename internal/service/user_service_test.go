package service

import (
	"context"
	"testing"
	"time"

	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserService_SearchUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createUser(t, "Alicia", 0)
	env.createUser(t, "bob", 0)
	inactive := env.createUser(t, "alina", 0)
	require.NoError(t, env.db.Model(&model.User{}).Where("user_id = ?", inactive.UserID).Update("is_active", false).Error)

	usernames := func(users []model.UserSummary) []string {
		out := make([]string, 0, len(users))
		for _, u := range users {
			out = append(out, u.Username)
		}
		return out
	}

	t.Run("正常系: 大文字小文字を区別しない前方一致で自分を除く", func(t *testing.T) {
		users, err := env.users.SearchUsers(ctx, alice.UserID, "ALI", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alicia"}, usernames(users))
	})

	t.Run("正常系: 部分一致はしない", func(t *testing.T) {
		users, err := env.users.SearchUsers(ctx, alice.UserID, "ob", 10)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("正常系: 他人からは自分も検索される", func(t *testing.T) {
		users, err := env.users.SearchUsers(ctx, uuid.New(), "a", 0)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Alicia", "alice"}, usernames(users))
	})

	t.Run("異常系: 空のキーワード", func(t *testing.T) {
		_, err := env.users.SearchUsers(ctx, alice.UserID, "  ", 10)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestUserService_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 120)
	bob := env.createUser(t, "bob", 0)
	env.makeFriends(t, alice.UserID, bob.UserID)

	require.NoError(t, env.db.Transaction(func(tx *gorm.DB) error {
		_, err := env.streaks.RecordActivity(ctx, tx, alice.UserID)
		return err
	}))

	profile, err := env.users.GetProfile(ctx, bob.UserID, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(120), profile.XP)
	assert.Equal(t, 1, profile.CurrentStreak)
	assert.True(t, profile.IsFriend)

	// 2日空くと連続記録は 0 と表示される
	env.clock.Advance(48 * time.Hour)
	profile, err = env.users.GetProfile(ctx, bob.UserID, alice.UserID)
	require.NoError(t, err)
	assert.Zero(t, profile.CurrentStreak)

	_, err = env.users.GetProfile(ctx, bob.UserID, uuid.New())
	requireAppCode(t, err, "USER_NOT_FOUND")
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)

	name := " Alice A. "
	resp, err := env.users.UpdateProfile(ctx, alice.UserID, &model.UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", resp.DisplayName)

	blank := "  "
	_, err = env.users.UpdateProfile(ctx, alice.UserID, &model.UpdateProfileRequest{DisplayName: &blank})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
