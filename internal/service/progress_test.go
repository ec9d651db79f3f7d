package service

import (
	"context"
	"testing"
	"time"

	"go_flashcard_study/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestQuestService_RecordEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)

	record := func(amount int) []model.QuestCompletion {
		var done []model.QuestCompletion
		err := env.db.Transaction(func(tx *gorm.DB) error {
			var err error
			done, err = env.quests.RecordEvent(ctx, tx, alice.UserID, model.EventCardsStudied, amount)
			return err
		})
		require.NoError(t, err)
		return done
	}

	// 20枚のクエストだけ達成し、進捗は目標で頭打ちになる
	done := record(25)
	require.Len(t, done, 1)
	assert.Equal(t, "daily_study_20", done[0].Code)
	assert.Equal(t, int64(50), env.userXP(t, alice.UserID))

	quests, err := env.quests.GetDailyQuests(ctx, alice.UserID)
	require.NoError(t, err)
	progress := make(map[string]model.DailyQuestResponse)
	for _, q := range quests {
		progress[q.Code] = q
	}
	assert.Len(t, quests, len(DefaultQuests))
	assert.Equal(t, 20, progress["daily_study_20"].Progress)
	assert.True(t, progress["daily_study_20"].Completed)
	assert.Equal(t, 25, progress["daily_study_50"].Progress)
	assert.Equal(t, "2024-04-01", progress["daily_study_50"].QuestDate)

	// 達成済みのクエストは二重に報酬を出さない
	done = record(30)
	require.Len(t, done, 1)
	assert.Equal(t, "daily_study_50", done[0].Code)
	assert.Equal(t, int64(170), env.userXP(t, alice.UserID))
	assert.Empty(t, record(10))
	assert.Equal(t, int64(2), env.countNotifications(t, alice.UserID, model.NotificationQuestCompleted))

	// 翌日は新しい進捗になる
	env.clock.Advance(24 * time.Hour)
	quests, err = env.quests.GetDailyQuests(ctx, alice.UserID)
	require.NoError(t, err)
	for _, q := range quests {
		assert.Zero(t, q.Progress, q.Code)
		assert.False(t, q.Completed, q.Code)
	}
}

func TestQuestService_RecordEventIgnoresNonPositive(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", 0)

	done, err := env.quests.RecordEvent(context.Background(), env.db, alice.UserID, model.EventCardsStudied, 0)
	assert.NoError(t, err)
	assert.Nil(t, done)
}

func TestQuestService_SeedCatalogIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.quests.SeedCatalog(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)

	var n int64
	require.NoError(t, env.db.Model(&model.Quest{}).Count(&n).Error)
	assert.Equal(t, int64(len(DefaultQuests)), n)
}

func TestQuestService_PurgeOldProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)

	_, err := env.quests.GetDailyQuests(ctx, alice.UserID)
	require.NoError(t, err)

	env.clock.Advance(3 * 24 * time.Hour)
	n, err := env.quests.PurgeOldProgress(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.clock.Advance(5 * 24 * time.Hour)
	n, err = env.quests.PurgeOldProgress(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultQuests)), n)
}

func TestStreakService_RecordActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	day := 24 * time.Hour

	recordDay := func() *model.StreakResponse {
		resp, err := env.streaks.RecordActivity(ctx, env.db, alice.UserID)
		require.NoError(t, err)
		return resp
	}

	got, err := env.streaks.GetStreak(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, &model.StreakResponse{}, got)

	assert.Equal(t, 1, recordDay().CurrentStreak)
	// 同じ日に何度学習しても増えない
	same := recordDay()
	assert.Equal(t, 1, same.CurrentStreak)
	assert.True(t, same.StudiedToday)

	env.clock.Advance(day)
	assert.Equal(t, 2, recordDay().CurrentStreak)

	env.clock.Advance(day)
	third := recordDay()
	assert.Equal(t, 3, third.CurrentStreak)
	assert.Equal(t, 3, third.MilestoneToday)
	assert.Equal(t, int64(1), env.countNotifications(t, alice.UserID, model.NotificationStreakMilestone))

	// 1日空くと昨日までの連続は表示上 0、学習すると 1 からやり直し
	env.clock.Advance(2 * day)
	got, err = env.streaks.GetStreak(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)

	restarted := recordDay()
	assert.Equal(t, 1, restarted.CurrentStreak)
	assert.Equal(t, 3, restarted.LongestStreak)
	assert.Zero(t, restarted.MilestoneToday)
}

func TestStreakService_ResetBroken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	bob := env.createUser(t, "bob", 0)

	_, err := env.streaks.RecordActivity(ctx, env.db, alice.UserID)
	require.NoError(t, err)
	env.clock.Advance(24 * time.Hour)
	_, err = env.streaks.RecordActivity(ctx, env.db, bob.UserID)
	require.NoError(t, err)

	// 翌々日の時点で alice だけが途切れている
	env.clock.Advance(24 * time.Hour)
	n, err := env.streaks.ResetBroken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var st model.UserStreak
	require.NoError(t, env.db.Where("user_id = ?", alice.UserID).First(&st).Error)
	assert.Zero(t, st.CurrentStreak)
	assert.Equal(t, 1, st.LongestStreak)
}
