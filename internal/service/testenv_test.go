package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"
	"go_flashcard_study/internal/study"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testNow はテストで使う固定の現在時刻 (UTC)
var testNow = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

// testEnv は sqlite 上に組み立てたサービス一式
type testEnv struct {
	db            *gorm.DB
	clock         *testClock
	notifications NotificationService
	quests        *questService
	streaks       *streakService
	friends       *friendService
	flashcards    *flashcardService
	favorites     *favoriteService
	users         *userService
	leaderboard   *leaderboardService
	study         *studyService
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clock := &testClock{t: testNow}

	userRepo := repository.NewGormUserRepository()
	friendRepo := repository.NewGormFriendRepository()
	streakRepo := repository.NewGormStreakRepository()
	cardRepo := repository.NewGormFlashcardRepository()

	notifications := NewNotificationService(db, repository.NewGormNotificationRepository())

	quests := NewQuestService(db, repository.NewGormQuestRepository(), userRepo, notifications, time.UTC).(*questService)
	quests.now = clock.Now
	_, err := quests.SeedCatalog(context.Background())
	require.NoError(t, err)

	streaks := NewStreakService(db, streakRepo, notifications, time.UTC).(*streakService)
	streaks.now = clock.Now

	friends := NewFriendService(db, friendRepo, userRepo, notifications).(*friendService)
	friends.now = clock.Now

	favoriteRepo := repository.NewGormFavoriteRepository()
	flashcards := NewFlashcardService(db, cardRepo, friendRepo, favoriteRepo, quests, notifications, 100).(*flashcardService)
	favorites := NewFavoriteService(db, favoriteRepo, cardRepo).(*favoriteService)

	users := NewUserService(db, userRepo, streakRepo, friendRepo, time.UTC).(*userService)
	users.now = clock.Now

	leaderboard := NewLeaderboardService(db, userRepo, friendRepo, streakRepo, 50, time.UTC).(*leaderboardService)
	leaderboard.now = clock.Now

	studySvc := NewStudyService(db, study.NewStore(), flashcards, quests, streaks, config.StudyConfig{
		MasteryTarget: 2,
		SessionTTL:    time.Hour,
		MaxDeckSize:   100,
	}).(*studyService)
	studySvc.now = clock.Now

	return &testEnv{
		db:            db,
		clock:         clock,
		notifications: notifications,
		quests:        quests,
		streaks:       streaks,
		friends:       friends,
		flashcards:    flashcards,
		favorites:     favorites,
		users:         users,
		leaderboard:   leaderboard,
		study:         studySvc,
	}
}

// createUser は有効化済みのユーザーを直接作成します
func (e *testEnv) createUser(t *testing.T, username string, xp int64) *model.User {
	t.Helper()
	u := &model.User{
		UserID:       uuid.New(),
		Username:     username,
		DisplayName:  username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		XP:           xp,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) makeFriends(t *testing.T, a, b uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := e.friends.SendRequest(ctx, a, b)
	require.NoError(t, err)
	resp, err := e.friends.SendRequest(ctx, b, a)
	require.NoError(t, err)
	require.Equal(t, model.FriendStatusAccepted, resp.Status)
}

func (e *testEnv) userXP(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var u model.User
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&u).Error)
	return u.XP
}

func (e *testEnv) countNotifications(t *testing.T, userID uuid.UUID, typ model.NotificationType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND type = ?", userID, typ).
		Count(&n).Error)
	return n
}

func requireAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Detail.Code)
}
