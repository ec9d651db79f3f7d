//go:build integration

// api_integration_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/handlers"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/study"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	integDB     *gorm.DB
	integLogger *slog.Logger
)

const integContainerName = "test_postgres_flashcard_api"

// TestMain は PostgreSQL コンテナを起動し、マイグレーション後にテストを実行します
func TestMain(m *testing.M) {
	integLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(integLogger)

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       integContainerName,
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=flashcard_study",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL resource: %s", err)
	}

	// devcontainer から実行する場合は TEST_DB_HOST=host.docker.internal を指定する
	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	databaseURL := fmt.Sprintf("postgres://user:secret@%s:%s/flashcard_study?sslmode=disable&TimeZone=Asia/Tokyo",
		dbHost, resource.GetPort("5432/tcp"))
	integLogger.Info("PostgreSQL container started", slog.String("container_id_short", resource.Container.ID[:12]))

	if err = pool.Retry(func() error {
		var errRetry error
		integDB, errRetry = repository.NewDB(databaseURL, integLogger)
		if errRetry != nil {
			integLogger.Warn("Retry: DB connection attempt failed.", slog.Any("error", errRetry))
		}
		return errRetry
	}); err != nil {
		if pErr := pool.Purge(resource); pErr != nil {
			log.Printf("Warning: Could not purge resource after connection retry failed: %s", pErr)
		}
		log.Fatalf("Could not connect to PostgreSQL container after retries: %s", err)
	}

	if err := repository.Migrate(integDB); err != nil {
		log.Fatalf("Could not migrate database: %s", err)
	}
	integLogger.Info("Database migration completed.")

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge PostgreSQL resource: %s", err)
	}
	os.Exit(code)
}

// capturingMailer は送信したメール本文を保持します
type capturingMailer struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (m *capturingMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[to] = body
	return nil
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

func (m *capturingMailer) tokenFor(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	match := tokenPattern.FindStringSubmatch(m.bodies[to])
	require.Len(t, match, 2, "no token in mail to %s", to)
	return match[1]
}

type integApp struct {
	server *httptest.Server
	mailer *capturingMailer
}

func setupIntegApp(t *testing.T) *integApp {
	t.Helper()
	require.NotNil(t, integDB, "integDB should have been initialized in TestMain")

	cfg := &config.Config{
		App:   config.AppConfig{Name: "FlashStudy", FrontendURL: "http://localhost:3000", LeaderboardLimit: 50},
		Auth:  config.AuthConfig{Enabled: true},
		JWT:   config.JWTConfig{SecretKey: "integration-secret", AccessTokenTTL: time.Hour},
		Study: config.StudyConfig{MasteryTarget: 2, SessionTTL: time.Hour, MaxDeckSize: 100},
	}
	mailer := &capturingMailer{bodies: make(map[string]string)}
	loc := time.UTC

	userRepo := repository.NewGormUserRepository()
	cardRepo := repository.NewGormFlashcardRepository()
	friendRepo := repository.NewGormFriendRepository()
	favoriteRepo := repository.NewGormFavoriteRepository()
	streakRepo := repository.NewGormStreakRepository()

	notifications := service.NewNotificationService(integDB, repository.NewGormNotificationRepository())
	quests := service.NewQuestService(integDB, repository.NewGormQuestRepository(), userRepo, notifications, loc)
	_, err := quests.SeedCatalog(context.Background())
	require.NoError(t, err)
	streaks := service.NewStreakService(integDB, streakRepo, notifications, loc)
	flashcards := service.NewFlashcardService(integDB, cardRepo, friendRepo, favoriteRepo, quests, notifications, cfg.Study.MaxDeckSize)

	router := handlers.NewRouter(cfg, integLogger, &handlers.Handlers{
		Auth:         handlers.NewAuthHandler(service.NewAuthService(integDB, userRepo, repository.NewGormTokenRepository(), mailer, cfg)),
		User:         handlers.NewUserHandler(service.NewUserService(integDB, userRepo, streakRepo, friendRepo, loc), flashcards),
		Flashcard:    handlers.NewFlashcardHandler(flashcards),
		Playlist:     handlers.NewPlaylistHandler(flashcards),
		Favorite:     handlers.NewFavoriteHandler(service.NewFavoriteService(integDB, favoriteRepo, cardRepo)),
		Friend:       handlers.NewFriendHandler(service.NewFriendService(integDB, friendRepo, userRepo, notifications)),
		Notification: handlers.NewNotificationHandler(notifications),
		Progress:     handlers.NewProgressHandler(quests, streaks),
		Leaderboard:  handlers.NewLeaderboardHandler(service.NewLeaderboardService(integDB, userRepo, friendRepo, streakRepo, 50, loc), 50),
		Study:        handlers.NewStudyHandler(service.NewStudyService(integDB, study.NewStore(), flashcards, quests, streaks, cfg.Study)),
		Feedback:     handlers.NewFeedbackHandler(service.NewFeedbackService(integDB, userRepo, "", http.DefaultClient)),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &integApp{server: server, mailer: mailer}
}

// do は JSON リクエストを送り、ステータスを検証してレスポンスを out にデコードします
func (a *integApp) do(t *testing.T, method, path, token string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	req := createRequest(t, method, a.server.URL+path, body, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s", method, path)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

// signUp は登録・有効化・ログインを行い、ユーザーIDとトークンを返します
func (a *integApp) signUp(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()
	email := username + "@example.com"
	a.do(t, http.MethodPost, "/api/v1/auth/register", "", model.RegisterRequest{
		Username: username, DisplayName: username, Email: email, Password: "password123",
	}, http.StatusCreated, nil)

	// 有効化前はログインできない
	a.do(t, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Email: email, Password: "password123"}, http.StatusForbidden, nil)

	a.do(t, http.MethodGet, "/api/v1/auth/verify?token="+url.QueryEscape(a.mailer.tokenFor(t, email)), "", nil, http.StatusOK, nil)

	var login model.LoginResponse
	a.do(t, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Email: email, Password: "password123"}, http.StatusOK, &login)

	var me model.UserResponse
	a.do(t, http.MethodGet, "/api/v1/me", login.AccessToken, nil, http.StatusOK, &me)
	return me.UserID, login.AccessToken
}

func TestAPI_StudyFlow(t *testing.T) {
	app := setupIntegApp(t)
	suffix := uuid.NewString()[:8]

	aliceID, aliceToken := app.signUp(t, "alice"+suffix)
	bobID, bobToken := app.signUp(t, "bob"+suffix)

	// 認証なしは 401
	app.do(t, http.MethodGet, "/api/v1/me", "", nil, http.StatusUnauthorized, nil)

	for _, front := range []string{"one", "two", "three"} {
		app.do(t, http.MethodPost, "/api/v1/flashcards", aliceToken, model.CreateFlashcardRequest{
			Front: front, Back: front + "-back", PlaylistName: "数字",
		}, http.StatusCreated, nil)
	}

	// 友達になって共有する
	var sent model.FriendRequestResponse
	app.do(t, http.MethodPost, "/api/v1/friends/requests", aliceToken, model.FriendRequestRequest{AddresseeID: bobID}, http.StatusCreated, &sent)
	app.do(t, http.MethodPost, "/api/v1/friends/requests/"+sent.ConnectionID.String()+"/accept", bobToken, nil, http.StatusOK, nil)

	var shared model.ShareResult
	app.do(t, http.MethodPost, "/api/v1/playlists/"+url.PathEscape("数字")+"/share", aliceToken,
		model.SharePlaylistRequest{RecipientIDs: []uuid.UUID{bobID}}, http.StatusOK, &shared)
	assert.Equal(t, 3, shared.CardsShared)

	var unread model.UnreadCountResponse
	app.do(t, http.MethodGet, "/api/v1/notifications/unread-count", bobToken, nil, http.StatusOK, &unread)
	assert.Equal(t, int64(2), unread.Count) // friend_request と flashcard_shared

	// bob が共有されたカードを学習する
	var session model.StudySessionResponse
	app.do(t, http.MethodPost, "/api/v1/study/sessions", bobToken, model.StartStudyRequest{
		PlaylistName: "数字", CreatorID: &aliceID, Mode: "normal", Received: true,
	}, http.StatusCreated, &session)
	require.Equal(t, 3, session.DeckSize)

	var answer model.AnswerResponse
	for session.CurrentCard != nil {
		correct := true
		app.do(t, http.MethodPost, "/api/v1/study/sessions/"+session.SessionID.String()+"/answers", bobToken,
			model.SubmitAnswerRequest{CardID: session.CurrentCard.CardID, IsCorrect: &correct}, http.StatusOK, &answer)
		session = *answer.Session
	}
	assert.True(t, answer.SessionCompleted)
	assert.True(t, answer.PerfectCycle)

	var streak model.StreakResponse
	app.do(t, http.MethodGet, "/api/v1/streak", bobToken, nil, http.StatusOK, &streak)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.True(t, streak.StudiedToday)

	var board []model.LeaderboardEntry
	app.do(t, http.MethodGet, "/api/v1/leaderboard/friends", bobToken, nil, http.StatusOK, &board)
	require.Len(t, board, 2)
	assert.Equal(t, bobID, board[0].User.UserID) // パーフェクトと完走の報酬で alice を上回る
	assert.True(t, board[0].IsMe)
}
