package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/study"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (e *testEnv) createPlaylist(t *testing.T, userID uuid.UUID, name string, n int, public bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := e.flashcards.CreateFlashcard(context.Background(), userID, &model.CreateFlashcardRequest{
			Front: "front-" + string(rune('a'+i)), Back: "back", PlaylistName: name, IsPublic: public,
		})
		require.NoError(t, err)
	}
}

func boolPtr(b bool) *bool { return &b }

func answerCurrent(t *testing.T, env *testEnv, userID uuid.UUID, session *model.StudySessionResponse, correct bool) *model.AnswerResponse {
	t.Helper()
	require.NotNil(t, session.CurrentCard)
	resp, err := env.study.Answer(context.Background(), userID, session.SessionID, &model.SubmitAnswerRequest{
		CardID: session.CurrentCard.CardID, IsCorrect: boolPtr(correct),
	})
	require.NoError(t, err)
	return resp
}

func TestStudyService_PerfectNormalSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 3, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "normal"})
	require.NoError(t, err)
	assert.Equal(t, "active", session.Status)
	assert.Equal(t, 3, session.DeckSize)
	assert.Zero(t, session.MasteryTarget)

	var last *model.AnswerResponse
	for i := 0; i < 3; i++ {
		last = answerCurrent(t, env, alice.UserID, session, true)
		session = last.Session
	}
	assert.True(t, last.SessionCompleted)
	assert.True(t, last.PerfectCycle)
	require.NotNil(t, last.Streak)
	assert.Equal(t, 1, last.Streak.CurrentStreak)

	codes := make([]string, 0, len(last.QuestsCompleted))
	for _, q := range last.QuestsCompleted {
		codes = append(codes, q.Code)
	}
	assert.ElementsMatch(t, []string{"daily_perfect_1", "daily_session_1"}, codes)

	// 完了済みのセッションを閉じても二重には数えない
	finished, err := env.study.Finish(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, finished.QuestsCompleted)
	assert.Nil(t, finished.Streak)
	assert.Equal(t, 3, finished.Session.Answered)

	quests, err := env.quests.GetDailyQuests(ctx, alice.UserID)
	require.NoError(t, err)
	for _, q := range quests {
		if q.Code == "daily_study_20" {
			assert.Equal(t, 3, q.Progress)
		}
	}
}

func TestStudyService_ReviewMistakes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 3, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "normal"})
	require.NoError(t, err)

	_, err = env.study.ReviewMistakes(ctx, alice.UserID, session.SessionID)
	requireAppCode(t, err, "REVIEW_NOT_READY")

	missed := session.CurrentCard.CardID
	session = answerCurrent(t, env, alice.UserID, session, false).Session
	session = answerCurrent(t, env, alice.UserID, session, true).Session
	last := answerCurrent(t, env, alice.UserID, session, true)
	assert.True(t, last.CycleCompleted)
	assert.False(t, last.PerfectCycle)
	// 通常モードはミスがあっても1周で完了し、ミスだけを復習できる
	assert.True(t, last.SessionCompleted)
	require.Len(t, last.Session.MissedCards, 1)
	assert.Equal(t, missed, last.Session.MissedCards[0].CardID)

	review, err := env.study.ReviewMistakes(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, review.RoundSize)
	assert.Equal(t, missed, review.CurrentCard.CardID)

	assert.Equal(t, "active", review.Status)

	done := answerCurrent(t, env, alice.UserID, review, true)
	assert.True(t, done.SessionCompleted)
	assert.Equal(t, "completed", done.Session.Status)
	// 完了の報酬は最初の1回だけ
	for _, q := range done.QuestsCompleted {
		assert.NotEqual(t, "daily_session_1", q.Code)
	}

	_, err = env.study.Answer(ctx, alice.UserID, session.SessionID, &model.SubmitAnswerRequest{CardID: missed, IsCorrect: boolPtr(true)})
	requireAppCode(t, err, "STUDY_SESSION_CLOSED")
}

func TestStudyService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	bob := env.createUser(t, "bob", 0)
	env.createPlaylist(t, alice.UserID, "private", 2, false)
	env.createPlaylist(t, alice.UserID, "public", 2, true)

	t.Run("異常系: 他人の非公開プレイリスト", func(t *testing.T) {
		_, err := env.study.Start(ctx, bob.UserID, &model.StartStudyRequest{PlaylistName: "private", CreatorID: &alice.UserID, Mode: "normal"})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: 不正なモード", func(t *testing.T) {
		_, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "public", Mode: "speedrun"})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 出題中でないカード", func(t *testing.T) {
		session, err := env.study.Start(ctx, bob.UserID, &model.StartStudyRequest{PlaylistName: "public", CreatorID: &alice.UserID, Mode: "infinite"})
		require.NoError(t, err)
		_, err = env.study.Answer(ctx, bob.UserID, session.SessionID, &model.SubmitAnswerRequest{CardID: uuid.New(), IsCorrect: boolPtr(true)})
		requireAppCode(t, err, "CARD_MISMATCH")
	})

	t.Run("異常系: 他人のセッションは見えない", func(t *testing.T) {
		session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "public", Mode: "normal"})
		require.NoError(t, err)
		_, err = env.study.Get(ctx, bob.UserID, session.SessionID)
		requireAppCode(t, err, "STUDY_SESSION_NOT_FOUND")
	})

	t.Run("異常系: 同時に進行できるセッション数の上限", func(t *testing.T) {
		for env.study.store.CountActiveForUser(alice.UserID) < maxActiveSessions {
			_, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "public", Mode: "normal"})
			require.NoError(t, err)
		}
		_, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "public", Mode: "normal"})
		requireAppCode(t, err, "TOO_MANY_SESSIONS")
	})
}

func TestStudyService_InfiniteFinishCountsCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 2, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "infinite"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		session = answerCurrent(t, env, alice.UserID, session, i != 0).Session
	}
	assert.Equal(t, 2, session.Cycle)
	assert.Equal(t, "active", session.Status)

	finished, err := env.study.Finish(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "finished", finished.Session.Status)
	codes := make([]string, 0)
	for _, q := range finished.QuestsCompleted {
		codes = append(codes, q.Code)
	}
	assert.Contains(t, codes, "daily_session_1")
}

func TestStudyService_SweepExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 1, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "mastery"})
	require.NoError(t, err)
	assert.Equal(t, 2, session.MasteryTarget)

	assert.Zero(t, env.study.SweepExpired(ctx))
	env.clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, env.study.SweepExpired(ctx))

	_, err = env.study.Get(ctx, alice.UserID, session.SessionID)
	requireAppCode(t, err, "STUDY_SESSION_NOT_FOUND")
}

// failingQuestService は指定回数だけ RecordEvent を失敗させます。
// onFailure は失敗を返す直前に呼ばれます。
type failingQuestService struct {
	QuestService
	failures  int
	onFailure func()
}

func (f *failingQuestService) RecordEvent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType model.QuestEventType, amount int) ([]model.QuestCompletion, error) {
	if f.failures > 0 {
		f.failures--
		if f.onFailure != nil {
			f.onFailure()
		}
		return nil, errors.New("quest progress unavailable")
	}
	return f.QuestService.RecordEvent(ctx, tx, userID, eventType, amount)
}

func (e *testEnv) questProgress(t *testing.T, userID uuid.UUID, code string) int {
	t.Helper()
	quests, err := e.quests.GetDailyQuests(context.Background(), userID)
	require.NoError(t, err)
	for _, q := range quests {
		if q.Code == code {
			return q.Progress
		}
	}
	t.Fatalf("quest %s not found", code)
	return 0
}

func TestStudyService_AnswerRollsBackWhenRecordFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 3, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "normal"})
	require.NoError(t, err)
	env.study.quests = &failingQuestService{QuestService: env.quests, failures: 1}

	first := session.CurrentCard
	_, err = env.study.Answer(ctx, alice.UserID, session.SessionID, &model.SubmitAnswerRequest{CardID: first.CardID, IsCorrect: boolPtr(true)})
	requireAppCode(t, err, "INTERNAL_SERVER_ERROR")

	got, err := env.study.Get(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Zero(t, got.Answered)
	require.NotNil(t, got.CurrentCard)
	assert.Equal(t, first.CardID, got.CurrentCard.CardID)

	// 同じカードに回答し直せる
	for i := 0; i < 3; i++ {
		got = answerCurrent(t, env, alice.UserID, got, true).Session
	}
	assert.Equal(t, 3, got.Answered)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 3, env.questProgress(t, alice.UserID, "daily_study_20"))
	assert.Equal(t, 1, env.questProgress(t, alice.UserID, "daily_session_1"))
}

func TestStudyService_RecordFailureKeepsInterleavedAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 3, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "normal"})
	require.NoError(t, err)

	// 失敗の反映前に別の回答が割り込んだ場合、セッションは戻さず進捗だけを持ち越す
	env.study.quests = &failingQuestService{QuestService: env.quests, failures: 1, onFailure: func() {
		err := env.study.store.Do(session.SessionID, alice.UserID, func(s *study.Session) error {
			card, ok := s.Current()
			require.True(t, ok)
			_, err := s.Answer(card.ID, true, env.clock.Now())
			return err
		})
		require.NoError(t, err)
	}}

	_, err = env.study.Answer(ctx, alice.UserID, session.SessionID, &model.SubmitAnswerRequest{CardID: session.CurrentCard.CardID, IsCorrect: boolPtr(true)})
	requireAppCode(t, err, "INTERNAL_SERVER_ERROR")

	got, err := env.study.Get(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Answered)

	last := answerCurrent(t, env, alice.UserID, got, true)
	assert.True(t, last.SessionCompleted)
	assert.Equal(t, 3, env.questProgress(t, alice.UserID, "daily_study_20"))
}

func TestStudyService_FinishRollsBackWhenRecordFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 2, false)

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "infinite"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		session = answerCurrent(t, env, alice.UserID, session, true).Session
	}
	require.Equal(t, 2, session.Cycle)

	env.study.quests = &failingQuestService{QuestService: env.quests, failures: 1}
	_, err = env.study.Finish(ctx, alice.UserID, session.SessionID)
	requireAppCode(t, err, "INTERNAL_SERVER_ERROR")

	got, err := env.study.Get(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)

	finished, err := env.study.Finish(ctx, alice.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "finished", finished.Session.Status)
	codes := make([]string, 0, len(finished.QuestsCompleted))
	for _, q := range finished.QuestsCompleted {
		codes = append(codes, q.Code)
	}
	assert.Contains(t, codes, "daily_session_1")
}

func TestStudyService_MaxDeckSizeKeepsOldestCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	env.createPlaylist(t, alice.UserID, "words", 3, false)
	for i, front := range []string{"front-a", "front-b", "front-c"} {
		require.NoError(t, env.db.Model(&model.Flashcard{}).
			Where("front = ?", front).
			Update("created_at", testNow.Add(time.Duration(i)*time.Minute)).Error)
	}
	env.study.cfg.MaxDeckSize = 2

	session, err := env.study.Start(ctx, alice.UserID, &model.StartStudyRequest{PlaylistName: "words", Mode: "normal"})
	require.NoError(t, err)
	assert.Equal(t, 2, session.DeckSize)

	for i := 0; i < 2; i++ {
		session = answerCurrent(t, env, alice.UserID, session, false).Session
	}
	fronts := make([]string, 0, len(session.MissedCards))
	for _, c := range session.MissedCards {
		fronts = append(fronts, c.Front)
	}
	assert.ElementsMatch(t, []string{"front-a", "front-b"}, fronts)
}
