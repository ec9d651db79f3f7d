//go:generate mockery --name StudyService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/study"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 1ユーザーが同時に持てる進行中セッション数
const maxActiveSessions = 5

type StudyService interface {
	Start(ctx context.Context, userID uuid.UUID, req *model.StartStudyRequest) (*model.StudySessionResponse, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*model.StudySessionResponse, error)
	Answer(ctx context.Context, userID, sessionID uuid.UUID, req *model.SubmitAnswerRequest) (*model.AnswerResponse, error)
	ReviewMistakes(ctx context.Context, userID, sessionID uuid.UUID) (*model.StudySessionResponse, error)
	Finish(ctx context.Context, userID, sessionID uuid.UUID) (*model.FinishResponse, error)
	// SweepExpired は TTL を過ぎたセッションを破棄します (スケジューラ用)
	SweepExpired(ctx context.Context) int
}

type studyService struct {
	db         *gorm.DB
	store      *study.Store
	flashcards FlashcardService
	quests     QuestService
	streaks    StreakService
	cfg        config.StudyConfig
	now        func() time.Time
	newRand    func() *rand.Rand
}

func NewStudyService(db *gorm.DB, store *study.Store, flashcards FlashcardService, quests QuestService, streaks StreakService, cfg config.StudyConfig) StudyService {
	return &studyService{
		db:         db,
		store:      store,
		flashcards: flashcards,
		quests:     quests,
		streaks:    streaks,
		cfg:        cfg,
		now:        time.Now,
		newRand:    study.NewRand,
	}
}

var errSessionNotFound = notFoundError("STUDY_SESSION_NOT_FOUND", "学習セッションが見つかりません。")

// studyError は study パッケージのエラーを AppError に変換します
func studyError(err error) error {
	switch {
	case errors.Is(err, study.ErrSessionNotFound):
		return errSessionNotFound
	case errors.Is(err, study.ErrSessionClosed):
		return model.NewAppError("STUDY_SESSION_CLOSED", "この学習セッションは終了しています。", "", model.ErrConflict)
	case errors.Is(err, study.ErrCardMismatch):
		return model.NewAppError("CARD_MISMATCH", "回答したカードは現在出題中のカードではありません。", "card_id", model.ErrInvalidInput)
	case errors.Is(err, study.ErrNoMistakes):
		return model.NewAppError("NO_MISTAKES", "復習するミスがありません。", "", model.ErrConflict)
	case errors.Is(err, study.ErrReviewNotReady):
		return model.NewAppError("REVIEW_NOT_READY", "ミスの復習は通常モードの周回完了後にのみ行えます。", "", model.ErrConflict)
	case errors.Is(err, study.ErrInvalidMode):
		return model.NewAppError("VALIDATION_ERROR", "学習モードが不正です。", "mode", model.ErrInvalidInput)
	case errors.Is(err, study.ErrEmptyDeck):
		return model.NewAppError("EMPTY_PLAYLIST", "プレイリストにカードがありません。", "playlist_name", model.ErrInvalidInput)
	}
	return internalError(err)
}

type questEvent struct {
	typ    model.QuestEventType
	amount int
}

// pendingReport はロック外で DB に反映する進捗と、失敗時に戻すための状態
type pendingReport struct {
	report   study.Report
	snapshot study.Session
	revision uint64
}

func (s *studyService) Start(ctx context.Context, userID uuid.UUID, req *model.StartStudyRequest) (*model.StudySessionResponse, error) {
	logger := middleware.GetLogger(ctx)

	mode := study.Mode(req.Mode)
	if !mode.Valid() {
		return nil, studyError(study.ErrInvalidMode)
	}
	creatorID := userID
	if req.CreatorID != nil {
		creatorID = *req.CreatorID
	}
	if s.store.CountActiveForUser(userID) >= maxActiveSessions {
		return nil, model.NewAppError("TOO_MANY_SESSIONS", "進行中の学習セッションが多すぎます。既存のセッションを終了してください。", "", model.ErrConflict)
	}

	flashcards, err := s.flashcards.LoadDeck(ctx, userID, creatorID, req.PlaylistName, req.Received)
	if err != nil {
		return nil, err
	}
	// LoadDeck は作成順なので、上限を超えた分は新しいカードから外れる
	if s.cfg.MaxDeckSize > 0 && len(flashcards) > s.cfg.MaxDeckSize {
		flashcards = flashcards[:s.cfg.MaxDeckSize]
	}
	cards := make([]study.Card, 0, len(flashcards))
	for _, f := range flashcards {
		cards = append(cards, study.Card{ID: f.FlashcardID, Front: f.Front, Back: f.Back})
	}

	session, err := study.NewSession(uuid.New(), userID, creatorID, req.PlaylistName, mode, cards, study.Options{
		MasteryTarget: s.cfg.MasteryTarget,
		Rand:          s.newRand(),
		Now:           s.now(),
	})
	if err != nil {
		return nil, studyError(err)
	}
	s.store.Put(session)

	logger.Info("Study session started", "session_id", session.ID, "mode", mode, "cards", len(cards))
	return toStudySessionResponse(session), nil
}

func (s *studyService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*model.StudySessionResponse, error) {
	var resp *model.StudySessionResponse
	err := s.store.Do(sessionID, userID, func(session *study.Session) error {
		resp = toStudySessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, studyError(err)
	}
	return resp, nil
}

func (s *studyService) Answer(ctx context.Context, userID, sessionID uuid.UUID, req *model.SubmitAnswerRequest) (*model.AnswerResponse, error) {
	var (
		result  study.AnswerResult
		resp    *model.StudySessionResponse
		pending pendingReport
	)
	err := s.store.Do(sessionID, userID, func(session *study.Session) error {
		snapshot := session.Snapshot()
		var err error
		result, err = session.Answer(req.CardID, *req.IsCorrect, s.now())
		if err != nil {
			return err
		}
		pending = pendingReport{
			report:   session.TakeReport(result.SessionCompleted),
			snapshot: snapshot,
			revision: session.Revision(),
		}
		resp = toStudySessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, studyError(err)
	}

	completions, streak, err := s.record(ctx, userID, pending.report)
	if err != nil {
		s.rollback(ctx, userID, sessionID, pending)
		return nil, err
	}

	return &model.AnswerResponse{
		Correct:          result.Correct,
		CycleCompleted:   result.CycleCompleted,
		PerfectCycle:     result.PerfectCycle,
		SessionCompleted: result.SessionCompleted,
		Session:          resp,
		QuestsCompleted:  completions,
		Streak:           streak,
	}, nil
}

func (s *studyService) ReviewMistakes(ctx context.Context, userID, sessionID uuid.UUID) (*model.StudySessionResponse, error) {
	var resp *model.StudySessionResponse
	err := s.store.Do(sessionID, userID, func(session *study.Session) error {
		if err := session.ReviewMistakes(s.now()); err != nil {
			return err
		}
		resp = toStudySessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, studyError(err)
	}
	return resp, nil
}

// Finish はセッションを終了します。1周以上回った無限モードのセッションも完了として数えます。
func (s *studyService) Finish(ctx context.Context, userID, sessionID uuid.UUID) (*model.FinishResponse, error) {
	var (
		resp    *model.StudySessionResponse
		pending pendingReport
	)
	err := s.store.Do(sessionID, userID, func(session *study.Session) error {
		snapshot := session.Snapshot()
		countsAsCompleted := session.Status == study.StatusCompleted ||
			(session.Mode == study.ModeInfinite && session.Cycle > 1)
		session.Finish(s.now())
		pending = pendingReport{
			report:   session.TakeReport(countsAsCompleted),
			snapshot: snapshot,
			revision: session.Revision(),
		}
		resp = toStudySessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, studyError(err)
	}

	completions, streak, err := s.record(ctx, userID, pending.report)
	if err != nil {
		s.rollback(ctx, userID, sessionID, pending)
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Study session finished", "session_id", sessionID, "answered", resp.Answered)
	return &model.FinishResponse{Session: resp, QuestsCompleted: completions, Streak: streak}, nil
}

// rollback は DB への反映に失敗した操作を取り消します。
// 間に別の操作が入っていればセッションはそのままにし、進捗だけを未反映に戻します。
func (s *studyService) rollback(ctx context.Context, userID, sessionID uuid.UUID, pending pendingReport) {
	err := s.store.Do(sessionID, userID, func(session *study.Session) error {
		if session.Revision() == pending.revision {
			session.Restore(pending.snapshot)
			return nil
		}
		session.ReturnReport(pending.report)
		return nil
	})
	if err != nil {
		middleware.GetLogger(ctx).Warn("Study session vanished before rollback", "session_id", sessionID, "error", err)
	}
}

// record は進捗をクエストと連続学習日数に反映します
func (s *studyService) record(ctx context.Context, userID uuid.UUID, report study.Report) ([]model.QuestCompletion, *model.StreakResponse, error) {
	if report.Empty() {
		return nil, nil, nil
	}

	var (
		completions []model.QuestCompletion
		streak      *model.StreakResponse
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := []questEvent{
			{model.EventCardsStudied, report.Answers},
			{model.EventPerfectCycle, report.PerfectCycles},
		}
		if report.Completed {
			events = append(events, questEvent{model.EventSessionCompleted, 1})
		}
		for _, ev := range events {
			if ev.amount <= 0 {
				continue
			}
			done, err := s.quests.RecordEvent(ctx, tx, userID, ev.typ, ev.amount)
			if err != nil {
				return err
			}
			completions = append(completions, done...)
		}

		if report.Answers > 0 {
			var err error
			streak, err = s.streaks.RecordActivity(ctx, tx, userID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, internalError(err)
	}
	return completions, streak, nil
}

func (s *studyService) SweepExpired(ctx context.Context) int {
	ttl := s.cfg.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	removed := s.store.Sweep(s.now().Add(-ttl))
	if removed > 0 {
		middleware.GetLogger(ctx).Info("Expired study sessions removed", "count", removed, "remaining", s.store.Len())
	}
	return removed
}

func toStudyCard(c study.Card) model.StudyCard {
	return model.StudyCard{CardID: c.ID, Front: c.Front, Back: c.Back}
}

func toStudySessionResponse(session *study.Session) *model.StudySessionResponse {
	resp := &model.StudySessionResponse{
		SessionID:          session.ID,
		PlaylistName:       session.PlaylistName,
		CreatorID:          session.CreatorID,
		Mode:               string(session.Mode),
		Status:             string(session.Status),
		Position:           session.Position(),
		RoundSize:          session.RoundSize(),
		DeckSize:           session.DeckSize(),
		Cycle:              session.Cycle,
		Answered:           session.Answered,
		Correct:            session.Correct,
		Incorrect:          session.Incorrect,
		CurrentStreak:      session.CurrentStreak,
		BestStreak:         session.BestStreak,
		PerfectCycles:      session.PerfectCycles,
		ConsecutivePerfect: session.ConsecutivePerfect,
		MissedCards:        []model.MissedCard{},
		LastRoundMissed:    session.LastRoundMissed(),
		StartedAt:          session.StartedAt,
		CompletedAt:        session.CompletedAt,
	}
	if session.Mode == study.ModeMastery {
		resp.MasteryTarget = session.MasteryTarget
	}
	if card, ok := session.Current(); ok {
		c := toStudyCard(card)
		resp.CurrentCard = &c
	}
	for _, c := range session.MissedCards() {
		resp.MissedCards = append(resp.MissedCards, model.MissedCard{StudyCard: toStudyCard(c), Misses: session.MissCount(c.ID)})
	}
	return resp
}
