//go:generate mockery --name QuestService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"time"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestService interface {
	GetDailyQuests(ctx context.Context, userID uuid.UUID) ([]model.DailyQuestResponse, error)
	// RecordEvent は tx の中で今日のクエスト進捗を進め、新たに達成したクエストを返します
	RecordEvent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType model.QuestEventType, amount int) ([]model.QuestCompletion, error)
	PurgeOldProgress(ctx context.Context, retainDays int) (int64, error)
	SeedCatalog(ctx context.Context) (int, error)
}

type questService struct {
	db            *gorm.DB
	questRepo     repository.QuestRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	loc           *time.Location
	now           func() time.Time
}

func NewQuestService(db *gorm.DB, questRepo repository.QuestRepository, userRepo repository.UserRepository, notifications NotificationService, loc *time.Location) QuestService {
	return &questService{
		db:            db,
		questRepo:     questRepo,
		userRepo:      userRepo,
		notifications: notifications,
		loc:           loc,
		now:           time.Now,
	}
}

// DefaultQuests はデイリークエストの初期カタログです
var DefaultQuests = []model.Quest{
	{Code: "daily_study_20", Title: "カードを20枚学習する", Description: "今日20枚のカードに回答しましょう。", EventType: model.EventCardsStudied, Target: 20, XPReward: 50},
	{Code: "daily_study_50", Title: "カードを50枚学習する", Description: "今日50枚のカードに回答しましょう。", EventType: model.EventCardsStudied, Target: 50, XPReward: 120},
	{Code: "daily_session_1", Title: "学習セッションを完了する", Description: "プレイリストを最後まで学習しましょう。", EventType: model.EventSessionCompleted, Target: 1, XPReward: 30},
	{Code: "daily_perfect_1", Title: "パーフェクトを達成する", Description: "1周をノーミスで終えましょう。", EventType: model.EventPerfectCycle, Target: 1, XPReward: 80},
	{Code: "daily_create_5", Title: "カードを5枚作成する", Description: "新しいカードを5枚作りましょう。", EventType: model.EventFlashcardsCreated, Target: 5, XPReward: 40},
}

func (s *questService) GetDailyQuests(ctx context.Context, userID uuid.UUID) ([]model.DailyQuestResponse, error) {
	today := dayOf(s.now(), s.loc)
	var resp []model.DailyQuestResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quests, err := s.questRepo.ListActive(ctx, tx)
		if err != nil {
			return internalError(err)
		}
		resp = make([]model.DailyQuestResponse, 0, len(quests))
		for _, q := range quests {
			uq, err := s.questRepo.EnsureUserQuest(ctx, tx, userID, q.QuestID, today)
			if err != nil {
				return internalError(err)
			}
			resp = append(resp, model.DailyQuestResponse{
				QuestID:     q.QuestID,
				Code:        q.Code,
				Title:       q.Title,
				Description: q.Description,
				EventType:   q.EventType,
				Target:      q.Target,
				Progress:    uq.Progress,
				XPReward:    q.XPReward,
				Completed:   uq.CompletedAt != nil,
				CompletedAt: uq.CompletedAt,
				QuestDate:   today,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *questService) RecordEvent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType model.QuestEventType, amount int) ([]model.QuestCompletion, error) {
	if amount <= 0 {
		return nil, nil
	}
	logger := middleware.GetLogger(ctx)
	now := s.now()
	today := dayOf(now, s.loc)

	quests, err := s.questRepo.ListActiveByEvent(ctx, tx, eventType)
	if err != nil {
		return nil, internalError(err)
	}

	var completions []model.QuestCompletion
	for _, q := range quests {
		uq, err := s.questRepo.EnsureUserQuest(ctx, tx, userID, q.QuestID, today)
		if err != nil {
			return nil, internalError(err)
		}
		if uq.CompletedAt != nil {
			continue
		}
		if err := s.questRepo.IncrementProgress(ctx, tx, uq.UserQuestID, amount, q.Target); err != nil {
			return nil, internalError(err)
		}
		completed, err := s.questRepo.MarkCompleted(ctx, tx, uq.UserQuestID, q.Target, now)
		if err != nil {
			return nil, internalError(err)
		}
		if !completed {
			continue
		}

		if err := s.userRepo.AddXP(ctx, tx, userID, q.XPReward); err != nil {
			return nil, internalError(err)
		}
		payload := map[string]any{
			"quest_id":  q.QuestID.String(),
			"code":      q.Code,
			"title":     q.Title,
			"xp_reward": q.XPReward,
		}
		if err := s.notifications.Notify(ctx, tx, userID, nil, model.NotificationQuestCompleted, payload); err != nil {
			return nil, err
		}
		logger.Info("Quest completed", "code", q.Code, "xp_reward", q.XPReward)
		completions = append(completions, model.QuestCompletion{
			QuestID:  q.QuestID,
			Code:     q.Code,
			Title:    q.Title,
			XPReward: q.XPReward,
		})
	}
	return completions, nil
}

// PurgeOldProgress は retainDays より古い日付の進捗行を削除します
func (s *questService) PurgeOldProgress(ctx context.Context, retainDays int) (int64, error) {
	before := dayBefore(dayOf(s.now(), s.loc), retainDays)
	n, err := s.questRepo.DeleteUserQuestsBefore(ctx, s.db, before)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

// SeedCatalog は DefaultQuests のうち未登録のものを作成し、作成数を返します
func (s *questService) SeedCatalog(ctx context.Context) (int, error) {
	logger := middleware.GetLogger(ctx)
	created := 0
	for _, def := range DefaultQuests {
		_, err := s.questRepo.FindByCode(ctx, s.db, def.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrNotFound) {
			return created, internalError(err)
		}
		q := def
		q.QuestID = uuid.New()
		q.IsActive = true
		if err := s.questRepo.Create(ctx, s.db, &q); err != nil {
			if errors.Is(err, model.ErrConflict) {
				continue
			}
			return created, internalError(err)
		}
		created++
		logger.Info("Quest seeded", "code", q.Code)
	}
	return created, nil
}
