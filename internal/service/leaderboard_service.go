package service

import (
	"context"
	"sort"
	"time"

	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaderboardService interface {
	Global(ctx context.Context, viewerID uuid.UUID, limit int) ([]model.LeaderboardEntry, error)
	Friends(ctx context.Context, viewerID uuid.UUID) ([]model.LeaderboardEntry, error)
	Streaks(ctx context.Context, viewerID uuid.UUID, limit int) ([]model.LeaderboardEntry, error)
}

type leaderboardService struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	friendRepo   repository.FriendRepository
	streakRepo   repository.StreakRepository
	defaultLimit int
	loc          *time.Location
	now          func() time.Time
}

func NewLeaderboardService(db *gorm.DB, userRepo repository.UserRepository, friendRepo repository.FriendRepository, streakRepo repository.StreakRepository, defaultLimit int, loc *time.Location) LeaderboardService {
	return &leaderboardService{
		db:           db,
		userRepo:     userRepo,
		friendRepo:   friendRepo,
		streakRepo:   streakRepo,
		defaultLimit: defaultLimit,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *leaderboardService) limit(n int) int {
	if n <= 0 || n > s.defaultLimit {
		return s.defaultLimit
	}
	return n
}

func (s *leaderboardService) Global(ctx context.Context, viewerID uuid.UUID, limit int) ([]model.LeaderboardEntry, error) {
	users, err := s.userRepo.TopByXP(ctx, s.db, s.limit(limit))
	if err != nil {
		return nil, internalError(err)
	}
	return s.rankByXP(ctx, viewerID, users)
}

// Friends は自分と承認済みの友達を経験値順に並べます
func (s *leaderboardService) Friends(ctx context.Context, viewerID uuid.UUID) ([]model.LeaderboardEntry, error) {
	ids, err := s.friendRepo.FriendIDs(ctx, s.db, viewerID)
	if err != nil {
		return nil, internalError(err)
	}
	users, err := s.userRepo.FindByIDs(ctx, s.db, append(ids, viewerID))
	if err != nil {
		return nil, internalError(err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].Username < users[j].Username
	})
	return s.rankByXP(ctx, viewerID, users)
}

func (s *leaderboardService) rankByXP(ctx context.Context, viewerID uuid.UUID, users []*model.User) ([]model.LeaderboardEntry, error) {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	streaks, err := s.streakRepo.FindByUserIDs(ctx, s.db, ids)
	if err != nil {
		return nil, internalError(err)
	}
	today := dayOf(s.now(), s.loc)
	current := make(map[uuid.UUID]int, len(streaks))
	for _, st := range streaks {
		current[st.UserID] = currentStreakOn(st, today)
	}

	entries := make([]model.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			User:          model.NewUserSummary(u),
			XP:            u.XP,
			CurrentStreak: current[u.UserID],
			IsMe:          u.UserID == viewerID,
		})
	}
	assignRanks(entries, func(e model.LeaderboardEntry) int64 { return e.XP })
	return entries, nil
}

func (s *leaderboardService) Streaks(ctx context.Context, viewerID uuid.UUID, limit int) ([]model.LeaderboardEntry, error) {
	streaks, err := s.streakRepo.TopByCurrent(ctx, s.db, s.limit(limit))
	if err != nil {
		return nil, internalError(err)
	}
	today := dayOf(s.now(), s.loc)
	entries := make([]model.LeaderboardEntry, 0, len(streaks))
	for _, st := range streaks {
		// スケジューラがまだリセットしていない途切れたストリークは除外する
		cur := currentStreakOn(st, today)
		if st.User == nil || cur == 0 {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			User:          model.NewUserSummary(st.User),
			XP:            st.User.XP,
			CurrentStreak: cur,
			IsMe:          st.UserID == viewerID,
		})
	}
	assignRanks(entries, func(e model.LeaderboardEntry) int64 { return int64(e.CurrentStreak) })
	return entries, nil
}

// assignRanks は並び済みの entries に 1 始まりの順位を付けます。同点は同順位 (1, 1, 3 ...)。
func assignRanks(entries []model.LeaderboardEntry, score func(model.LeaderboardEntry) int64) {
	for i := range entries {
		if i > 0 && score(entries[i]) == score(entries[i-1]) {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
