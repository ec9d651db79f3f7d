//go:generate mockery --name UserService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxSearchLimit = 50

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
	GetProfile(ctx context.Context, viewerID, userID uuid.UUID) (*model.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.UserResponse, error)
	SearchUsers(ctx context.Context, userID uuid.UUID, query string, limit int) ([]model.UserSummary, error)
}

type userService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	streakRepo repository.StreakRepository
	friendRepo repository.FriendRepository
	loc        *time.Location
	now        func() time.Time
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, streakRepo repository.StreakRepository, friendRepo repository.FriendRepository, loc *time.Location) UserService {
	return &userService{
		db:         db,
		userRepo:   userRepo,
		streakRepo: streakRepo,
		friendRepo: friendRepo,
		loc:        loc,
		now:        time.Now,
	}
}

var errUserNotFound = model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)

func (s *userService) findUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, internalError(err)
	}
	return user, nil
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.NewUserResponse(user), nil
}

func (s *userService) GetProfile(ctx context.Context, viewerID, userID uuid.UUID) (*model.ProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive && viewerID != userID {
		return nil, errUserNotFound
	}

	resp := &model.ProfileResponse{
		UserID:      user.UserID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		XP:          user.XP,
	}

	streak, err := s.streakRepo.Find(ctx, s.db, userID)
	switch {
	case err == nil:
		resp.CurrentStreak = currentStreakOn(streak, dayOf(s.now(), s.loc))
	case !errors.Is(err, model.ErrNotFound):
		return nil, internalError(err)
	}

	if viewerID != userID {
		conn, err := s.friendRepo.FindBetween(ctx, s.db, viewerID, userID)
		switch {
		case err == nil:
			resp.IsFriend = conn.Status == model.FriendStatusAccepted
		case !errors.Is(err, model.ErrNotFound):
			return nil, internalError(err)
		}
	}
	return resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.UserResponse, error) {
	logger := middleware.GetLogger(ctx)
	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return nil, model.NewAppError("VALIDATION_ERROR", "表示名は必須項目です。", "display_name", model.ErrInvalidInput)
		}
		updates["display_name"] = name
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, s.db, userID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, errUserNotFound
			}
			return nil, internalError(err)
		}
		logger.Info("Profile updated", "fields", len(updates))
	}
	return s.GetMe(ctx, userID)
}

func (s *userService) SearchUsers(ctx context.Context, userID uuid.UUID, query string, limit int) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "検索キーワードを入力してください。", "q", model.ErrInvalidInput)
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	users, err := s.userRepo.Search(ctx, s.db, query, userID, limit)
	if err != nil {
		return nil, internalError(err)
	}
	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, model.NewUserSummary(u))
	}
	return summaries, nil
}
