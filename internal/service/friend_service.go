//go:generate mockery --name FriendService --output ./mocks --outpkg mocks --case=underscore
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

type FriendService interface {
	SendRequest(ctx context.Context, userID, addresseeID uuid.UUID) (*model.FriendRequestResponse, error)
	AcceptRequest(ctx context.Context, userID, connectionID uuid.UUID) (*model.FriendRequestResponse, error)
	RejectRequest(ctx context.Context, userID, connectionID uuid.UUID) error
	CancelRequest(ctx context.Context, userID, connectionID uuid.UUID) error
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]model.FriendResponse, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]model.FriendRequestResponse, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]model.FriendRequestResponse, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type friendService struct {
	db            *gorm.DB
	friendRepo    repository.FriendRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	now           func() time.Time
}

func NewFriendService(db *gorm.DB, friendRepo repository.FriendRepository, userRepo repository.UserRepository, notifications NotificationService) FriendService {
	return &friendService{
		db:            db,
		friendRepo:    friendRepo,
		userRepo:      userRepo,
		notifications: notifications,
		now:           time.Now,
	}
}

var errRequestNotFound = model.NewAppError("FRIEND_REQUEST_NOT_FOUND", "友達申請が見つかりません。", "", model.ErrNotFound)

// errEdgeRace は同じ2人の間のエッジが並行して作成されたことを表します
var errEdgeRace = errors.New("friend connection created concurrently")

func (s *friendService) SendRequest(ctx context.Context, userID, addresseeID uuid.UUID) (*model.FriendRequestResponse, error) {
	logger := middleware.GetLogger(ctx).With("addressee_id", addresseeID)
	if userID == addresseeID {
		return nil, model.NewAppError("SELF_FRIEND_REQUEST", "自分自身に友達申請はできません。", "addressee_id", model.ErrInvalidInput)
	}

	resp, err := s.sendRequest(ctx, userID, addresseeID)
	if errors.Is(err, errEdgeRace) {
		// 相手の申請が先にコミットされた。読み直せば相互申請として承認できる
		logger.Info("Friend connection created concurrently, retrying")
		resp, err = s.sendRequest(ctx, userID, addresseeID)
	}
	if errors.Is(err, errEdgeRace) {
		return nil, model.NewAppError("REQUEST_ALREADY_SENT", "既に友達申請を送信しています。", "addressee_id", model.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Friend request sent", "status", resp.Status)
	return resp, nil
}

func (s *friendService) sendRequest(ctx context.Context, userID, addresseeID uuid.UUID) (*model.FriendRequestResponse, error) {
	logger := middleware.GetLogger(ctx).With("addressee_id", addresseeID)

	var resp *model.FriendRequestResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addressee, err := s.userRepo.FindByID(ctx, tx, addresseeID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return errUserNotFound
			}
			return internalError(err)
		}
		if !addressee.IsActive {
			return errUserNotFound
		}

		existing, err := s.friendRepo.FindBetween(ctx, tx, userID, addresseeID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return internalError(err)
		}
		if existing != nil {
			switch {
			case existing.Status == model.FriendStatusAccepted:
				return model.NewAppError("ALREADY_FRIENDS", "既に友達です。", "addressee_id", model.ErrConflict)
			case existing.RequesterID == userID:
				return model.NewAppError("REQUEST_ALREADY_SENT", "既に友達申請を送信しています。", "addressee_id", model.ErrConflict)
			}
			// 相手からの申請が保留中なら、それを承認したものとして扱う
			logger.Info("Mutual friend request, accepting reverse request", "connection_id", existing.ConnectionID)
			accepted, err := s.accept(ctx, tx, existing, userID)
			if err != nil {
				return err
			}
			resp = toFriendRequestResponse(accepted, addressee)
			return nil
		}

		conn := &model.FriendConnection{
			ConnectionID: uuid.New(),
			RequesterID:  userID,
			AddresseeID:  addresseeID,
			Status:       model.FriendStatusPending,
			CreatedAt:    s.now(),
		}
		if err := s.friendRepo.Create(ctx, tx, conn); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return errEdgeRace
			}
			return internalError(err)
		}

		payload := map[string]any{"connection_id": conn.ConnectionID.String()}
		if err := s.notifications.Notify(ctx, tx, addresseeID, &userID, model.NotificationFriendRequest, payload); err != nil {
			return err
		}
		resp = toFriendRequestResponse(conn, addressee)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// accept は保留中の申請を承認し、申請者へ friend_accepted を通知します
func (s *friendService) accept(ctx context.Context, tx *gorm.DB, conn *model.FriendConnection, accepterID uuid.UUID) (*model.FriendConnection, error) {
	now := s.now()
	if err := s.friendRepo.Accept(ctx, tx, conn.ConnectionID, now); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errRequestNotFound
		}
		return nil, internalError(err)
	}
	conn.Status = model.FriendStatusAccepted
	conn.RespondedAt = &now

	payload := map[string]any{"connection_id": conn.ConnectionID.String()}
	if err := s.notifications.Notify(ctx, tx, conn.RequesterID, &accepterID, model.NotificationFriendAccepted, payload); err != nil {
		return nil, err
	}
	return conn, nil
}

// findPending は保留中の申請を返します。asAddressee なら受信者、そうでなければ申請者本人であることを確認します。
func (s *friendService) findPending(ctx context.Context, tx *gorm.DB, userID, connectionID uuid.UUID, asAddressee bool) (*model.FriendConnection, error) {
	conn, err := s.friendRepo.FindByID(ctx, tx, connectionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errRequestNotFound
		}
		return nil, internalError(err)
	}
	if conn.RequesterID != userID && conn.AddresseeID != userID {
		return nil, errRequestNotFound
	}
	if asAddressee && conn.AddresseeID != userID {
		return nil, forbiddenError("NOT_REQUEST_ADDRESSEE", "この申請に応答できるのは申請を受けたユーザーのみです。")
	}
	if !asAddressee && conn.RequesterID != userID {
		return nil, forbiddenError("NOT_REQUEST_SENDER", "この申請を取り消せるのは申請者のみです。")
	}
	if conn.Status != model.FriendStatusPending {
		return nil, model.NewAppError("REQUEST_NOT_PENDING", "この申請は既に処理されています。", "", model.ErrConflict)
	}
	return conn, nil
}

func (s *friendService) AcceptRequest(ctx context.Context, userID, connectionID uuid.UUID) (*model.FriendRequestResponse, error) {
	var resp *model.FriendRequestResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conn, err := s.findPending(ctx, tx, userID, connectionID, true)
		if err != nil {
			return err
		}
		requester, err := s.userRepo.FindByID(ctx, tx, conn.RequesterID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return errUserNotFound
			}
			return internalError(err)
		}
		accepted, err := s.accept(ctx, tx, conn, userID)
		if err != nil {
			return err
		}
		resp = toFriendRequestResponse(accepted, requester)
		return nil
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Friend request accepted", "connection_id", connectionID)
	return resp, nil
}

func (s *friendService) RejectRequest(ctx context.Context, userID, connectionID uuid.UUID) error {
	return s.deletePending(ctx, userID, connectionID, true)
}

func (s *friendService) CancelRequest(ctx context.Context, userID, connectionID uuid.UUID) error {
	return s.deletePending(ctx, userID, connectionID, false)
}

func (s *friendService) deletePending(ctx context.Context, userID, connectionID uuid.UUID, asAddressee bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conn, err := s.findPending(ctx, tx, userID, connectionID, asAddressee)
		if err != nil {
			return err
		}
		if err := s.friendRepo.Delete(ctx, tx, conn.ConnectionID); err != nil {
			return internalError(err)
		}
		middleware.GetLogger(ctx).Info("Friend request removed", "connection_id", connectionID, "rejected", asAddressee)
		return nil
	})
}

func (s *friendService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conn, err := s.friendRepo.FindBetween(ctx, tx, userID, friendID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return notFoundError("FRIEND_NOT_FOUND", "友達が見つかりません。")
			}
			return internalError(err)
		}
		if conn.Status != model.FriendStatusAccepted {
			return notFoundError("FRIEND_NOT_FOUND", "友達が見つかりません。")
		}
		if err := s.friendRepo.Delete(ctx, tx, conn.ConnectionID); err != nil {
			return internalError(err)
		}
		middleware.GetLogger(ctx).Info("Friend removed", "friend_id", friendID)
		return nil
	})
}

func (s *friendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]model.FriendResponse, error) {
	conns, err := s.friendRepo.ListAccepted(ctx, s.db, userID)
	if err != nil {
		return nil, internalError(err)
	}
	friends := make([]model.FriendResponse, 0, len(conns))
	for _, c := range conns {
		other := c.Addressee
		if c.AddresseeID == userID {
			other = c.Requester
		}
		// 退会済みユーザーは Preload されない
		if other == nil {
			continue
		}
		friends = append(friends, model.FriendResponse{
			User:         model.NewUserSummary(other),
			XP:           other.XP,
			FriendsSince: c.RespondedAt,
		})
	}
	return friends, nil
}

func (s *friendService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]model.FriendRequestResponse, error) {
	conns, err := s.friendRepo.ListIncoming(ctx, s.db, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return toRequestList(conns, func(c *model.FriendConnection) *model.User { return c.Requester }), nil
}

func (s *friendService) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]model.FriendRequestResponse, error) {
	conns, err := s.friendRepo.ListOutgoing(ctx, s.db, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return toRequestList(conns, func(c *model.FriendConnection) *model.User { return c.Addressee }), nil
}

func (s *friendService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	conn, err := s.friendRepo.FindBetween(ctx, s.db, a, b)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, internalError(err)
	}
	return conn.Status == model.FriendStatusAccepted, nil
}

func toRequestList(conns []*model.FriendConnection, other func(*model.FriendConnection) *model.User) []model.FriendRequestResponse {
	list := make([]model.FriendRequestResponse, 0, len(conns))
	for _, c := range conns {
		u := other(c)
		if u == nil {
			continue
		}
		list = append(list, *toFriendRequestResponse(c, u))
	}
	return list
}

func toFriendRequestResponse(c *model.FriendConnection, other *model.User) *model.FriendRequestResponse {
	return &model.FriendRequestResponse{
		ConnectionID: c.ConnectionID,
		Status:       c.Status,
		User:         model.NewUserSummary(other),
		CreatedAt:    c.CreatedAt,
	}
}
