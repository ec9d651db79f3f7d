//go:generate mockery --name NotificationService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationService interface {
	// Notify / NotifyMany は呼び出し元のトランザクション (tx) の中で通知を作成します
	Notify(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, actorID *uuid.UUID, typ model.NotificationType, payload map[string]any) error
	NotifyMany(ctx context.Context, tx *gorm.DB, recipientIDs []uuid.UUID, actorID *uuid.UUID, typ model.NotificationType, payload map[string]any) error

	List(ctx context.Context, userID uuid.UUID, q model.NotificationListQuery) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) error
}

type notificationService struct {
	db   *gorm.DB
	repo repository.NotificationRepository
}

func NewNotificationService(db *gorm.DB, repo repository.NotificationRepository) NotificationService {
	return &notificationService{db: db, repo: repo}
}

func newNotification(recipientID uuid.UUID, actorID *uuid.UUID, typ model.NotificationType, payload map[string]any) *model.Notification {
	if payload == nil {
		payload = map[string]any{}
	}
	return &model.Notification{
		NotificationID: uuid.New(),
		RecipientID:    recipientID,
		ActorID:        actorID,
		Type:           typ,
		Payload:        payload,
	}
}

func (s *notificationService) Notify(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, actorID *uuid.UUID, typ model.NotificationType, payload map[string]any) error {
	if err := s.repo.Create(ctx, tx, newNotification(recipientID, actorID, typ, payload)); err != nil {
		return internalError(err)
	}
	middleware.GetLogger(ctx).Debug("Notification created", "type", typ, "recipient_id", recipientID)
	return nil
}

func (s *notificationService) NotifyMany(ctx context.Context, tx *gorm.DB, recipientIDs []uuid.UUID, actorID *uuid.UUID, typ model.NotificationType, payload map[string]any) error {
	ns := make([]*model.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		// 受信者ごとに payload を複製する (JSON シリアライズ前に共有されないように)
		p := make(map[string]any, len(payload))
		for k, v := range payload {
			p[k] = v
		}
		ns = append(ns, newNotification(id, actorID, typ, p))
	}
	if err := s.repo.CreateBatch(ctx, tx, ns); err != nil {
		return internalError(err)
	}
	middleware.GetLogger(ctx).Debug("Notifications fanned out", "type", typ, "count", len(ns))
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, q model.NotificationListQuery) ([]*model.Notification, error) {
	if q.Limit <= 0 {
		q.Limit = defaultNotificationLimit
	}
	if q.Limit > maxNotificationLimit {
		q.Limit = maxNotificationLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	ns, err := s.repo.List(ctx, s.db, userID, q)
	if err != nil {
		return nil, internalError(err)
	}
	return ns, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, s.db, userID)
	if err != nil {
		return 0, internalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, s.db, userID, notificationID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notFoundError("NOTIFICATION_NOT_FOUND", "通知が見つかりません。")
		}
		return internalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, s.db, userID)
	if err != nil {
		return 0, internalError(err)
	}
	middleware.GetLogger(ctx).Info("Notifications marked read", "count", n)
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, s.db, userID, notificationID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notFoundError("NOTIFICATION_NOT_FOUND", "通知が見つかりません。")
		}
		return internalError(err)
	}
	return nil
}
