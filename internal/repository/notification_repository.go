//go:generate mockery --name NotificationRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, n *model.Notification) error
	CreateBatch(ctx context.Context, tx *gorm.DB, ns []*model.Notification) error
	List(ctx context.Context, db *gorm.DB, recipientID uuid.UUID, q model.NotificationListQuery) ([]*model.Notification, error)
	CountUnread(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, recipientID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, recipientID, notificationID uuid.UUID) error
}

type gormNotificationRepository struct{}

func NewGormNotificationRepository() NotificationRepository {
	return &gormNotificationRepository{}
}

func (r *gormNotificationRepository) Create(ctx context.Context, tx *gorm.DB, n *model.Notification) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		logger.Error("Error creating notification in DB", "error", err, "type", n.Type, "recipient_id", n.RecipientID.String())
		return fmt.Errorf("gormNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *gormNotificationRepository) CreateBatch(ctx context.Context, tx *gorm.DB, ns []*model.Notification) error {
	logger := middleware.GetLogger(ctx)
	if len(ns) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(ns, 100).Error; err != nil {
		logger.Error("Error batch creating notifications in DB", "error", err, "count", len(ns))
		return fmt.Errorf("gormNotificationRepository.CreateBatch: %w", err)
	}
	return nil
}

func (r *gormNotificationRepository) List(ctx context.Context, db *gorm.DB, recipientID uuid.UUID, q model.NotificationListQuery) ([]*model.Notification, error) {
	logger := middleware.GetLogger(ctx)
	var ns []*model.Notification
	query := db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if q.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	result := query.Order("created_at DESC").Limit(q.Limit).Offset(q.Offset).Find(&ns)
	if result.Error != nil {
		logger.Error("Error listing notifications in DB", "error", result.Error, "recipient_id", recipientID.String())
		return nil, fmt.Errorf("gormNotificationRepository.List: %w", result.Error)
	}
	return ns, nil
}

func (r *gormNotificationRepository) CountUnread(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error counting unread notifications in DB", "error", result.Error)
		return 0, fmt.Errorf("gormNotificationRepository.CountUnread: %w", result.Error)
	}
	return count, nil
}

// MarkRead は既読にします。既に既読でも成功扱いです。
func (r *gormNotificationRepository) MarkRead(ctx context.Context, db *gorm.DB, recipientID, notificationID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	var count int64
	scope := db.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND recipient_id = ?", notificationID, recipientID)
	if err := scope.Count(&count).Error; err != nil {
		logger.Error("Error finding notification in DB", "error", err)
		return fmt.Errorf("gormNotificationRepository.MarkRead: %w", err)
	}
	if count == 0 {
		return model.ErrNotFound
	}
	result := db.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		logger.Error("Error marking notification read in DB", "error", result.Error)
		return fmt.Errorf("gormNotificationRepository.MarkRead: %w", result.Error)
	}
	return nil
}

func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if result.Error != nil {
		logger.Error("Error marking all notifications read in DB", "error", result.Error)
		return 0, fmt.Errorf("gormNotificationRepository.MarkAllRead: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormNotificationRepository) Delete(ctx context.Context, db *gorm.DB, recipientID, notificationID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Where("notification_id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&model.Notification{})
	if result.Error != nil {
		logger.Error("Error deleting notification in DB", "error", result.Error)
		return fmt.Errorf("gormNotificationRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
