//go:generate mockery --name FriendRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendRepository interface {
	Create(ctx context.Context, tx *gorm.DB, conn *model.FriendConnection) error
	FindByID(ctx context.Context, db *gorm.DB, connectionID uuid.UUID) (*model.FriendConnection, error)
	// FindBetween は a-b 間のエッジを向きを問わず探します
	FindBetween(ctx context.Context, db *gorm.DB, a, b uuid.UUID) (*model.FriendConnection, error)
	Accept(ctx context.Context, tx *gorm.DB, connectionID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, connectionID uuid.UUID) error
	ListAccepted(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FriendConnection, error)
	ListIncoming(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FriendConnection, error)
	ListOutgoing(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FriendConnection, error)
	FriendIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
}

type gormFriendRepository struct{}

func NewGormFriendRepository() FriendRepository {
	return &gormFriendRepository{}
}

func (r *gormFriendRepository) Create(ctx context.Context, tx *gorm.DB, conn *model.FriendConnection) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(conn).Error; err != nil {
		if isDuplicateKey(err) {
			logger.Warn("Duplicate friend connection", "requester_id", conn.RequesterID, "addressee_id", conn.AddresseeID)
			return model.ErrConflict
		}
		logger.Error("Error creating friend connection in DB", "error", err)
		return fmt.Errorf("gormFriendRepository.Create: %w", err)
	}
	return nil
}

func (r *gormFriendRepository) FindByID(ctx context.Context, db *gorm.DB, connectionID uuid.UUID) (*model.FriendConnection, error) {
	logger := middleware.GetLogger(ctx)
	var conn model.FriendConnection
	result := db.WithContext(ctx).Where("connection_id = ?", connectionID).First(&conn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding friend connection in DB", "error", result.Error, "connection_id", connectionID.String())
		return nil, fmt.Errorf("gormFriendRepository.FindByID: %w", result.Error)
	}
	return &conn, nil
}

func (r *gormFriendRepository) FindBetween(ctx context.Context, db *gorm.DB, a, b uuid.UUID) (*model.FriendConnection, error) {
	logger := middleware.GetLogger(ctx)
	var conn model.FriendConnection
	low, high := model.FriendPair(a, b)
	result := db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", low, high).
		First(&conn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding friend connection between users in DB", "error", result.Error)
		return nil, fmt.Errorf("gormFriendRepository.FindBetween: %w", result.Error)
	}
	return &conn, nil
}

func (r *gormFriendRepository) Accept(ctx context.Context, tx *gorm.DB, connectionID uuid.UUID, at time.Time) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.FriendConnection{}).
		Where("connection_id = ? AND status = ?", connectionID, model.FriendStatusPending).
		Updates(map[string]interface{}{
			"status":       model.FriendStatusAccepted,
			"responded_at": at,
		})
	if result.Error != nil {
		logger.Error("Error accepting friend connection in DB", "error", result.Error, "connection_id", connectionID.String())
		return fmt.Errorf("gormFriendRepository.Accept: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFriendRepository) Delete(ctx context.Context, tx *gorm.DB, connectionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("connection_id = ?", connectionID).Delete(&model.FriendConnection{})
	if result.Error != nil {
		logger.Error("Error deleting friend connection in DB", "error", result.Error, "connection_id", connectionID.String())
		return fmt.Errorf("gormFriendRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFriendRepository) ListAccepted(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FriendConnection, error) {
	return r.list(ctx, db, "ListAccepted", "responded_at DESC",
		"(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, model.FriendStatusAccepted)
}

func (r *gormFriendRepository) ListIncoming(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FriendConnection, error) {
	return r.list(ctx, db, "ListIncoming", "created_at DESC",
		"addressee_id = ? AND status = ?", userID, model.FriendStatusPending)
}

func (r *gormFriendRepository) ListOutgoing(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.FriendConnection, error) {
	return r.list(ctx, db, "ListOutgoing", "created_at DESC",
		"requester_id = ? AND status = ?", userID, model.FriendStatusPending)
}

func (r *gormFriendRepository) list(ctx context.Context, db *gorm.DB, op, order, cond string, args ...interface{}) ([]*model.FriendConnection, error) {
	logger := middleware.GetLogger(ctx)
	var conns []*model.FriendConnection
	result := db.WithContext(ctx).
		Preload("Requester").
		Preload("Addressee").
		Where(cond, args...).
		Order(order).
		Find(&conns)
	if result.Error != nil {
		logger.Error("Error listing friend connections in DB", "error", result.Error, "op", op)
		return nil, fmt.Errorf("gormFriendRepository.%s: %w", op, result.Error)
	}
	return conns, nil
}

// FriendIDs は承認済みの友達のユーザーIDを返します
func (r *gormFriendRepository) FriendIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	logger := middleware.GetLogger(ctx)
	var conns []*model.FriendConnection
	result := db.WithContext(ctx).
		Select("requester_id", "addressee_id").
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, model.FriendStatusAccepted).
		Find(&conns)
	if result.Error != nil {
		logger.Error("Error listing friend ids in DB", "error", result.Error, "user_id", userID.String())
		return nil, fmt.Errorf("gormFriendRepository.FriendIDs: %w", result.Error)
	}
	ids := make([]uuid.UUID, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.OtherSide(userID))
	}
	return ids, nil
}
