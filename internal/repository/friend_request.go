package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

type FriendRequestRepository interface {
	Create(ctx context.Context, data *entity.FriendRequest) error
	GetByID(ctx context.Context, id string) (*entity.FriendRequest, error)
	GetPendingBetween(ctx context.Context, a, b string) (*entity.FriendRequest, error)
	GetPendingByUserID(ctx context.Context, userID string) ([]entity.FriendRequest, error)
	Resolve(ctx context.Context, id string, status entity.FriendRequestStatus, respondedAt time.Time) error
	DeletePending(ctx context.Context, id string) error
}

type friendRequestRepository struct{}

func NewFriendRequestRepository() *friendRequestRepository {
	return &friendRequestRepository{}
}

func (r *friendRequestRepository) Create(ctx context.Context, data *entity.FriendRequest) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *friendRequestRepository) GetByID(ctx context.Context, id string) (*entity.FriendRequest, error) {
	var result entity.FriendRequest
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPendingBetween finds the pending request of the pair in either direction.
func (r *friendRequestRepository) GetPendingBetween(ctx context.Context, a, b string) (*entity.FriendRequest, error) {
	var result entity.FriendRequest
	err := xcontext.DB(ctx).
		Where("pending_key=?", entity.PairKey(a, b)).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPendingByUserID returns both incoming and outgoing pending requests, newest first.
func (r *friendRequestRepository) GetPendingByUserID(ctx context.Context, userID string) ([]entity.FriendRequest, error) {
	var result []entity.FriendRequest
	err := xcontext.DB(ctx).
		Where("status=? AND (sender_id=? OR recipient_id=?)", entity.FriendRequestPending, userID, userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Resolve moves a pending request to status. It returns gorm.ErrRecordNotFound if the request is
// not pending anymore.
func (r *friendRequestRepository) Resolve(
	ctx context.Context, id string, status entity.FriendRequestStatus, respondedAt time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.FriendRequest{}).
		Where("id=? AND status=?", id, entity.FriendRequestPending).
		Updates(map[string]any{
			"status":       status,
			"pending_key":  sql.NullString{},
			"responded_at": sql.NullTime{Time: respondedAt, Valid: true},
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *friendRequestRepository) DeletePending(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Where("id=? AND status=?", id, entity.FriendRequestPending).
		Delete(&entity.FriendRequest{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
