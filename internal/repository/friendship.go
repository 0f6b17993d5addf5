package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FriendshipRepository interface {
	Create(ctx context.Context, userID, friendID string) error
	Delete(ctx context.Context, userID, friendID string) error
	Exists(ctx context.Context, userID, friendID string) (bool, error)
	GetFriendIDs(ctx context.Context, userID string) ([]string, error)
	GetByUserIDs(ctx context.Context, userIDs []string) ([]entity.Friendship, error)
}

type friendshipRepository struct{}

func NewFriendshipRepository() *friendshipRepository {
	return &friendshipRepository{}
}

// Create stores both directions of the friendship. It should run in a transaction.
func (r *friendshipRepository) Create(ctx context.Context, userID, friendID string) error {
	rows := []entity.Friendship{
		{UserID: userID, FriendID: friendID},
		{UserID: friendID, FriendID: userID},
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// Delete removes both directions. It returns gorm.ErrRecordNotFound if they were not friends.
func (r *friendshipRepository) Delete(ctx context.Context, userID, friendID string) error {
	tx := xcontext.DB(ctx).
		Where("(user_id=? AND friend_id=?) OR (user_id=? AND friend_id=?)",
			userID, friendID, friendID, userID).
		Delete(&entity.Friendship{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 2 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *friendshipRepository) Exists(ctx context.Context, userID, friendID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Friendship{}).
		Where("user_id=? AND friend_id=?", userID, friendID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *friendshipRepository) GetFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Friendship{}).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Pluck("friend_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *friendshipRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]entity.Friendship, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var result []entity.Friendship
	if err := xcontext.DB(ctx).Where("user_id IN (?)", userIDs).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
