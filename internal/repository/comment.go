package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, data *entity.Comment) error
	GetByID(ctx context.Context, id int64) (*entity.Comment, error)
	GetListByChallengeID(ctx context.Context, challengeID string) ([]entity.Comment, error)
	GetReplyIDs(ctx context.Context, parentID int64) ([]int64, error)
	TogglePinned(ctx context.Context, id int64) error
	UpdateLikesCount(ctx context.Context, id int64, count int64) error
	DeleteThread(ctx context.Context, id int64) error
}

type commentRepository struct{}

func NewCommentRepository() *commentRepository {
	return &commentRepository{}
}

func (r *commentRepository) Create(ctx context.Context, data *entity.Comment) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	var result entity.Comment
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *commentRepository) GetListByChallengeID(ctx context.Context, challengeID string) ([]entity.Comment, error) {
	var result []entity.Comment
	err := xcontext.DB(ctx).
		Where("challenge_id=?", challengeID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *commentRepository) GetReplyIDs(ctx context.Context, parentID int64) ([]int64, error) {
	var result []int64
	err := xcontext.DB(ctx).
		Model(&entity.Comment{}).
		Where("parent_id=?", parentID).
		Pluck("id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// TogglePinned flips the pin in the store, concurrent toggles never write the same value.
func (r *commentRepository) TogglePinned(ctx context.Context, id int64) error {
	return r.update(ctx, id, "is_pinned", gorm.Expr("NOT is_pinned"))
}

func (r *commentRepository) UpdateLikesCount(ctx context.Context, id int64, count int64) error {
	return r.update(ctx, id, "likes_count", count)
}

func (r *commentRepository) update(ctx context.Context, id int64, column string, value any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Comment{}).
		Where("id=?", id).
		Update(column, value)

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

// DeleteThread deletes the comment and its replies.
func (r *commentRepository) DeleteThread(ctx context.Context, id int64) error {
	return xcontext.DB(ctx).Where("id=? OR parent_id=?", id, id).Delete(&entity.Comment{}).Error
}
