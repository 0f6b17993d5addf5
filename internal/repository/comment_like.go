package repository

import (
	"context"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type CommentLikeRepository interface {
	Create(ctx context.Context, data *entity.CommentLike) error
	Delete(ctx context.Context, commentID int64, userID string) (bool, error)
	Count(ctx context.Context, commentID int64) (int64, error)
	GetLikedCommentIDs(ctx context.Context, userID string, commentIDs []int64) ([]int64, error)
	DeleteByThread(ctx context.Context, commentID int64) error
}

type commentLikeRepository struct{}

func NewCommentLikeRepository() *commentLikeRepository {
	return &commentLikeRepository{}
}

// Create ignores a like which already exists.
func (r *commentLikeRepository) Create(ctx context.Context, data *entity.CommentLike) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data).Error
}

// Delete returns false if the user did not like the comment.
func (r *commentLikeRepository) Delete(ctx context.Context, commentID int64, userID string) (bool, error) {
	tx := xcontext.DB(ctx).
		Where("comment_id=? AND user_id=?", commentID, userID).
		Delete(&entity.CommentLike{})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *commentLikeRepository) Count(ctx context.Context, commentID int64) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.CommentLike{}).
		Where("comment_id=?", commentID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *commentLikeRepository) GetLikedCommentIDs(
	ctx context.Context, userID string, commentIDs []int64,
) ([]int64, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}

	var result []int64
	err := xcontext.DB(ctx).
		Model(&entity.CommentLike{}).
		Where("user_id=? AND comment_id IN (?)", userID, commentIDs).
		Pluck("comment_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteByThread deletes likes of the comment and of its replies.
func (r *commentLikeRepository) DeleteByThread(ctx context.Context, commentID int64) error {
	thread := xcontext.DB(ctx).
		Model(&entity.Comment{}).
		Select("id").
		Where("id=? OR parent_id=?", commentID, commentID)

	return xcontext.DB(ctx).Where("comment_id IN (?)", thread).Delete(&entity.CommentLike{}).Error
}
