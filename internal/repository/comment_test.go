package repository_test

import (
	"database/sql"
	"testing"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentLikeRepository(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	commentRepo := repository.NewCommentRepository()
	likeRepo := repository.NewCommentLikeRepository()

	require.NoError(t, commentRepo.Create(ctx, &entity.Comment{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
		ChallengeID:   testutil.Challenge1.ID,
		UserID:        testutil.User1.ID,
		Content:       "hello",
	}))
	require.NoError(t, commentRepo.Create(ctx, &entity.Comment{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 2},
		ChallengeID:   testutil.Challenge1.ID,
		UserID:        testutil.User2.ID,
		Content:       "reply",
		ParentID:      sql.NullInt64{Int64: 1, Valid: true},
	}))

	require.NoError(t, likeRepo.Create(ctx, &entity.CommentLike{CommentID: 1, UserID: testutil.User2.ID}))
	require.NoError(t, likeRepo.Create(ctx, &entity.CommentLike{CommentID: 1, UserID: testutil.User2.ID}))
	require.NoError(t, likeRepo.Create(ctx, &entity.CommentLike{CommentID: 1, UserID: testutil.User3.ID}))

	count, err := likeRepo.Count(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	liked, err := likeRepo.GetLikedCommentIDs(ctx, testutil.User2.ID, []int64{1, 2})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, liked)

	deleted, err := likeRepo.Delete(ctx, 1, testutil.User2.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = likeRepo.Delete(ctx, 1, testutil.User2.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	replies, err := commentRepo.GetReplyIDs(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, replies)

	require.NoError(t, likeRepo.Create(ctx, &entity.CommentLike{CommentID: 2, UserID: testutil.User1.ID}))

	require.NoError(t, commentRepo.TogglePinned(ctx, 1))
	comment, err := commentRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, comment.IsPinned)

	require.NoError(t, commentRepo.TogglePinned(ctx, 1))
	comment, err = commentRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.False(t, comment.IsPinned)

	require.ErrorIs(t, commentRepo.TogglePinned(ctx, 42), gorm.ErrRecordNotFound)

	require.NoError(t, likeRepo.DeleteByThread(ctx, 1))
	count, err = likeRepo.Count(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)
	count, err = likeRepo.Count(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, commentRepo.DeleteThread(ctx, 1))

	comments, err := commentRepo.GetListByChallengeID(ctx, testutil.Challenge1.ID)
	require.NoError(t, err)
	require.Empty(t, comments)
}
