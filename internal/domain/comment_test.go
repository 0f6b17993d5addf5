package domain

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/idutil"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newCommentDomain(t *testing.T, notifier realtime.Notifier) *commentDomain {
	node, err := idutil.NewSnowflakeGenerator(1)
	require.NoError(t, err)

	return NewCommentDomain(
		repository.NewChallengeRepository(),
		repository.NewCommentRepository(),
		repository.NewCommentLikeRepository(),
		repository.NewUserRepository(),
		node,
		notifier,
	)
}

func Test_commentDomain_Post(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	notifier := &mockNotifier{}
	d := newCommentDomain(t, notifier)

	resp, err := d.Post(ctx, &model.PostCommentRequest{
		ChallengeID: testutil.Challenge1.ID,
		Content:     "  day one done  ",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Comment)
	require.Nil(t, resp.Reply)
	require.Equal(t, "day one done", resp.Comment.Content)
	require.Equal(t, "bob", resp.Comment.User.Username)
	require.Empty(t, resp.Comment.Replies)
	require.Equal(t, realtime.CommentEntity, notifier.last().Type)
	require.Equal(t, resp.Comment.ID, notifier.last().RecordID)
	require.Equal(t, testutil.Challenge1.ID, notifier.last().ChallengeID)

	reply, err := d.Post(ctx, &model.PostCommentRequest{
		ChallengeID: testutil.Challenge1.ID,
		Content:     "me too",
		ParentID:    resp.Comment.ID,
	})
	require.NoError(t, err)
	require.Nil(t, reply.Comment)
	require.NotNil(t, reply.Reply)
	require.Equal(t, resp.Comment.ID, reply.Reply.ParentID)

	testCases := []struct {
		name    string
		req     *model.PostCommentRequest
		wantErr errorx.Code
	}{
		{
			name:    "empty",
			req:     &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: " \n\t "},
			wantErr: errorx.EmptyContent,
		},
		{
			name:    "too long",
			req:     &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: strings.Repeat("é", 201)},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "unknown challenge",
			req:     &model.PostCommentRequest{ChallengeID: "unknown", Content: "hi"},
			wantErr: errorx.NotFound,
		},
		{
			name: "reply to a reply",
			req: &model.PostCommentRequest{
				ChallengeID: testutil.Challenge1.ID,
				Content:     "hi",
				ParentID:    reply.Reply.ID,
			},
			wantErr: errorx.InvalidParent,
		},
		{
			name: "parent of another challenge",
			req: &model.PostCommentRequest{
				ChallengeID: testutil.Challenge2.ID,
				Content:     "hi",
				ParentID:    resp.Comment.ID,
			},
			wantErr: errorx.InvalidParent,
		},
		{
			name:    "unknown parent",
			req:     &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "hi", ParentID: "42"},
			wantErr: errorx.InvalidParent,
		},
		{
			name:    "malformed parent",
			req:     &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "hi", ParentID: "abc"},
			wantErr: errorx.InvalidParent,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Post(ctx, tt.req)
			require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
		})
	}

	// 200 runes is still accepted.
	_, err = d.Post(ctx, &model.PostCommentRequest{
		ChallengeID: testutil.Challenge1.ID,
		Content:     strings.Repeat("é", 200),
	})
	require.NoError(t, err)
}

func Test_commentDomain_ToggleLike(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	bob := testutil.WithUserID(ctx, testutil.User2.ID)
	notifier := &mockNotifier{}
	d := newCommentDomain(t, notifier)

	posted, err := d.Post(ctx, &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "hi"})
	require.NoError(t, err)
	commentID := posted.Comment.ID

	resp, err := d.ToggleLike(ctx, &model.ToggleLikeRequest{CommentID: commentID})
	require.NoError(t, err)
	require.Equal(t, &model.ToggleLikeResponse{Liked: true, LikesCount: 1}, resp)
	require.Equal(t, realtime.CommentLikeEntity, notifier.last().Type)
	require.Equal(t, true, notifier.last().Record["liked"])

	resp, err = d.ToggleLike(bob, &model.ToggleLikeRequest{CommentID: commentID})
	require.NoError(t, err)
	require.Equal(t, &model.ToggleLikeResponse{Liked: true, LikesCount: 2}, resp)

	thread, err := d.GetThread(bob, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	require.Equal(t, 2, thread.Comments[0].LikesCount)
	require.True(t, thread.Comments[0].LikedByMe)

	// Toggling twice restores the original state.
	resp, err = d.ToggleLike(ctx, &model.ToggleLikeRequest{CommentID: commentID})
	require.NoError(t, err)
	require.Equal(t, &model.ToggleLikeResponse{Liked: false, LikesCount: 1}, resp)

	thread, err = d.GetThread(ctx, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Equal(t, 1, thread.Comments[0].LikesCount)
	require.False(t, thread.Comments[0].LikedByMe)

	_, err = d.ToggleLike(ctx, &model.ToggleLikeRequest{CommentID: "42"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = d.ToggleLike(ctx, &model.ToggleLikeRequest{CommentID: "abc"})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_commentDomain_TogglePin(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	bob := testutil.WithUserID(ctx, testutil.User2.ID)
	notifier := &mockNotifier{}
	d := newCommentDomain(t, notifier)

	first, err := d.Post(bob, &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "first"})
	require.NoError(t, err)
	_, err = d.Post(bob, &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "second"})
	require.NoError(t, err)

	// Challenge1 is created by alice.
	_, err = d.TogglePin(bob, &model.TogglePinRequest{CommentID: first.Comment.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	resp, err := d.TogglePin(ctx, &model.TogglePinRequest{CommentID: first.Comment.ID})
	require.NoError(t, err)
	require.True(t, resp.IsPinned)
	require.Nil(t, notifier.last().Record)

	thread, err := d.GetThread(ctx, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Len(t, thread.Comments, 2)
	require.Equal(t, "first", thread.Comments[0].Content)
	require.True(t, thread.Comments[0].IsPinned)
	require.Equal(t, "second", thread.Comments[1].Content)

	resp, err = d.TogglePin(ctx, &model.TogglePinRequest{CommentID: first.Comment.ID})
	require.NoError(t, err)
	require.False(t, resp.IsPinned)

	thread, err = d.GetThread(ctx, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Equal(t, "second", thread.Comments[0].Content)
}

func Test_commentDomain_Delete(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	bob := testutil.WithUserID(ctx, testutil.User2.ID)
	carol := testutil.WithUserID(ctx, testutil.User3.ID)
	notifier := &mockNotifier{}
	d := newCommentDomain(t, notifier)

	parent, err := d.Post(bob, &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "parent"})
	require.NoError(t, err)
	reply1, err := d.Post(carol, &model.PostCommentRequest{
		ChallengeID: testutil.Challenge1.ID, Content: "reply 1", ParentID: parent.Comment.ID,
	})
	require.NoError(t, err)
	_, err = d.Post(bob, &model.PostCommentRequest{
		ChallengeID: testutil.Challenge1.ID, Content: "reply 2", ParentID: parent.Comment.ID,
	})
	require.NoError(t, err)
	_, err = d.ToggleLike(carol, &model.ToggleLikeRequest{CommentID: reply1.Reply.ID})
	require.NoError(t, err)

	// Carol is neither the author nor the challenge creator.
	_, err = d.Delete(carol, &model.DeleteCommentRequest{CommentID: parent.Comment.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	// The author deletes their own reply.
	_, err = d.Delete(carol, &model.DeleteCommentRequest{CommentID: reply1.Reply.ID})
	require.NoError(t, err)
	require.Equal(t, realtime.OpDelete, notifier.last().Op)
	require.Equal(t, reply1.Reply.ID, notifier.last().RecordID)

	thread, err := d.GetThread(ctx, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	require.Len(t, thread.Comments[0].Replies, 1)
	require.Equal(t, "reply 2", thread.Comments[0].Replies[0].Content)

	// The challenge creator deletes the thread with its replies.
	before := notifier.count()
	_, err = d.Delete(ctx, &model.DeleteCommentRequest{CommentID: parent.Comment.ID})
	require.NoError(t, err)
	require.Equal(t, before+2, notifier.count())

	thread, err = d.GetThread(ctx, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Empty(t, thread.Comments)

	_, err = d.Delete(ctx, &model.DeleteCommentRequest{CommentID: parent.Comment.ID})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_commentDomain_CommitFailure(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	notifier := &mockNotifier{}
	d := newCommentDomain(t, notifier)

	posted, err := d.Post(ctx, &model.PostCommentRequest{ChallengeID: testutil.Challenge1.ID, Content: "hi"})
	require.NoError(t, err)
	events := notifier.count()

	failCommitAfter(t, ctx, "INSERT", "comment_likes")
	failCommitAfter(t, ctx, "DELETE", "comments")

	_, err = d.ToggleLike(ctx, &model.ToggleLikeRequest{CommentID: posted.Comment.ID})
	require.Error(t, err)
	require.True(t, errorx.Is(err, errorx.Unknown))

	_, err = d.Delete(ctx, &model.DeleteCommentRequest{CommentID: posted.Comment.ID})
	require.Error(t, err)
	require.True(t, errorx.Is(err, errorx.Unknown))

	require.Equal(t, events, notifier.count())

	thread, err := d.GetThread(ctx, &model.GetCommentsRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	require.Zero(t, thread.Comments[0].LikesCount)
	require.False(t, thread.Comments[0].LikedByMe)
}

func TestBuildThread(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	comment := func(id int64, parentID int64, pinned bool, minutes int) entity.Comment {
		c := entity.Comment{
			SnowFlakeBase: entity.SnowFlakeBase{ID: id, CreatedAt: base.Add(time.Duration(minutes) * time.Minute)},
			ChallengeID:   "c",
			UserID:        testutil.User1.ID,
			IsPinned:      pinned,
		}
		if parentID != 0 {
			c.ParentID = sql.NullInt64{Int64: parentID, Valid: true}
		}
		return c
	}

	comments := []entity.Comment{
		comment(1, 0, false, 0),
		comment(2, 0, true, 1),
		comment(3, 0, false, 2),
		comment(4, 0, false, 2),
		comment(5, 1, false, 5),
		comment(6, 1, false, 3),
		comment(7, 99, false, 4),
	}

	users := map[string]entity.User{testutil.User1.ID: testutil.User1}
	thread := BuildThread(comments, users, map[int64]bool{6: true})

	ids := []string{}
	for _, c := range thread {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"2", "4", "3", "1"}, ids)

	replies := thread[3].Replies
	require.Len(t, replies, 2)
	require.Equal(t, "6", replies[0].ID)
	require.True(t, replies[0].LikedByMe)
	require.Equal(t, "5", replies[1].ID)
	require.False(t, replies[1].LikedByMe)
	require.Equal(t, "alice", replies[0].User.Username)

	require.Empty(t, BuildThread(nil, users, nil))
}
