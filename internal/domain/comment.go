package domain

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/idutil"
	"github.com/questx-lab/habit/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type CommentDomain interface {
	Post(context.Context, *model.PostCommentRequest) (*model.PostCommentResponse, error)
	ToggleLike(context.Context, *model.ToggleLikeRequest) (*model.ToggleLikeResponse, error)
	TogglePin(context.Context, *model.TogglePinRequest) (*model.TogglePinResponse, error)
	Delete(context.Context, *model.DeleteCommentRequest) (*model.DeleteCommentResponse, error)
	GetThread(context.Context, *model.GetCommentsRequest) (*model.GetCommentsResponse, error)
}

type commentDomain struct {
	challengeRepo   repository.ChallengeRepository
	commentRepo     repository.CommentRepository
	commentLikeRepo repository.CommentLikeRepository
	userRepo        repository.UserRepository
	idGenerator     idutil.Generator
	notifier        realtime.Notifier
}

func NewCommentDomain(
	challengeRepo repository.ChallengeRepository,
	commentRepo repository.CommentRepository,
	commentLikeRepo repository.CommentLikeRepository,
	userRepo repository.UserRepository,
	idGenerator idutil.Generator,
	notifier realtime.Notifier,
) *commentDomain {
	return &commentDomain{
		challengeRepo:   challengeRepo,
		commentRepo:     commentRepo,
		commentLikeRepo: commentLikeRepo,
		userRepo:        userRepo,
		idGenerator:     idGenerator,
		notifier:        notifier,
	}
}

func (d *commentDomain) Post(
	ctx context.Context, req *model.PostCommentRequest,
) (*model.PostCommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.EmptyContent, "Comment must not be empty")
	}

	maxLength := xcontext.Configs(ctx).Comment.MaxLength
	if maxLength > 0 && utf8.RuneCountInString(content) > maxLength {
		return nil, errorx.New(errorx.BadRequest, "Comment is longer than %d characters", maxLength)
	}

	challenge, err := getChallenge(ctx, d.challengeRepo, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		SnowFlakeBase: entity.SnowFlakeBase{ID: d.idGenerator.Generate().Int64()},
		ChallengeID:   challenge.ID,
		UserID:        xcontext.RequestUserID(ctx),
		Content:       content,
	}

	if req.ParentID != "" {
		parent, err := d.getParent(ctx, req.ParentID, challenge.ID)
		if err != nil {
			return nil, err
		}

		comment.ParentID = sql.NullInt64{Int64: parent.ID, Valid: true}
	}

	if err := d.commentRepo.Create(ctx, comment); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create comment: %v", err)
		return nil, errorx.Unknown
	}

	users, err := getUserMap(ctx, d.userRepo, []string{comment.UserID})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.PostCommentResponse{}
	var record any
	if comment.ParentID.Valid {
		reply := model.ConvertReply(comment, users, false)
		resp.Reply = &reply
		record = reply
	} else {
		topLevel := model.ConvertTopLevelComment(comment, users, false, nil)
		resp.Comment = &topLevel
		record = topLevel
	}

	d.notifier.Notify(ctx, realtime.NewEvent(
		realtime.CommentEntity, strconv.FormatInt(comment.ID, 10), comment.UpdatedAt, record).
		WithChallenge(comment.ChallengeID))

	return resp, nil
}

// getParent accepts only a top-level comment of the same challenge, so threads never nest deeper
// than one reply level.
func (d *commentDomain) getParent(ctx context.Context, parentID, challengeID string) (*entity.Comment, error) {
	id, err := strconv.ParseInt(parentID, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.InvalidParent, "Invalid parent comment")
	}

	parent, err := d.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidParent, "Not found parent comment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get parent comment: %v", err)
		return nil, errorx.Unknown
	}

	if parent.ChallengeID != challengeID {
		return nil, errorx.New(errorx.InvalidParent, "Parent comment belongs to another challenge")
	}

	if parent.ParentID.Valid {
		return nil, errorx.New(errorx.InvalidParent, "Cannot reply to a reply")
	}

	return parent, nil
}

func (d *commentDomain) ToggleLike(
	ctx context.Context, req *model.ToggleLikeRequest,
) (*model.ToggleLikeResponse, error) {
	comment, err := d.getComment(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	unliked, err := d.commentLikeRepo.Delete(txCtx, comment.ID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comment like: %v", err)
		return nil, errorx.Unknown
	}

	if !unliked {
		err := d.commentLikeRepo.Create(txCtx, &entity.CommentLike{CommentID: comment.ID, UserID: userID})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create comment like: %v", err)
			return nil, errorx.Unknown
		}
	}

	// The counter is the size of the like set, concurrent toggles cannot make it drift.
	count, err := d.commentLikeRepo.Count(txCtx, comment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count comment likes: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.commentRepo.UpdateLikesCount(txCtx, comment.ID, count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update likes count: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit like: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.ToggleLikeResponse{Liked: !unliked, LikesCount: int(count)}
	commentID := strconv.FormatInt(comment.ID, 10)
	d.notifier.Notify(ctx, realtime.NewEvent(realtime.CommentLikeEntity, commentID, time.Now(), struct {
		CommentID  string `json:"comment_id"`
		UserID     string `json:"user_id"`
		Liked      bool   `json:"liked"`
		LikesCount int    `json:"likes_count"`
	}{commentID, userID, resp.Liked, resp.LikesCount}).WithChallenge(comment.ChallengeID).WithUsers(userID))

	return resp, nil
}

func (d *commentDomain) TogglePin(
	ctx context.Context, req *model.TogglePinRequest,
) (*model.TogglePinResponse, error) {
	comment, err := d.getComment(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	challenge, err := getChallenge(ctx, d.challengeRepo, comment.ChallengeID)
	if err != nil {
		return nil, err
	}

	if challenge.CreatedBy != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the challenge creator can pin comments")
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.commentRepo.TogglePinned(txCtx, comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found comment")
		}

		xcontext.Logger(ctx).Errorf("Cannot toggle pinned: %v", err)
		return nil, errorx.Unknown
	}

	toggled, err := d.commentRepo.GetByID(txCtx, comment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get comment: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit pin: %v", err)
		return nil, errorx.Unknown
	}

	// A pin changes the order of the thread, subscribers refetch it.
	d.notifier.Notify(ctx, realtime.NewEvent(realtime.CommentEntity, strconv.FormatInt(comment.ID, 10), time.Now(), nil).
		WithChallenge(comment.ChallengeID))

	return &model.TogglePinResponse{IsPinned: toggled.IsPinned}, nil
}

func (d *commentDomain) Delete(
	ctx context.Context, req *model.DeleteCommentRequest,
) (*model.DeleteCommentResponse, error) {
	comment, err := d.getComment(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	requestUserID := xcontext.RequestUserID(ctx)
	if comment.UserID != requestUserID {
		challenge, err := getChallenge(ctx, d.challengeRepo, comment.ChallengeID)
		if err != nil {
			return nil, err
		}

		if challenge.CreatedBy != requestUserID {
			return nil, errorx.New(errorx.PermissionDenied, "Only the author or the challenge creator can delete it")
		}
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	// Replies are read in the transaction so a reply posted meanwhile goes with its parent.
	replyIDs, err := d.commentRepo.GetReplyIDs(txCtx, comment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get replies: %v", err)
		return nil, errorx.Unknown
	}
	ids := append([]int64{comment.ID}, replyIDs...)

	if err := d.commentLikeRepo.DeleteByThread(txCtx, comment.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comment likes: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.commentRepo.DeleteThread(txCtx, comment.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comments: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit comment deletion: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	for _, id := range ids {
		d.notifier.Notify(ctx, realtime.NewDeleteEvent(realtime.CommentEntity, strconv.FormatInt(id, 10), now).
			WithChallenge(comment.ChallengeID))
	}

	return &model.DeleteCommentResponse{}, nil
}

// GetThread returns top-level comments, pinned first and newest first in each group, with their
// replies oldest first.
func (d *commentDomain) GetThread(
	ctx context.Context, req *model.GetCommentsRequest,
) (*model.GetCommentsResponse, error) {
	challenge, err := getChallenge(ctx, d.challengeRepo, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	comments, err := common.RetryRead(ctx, func() ([]entity.Comment, error) {
		return d.commentRepo.GetListByChallengeID(ctx, challenge.ID)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get comments: %v", err)
		return nil, errorx.Unknown
	}

	commentIDs := []int64{}
	userIDs := []string{}
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		userIDs = append(userIDs, c.UserID)
	}

	users, err := getUserMap(ctx, d.userRepo, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	likedIDs, err := common.RetryRead(ctx, func() ([]int64, error) {
		return d.commentLikeRepo.GetLikedCommentIDs(ctx, xcontext.RequestUserID(ctx), commentIDs)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get liked comments: %v", err)
		return nil, errorx.Unknown
	}

	liked := map[int64]bool{}
	for _, id := range likedIDs {
		liked[id] = true
	}

	return &model.GetCommentsResponse{Comments: BuildThread(comments, users, liked)}, nil
}

// BuildThread groups replies under their parent. Replies of a missing parent are dropped.
func BuildThread(comments []entity.Comment, users map[string]entity.User, liked map[int64]bool) []model.TopLevelComment {
	var topLevels []entity.Comment
	replies := map[int64][]entity.Comment{}
	for _, c := range comments {
		if c.ParentID.Valid {
			replies[c.ParentID.Int64] = append(replies[c.ParentID.Int64], c)
		} else {
			topLevels = append(topLevels, c)
		}
	}

	slices.SortStableFunc(topLevels, func(a, b entity.Comment) bool {
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return newer(a, b)
	})

	thread := []model.TopLevelComment{}
	for i := range topLevels {
		children := replies[topLevels[i].ID]
		slices.SortStableFunc(children, func(a, b entity.Comment) bool { return newer(b, a) })

		clientReplies := []model.Reply{}
		for j := range children {
			clientReplies = append(clientReplies, model.ConvertReply(&children[j], users, liked[children[j].ID]))
		}

		thread = append(thread, model.ConvertTopLevelComment(
			&topLevels[i], users, liked[topLevels[i].ID], clientReplies))
	}

	return thread
}

// newer orders by creation time, snowflake ids break ties since they grow with time.
func newer(a, b entity.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (d *commentDomain) getComment(ctx context.Context, commentID string) (*entity.Comment, error) {
	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid comment id")
	}

	comment, err := common.RetryRead(ctx, func() (*entity.Comment, error) {
		return d.commentRepo.GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found comment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get comment: %v", err)
		return nil, errorx.Unknown
	}

	return comment, nil
}
