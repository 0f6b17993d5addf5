package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Relation of another user as seen by the requesting user.
type Relation string

const (
	RelationNone            Relation = "none"
	RelationRequestSent     Relation = "request_sent"
	RelationRequestReceived Relation = "request_received"
	RelationFriends         Relation = "friends"
	RelationSelf            Relation = "self"
)

const maxFriendRequestMessage = 500

type FriendDomain interface {
	SendRequest(context.Context, *model.SendFriendRequestRequest) (*model.SendFriendRequestResponse, error)
	AcceptRequest(context.Context, *model.AcceptFriendRequestRequest) (*model.AcceptFriendRequestResponse, error)
	RejectRequest(context.Context, *model.RejectFriendRequestRequest) (*model.RejectFriendRequestResponse, error)
	CancelRequest(context.Context, *model.CancelFriendRequestRequest) (*model.CancelFriendRequestResponse, error)
	RemoveFriend(context.Context, *model.RemoveFriendRequest) (*model.RemoveFriendResponse, error)
	GetFriends(context.Context, *model.GetFriendsRequest) (*model.GetFriendsResponse, error)
	GetPendingRequests(context.Context, *model.GetPendingFriendRequestsRequest) (*model.GetPendingFriendRequestsResponse, error)
	GetSuggestions(context.Context, *model.GetFriendSuggestionsRequest) (*model.GetFriendSuggestionsResponse, error)
	GetRelation(context.Context, *model.GetRelationRequest) (*model.GetRelationResponse, error)
}

type friendDomain struct {
	userRepo          repository.UserRepository
	friendRequestRepo repository.FriendRequestRepository
	friendshipRepo    repository.FriendshipRepository
	notifier          realtime.Notifier
}

func NewFriendDomain(
	userRepo repository.UserRepository,
	friendRequestRepo repository.FriendRequestRepository,
	friendshipRepo repository.FriendshipRepository,
	notifier realtime.Notifier,
) *friendDomain {
	return &friendDomain{
		userRepo:          userRepo,
		friendRequestRepo: friendRequestRepo,
		friendshipRepo:    friendshipRepo,
		notifier:          notifier,
	}
}

func (d *friendDomain) SendRequest(
	ctx context.Context, req *model.SendFriendRequestRequest,
) (*model.SendFriendRequestResponse, error) {
	senderID := xcontext.RequestUserID(ctx)
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a user")
	}

	if req.UserID == senderID {
		return nil, errorx.New(errorx.InvalidTarget, "Cannot send a friend request to yourself")
	}

	if len(req.Message) > maxFriendRequestMessage {
		return nil, errorx.New(errorx.BadRequest, "Message is too long")
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	areFriends, err := d.friendshipRepo.Exists(ctx, senderID, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check friendship: %v", err)
		return nil, errorx.Unknown
	}

	if areFriends {
		return nil, errorx.New(errorx.AlreadyFriends, "You are already friends")
	}

	if err := d.ensureNoPending(ctx, senderID, req.UserID); err != nil {
		return nil, err
	}

	request := &entity.FriendRequest{
		Base:        entity.Base{ID: uuid.NewString()},
		SenderID:    senderID,
		RecipientID: req.UserID,
		Status:      entity.FriendRequestPending,
		Message:     req.Message,
		PendingKey:  sql.NullString{String: entity.PairKey(senderID, req.UserID), Valid: true},
	}

	if err := d.friendRequestRepo.Create(ctx, request); err != nil {
		// Lost a race against another request of the same pair.
		if err := d.ensureNoPending(ctx, senderID, req.UserID); err != nil {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot create friend request: %v", err)
		return nil, errorx.Unknown
	}

	clientRequest, err := d.convertRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	d.notifyRequest(ctx, request, clientRequest)
	return &model.SendFriendRequestResponse{Request: clientRequest}, nil
}

func (d *friendDomain) ensureNoPending(ctx context.Context, a, b string) error {
	_, err := d.friendRequestRepo.GetPendingBetween(ctx, a, b)
	if err == nil {
		return errorx.New(errorx.DuplicateRequest, "A pending friend request already exists")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get pending friend request: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *friendDomain) AcceptRequest(
	ctx context.Context, req *model.AcceptFriendRequestRequest,
) (*model.AcceptFriendRequestResponse, error) {
	request, err := d.respond(ctx, req.RequestID, entity.FriendRequestAccepted)
	if err != nil {
		return nil, err
	}

	clientRequest, err := d.convertRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	d.notifyRequest(ctx, request, clientRequest)
	d.notifier.Notify(ctx, realtime.NewEvent(
		realtime.FriendshipEntity, entity.PairKey(request.SenderID, request.RecipientID),
		request.RespondedAt.Time, nil,
	).WithUsers(request.SenderID, request.RecipientID))

	return &model.AcceptFriendRequestResponse{Request: clientRequest}, nil
}

func (d *friendDomain) RejectRequest(
	ctx context.Context, req *model.RejectFriendRequestRequest,
) (*model.RejectFriendRequestResponse, error) {
	request, err := d.respond(ctx, req.RequestID, entity.FriendRequestRejected)
	if err != nil {
		return nil, err
	}

	clientRequest, err := d.convertRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	d.notifyRequest(ctx, request, clientRequest)
	return &model.RejectFriendRequestResponse{Request: clientRequest}, nil
}

// respond resolves a pending request addressed to the requesting user. Accepting creates the
// friendship in the same transaction.
func (d *friendDomain) respond(
	ctx context.Context, requestID string, status entity.FriendRequestStatus,
) (*entity.FriendRequest, error) {
	if requestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a request")
	}

	request, err := d.friendRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found friend request")
		}

		xcontext.Logger(ctx).Errorf("Cannot get friend request: %v", err)
		return nil, errorx.Unknown
	}

	if request.RecipientID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the recipient can respond to the request")
	}

	if request.Status != entity.FriendRequestPending {
		return nil, errorx.New(errorx.AlreadyResolved, "The request was already %s", request.Status)
	}

	now := time.Now()
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.friendRequestRepo.Resolve(ctx, request.ID, status, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyResolved, "The request was already resolved")
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve friend request: %v", err)
		return nil, errorx.Unknown
	}

	if status == entity.FriendRequestAccepted {
		if err := d.friendshipRepo.Create(ctx, request.SenderID, request.RecipientID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create friendship: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit friend request resolution: %v", err)
		return nil, errorx.Unknown
	}

	request.Status = status
	request.PendingKey = sql.NullString{}
	request.RespondedAt = sql.NullTime{Time: now, Valid: true}
	request.UpdatedAt = now
	return request, nil
}

func (d *friendDomain) CancelRequest(
	ctx context.Context, req *model.CancelFriendRequestRequest,
) (*model.CancelFriendRequestResponse, error) {
	if req.RequestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a request")
	}

	request, err := d.friendRequestRepo.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found friend request")
		}

		xcontext.Logger(ctx).Errorf("Cannot get friend request: %v", err)
		return nil, errorx.Unknown
	}

	if request.SenderID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the sender can cancel the request")
	}

	if err := d.friendRequestRepo.DeletePending(ctx, request.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyResolved, "The request was already resolved")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete friend request: %v", err)
		return nil, errorx.Unknown
	}

	d.notifier.Notify(ctx, realtime.NewDeleteEvent(realtime.FriendRequestEntity, request.ID, time.Now()).
		WithUsers(request.SenderID, request.RecipientID))

	return &model.CancelFriendRequestResponse{}, nil
}

func (d *friendDomain) RemoveFriend(
	ctx context.Context, req *model.RemoveFriendRequest,
) (*model.RemoveFriendResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	if req.UserID == "" || req.UserID == requestUserID {
		return nil, errorx.New(errorx.InvalidTarget, "Invalid friend")
	}

	if err := d.friendshipRepo.Delete(ctx, requestUserID, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "You are not friends")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete friendship: %v", err)
		return nil, errorx.Unknown
	}

	d.notifier.Notify(ctx, realtime.NewDeleteEvent(
		realtime.FriendshipEntity, entity.PairKey(requestUserID, req.UserID), time.Now(),
	).WithUsers(requestUserID, req.UserID))

	return &model.RemoveFriendResponse{}, nil
}

func (d *friendDomain) GetFriends(
	ctx context.Context, req *model.GetFriendsRequest,
) (*model.GetFriendsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	friendIDs, err := common.RetryRead(ctx, func() ([]string, error) {
		return d.friendshipRepo.GetFriendIDs(ctx, userID)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get friends: %v", err)
		return nil, errorx.Unknown
	}

	users, err := getUserMap(ctx, d.userRepo, friendIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	friends := []model.User{}
	for _, id := range friendIDs {
		friends = append(friends, model.ConvertShortUser(id, users))
	}

	return &model.GetFriendsResponse{Friends: friends}, nil
}

func (d *friendDomain) GetPendingRequests(
	ctx context.Context, req *model.GetPendingFriendRequestsRequest,
) (*model.GetPendingFriendRequestsResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	requests, err := common.RetryRead(ctx, func() ([]entity.FriendRequest, error) {
		return d.friendRequestRepo.GetPendingByUserID(ctx, requestUserID)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending friend requests: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := []string{}
	for _, r := range requests {
		userIDs = append(userIDs, r.SenderID, r.RecipientID)
	}

	users, err := getUserMap(ctx, d.userRepo, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetPendingFriendRequestsResponse{
		Incoming: []model.FriendRequest{},
		Outgoing: []model.FriendRequest{},
	}
	for i := range requests {
		r := model.ConvertFriendRequest(&requests[i], users)
		if requests[i].RecipientID == requestUserID {
			resp.Incoming = append(resp.Incoming, r)
		} else {
			resp.Outgoing = append(resp.Outgoing, r)
		}
	}

	return resp, nil
}

// GetSuggestions proposes friends of friends ordered by the number of mutual friends, then other
// users. Friends, the requesting user and users having a pending request with them are excluded.
func (d *friendDomain) GetSuggestions(
	ctx context.Context, req *model.GetFriendSuggestionsRequest,
) (*model.GetFriendSuggestionsResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	apiCfg := xcontext.Configs(ctx).ApiServer
	limit := common.ClampLimit(req.Limit, apiCfg.DefaultLimit, apiCfg.MaxLimit)

	friendIDs, err := d.friendshipRepo.GetFriendIDs(ctx, requestUserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get friends: %v", err)
		return nil, errorx.Unknown
	}

	pending, err := d.friendRequestRepo.GetPendingByUserID(ctx, requestUserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending friend requests: %v", err)
		return nil, errorx.Unknown
	}

	excluded := map[string]bool{requestUserID: true}
	for _, id := range friendIDs {
		excluded[id] = true
	}
	for _, r := range pending {
		excluded[r.SenderID] = true
		excluded[r.RecipientID] = true
	}

	friendsOfFriends, err := d.friendshipRepo.GetByUserIDs(ctx, friendIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get friends of friends: %v", err)
		return nil, errorx.Unknown
	}

	mutual := map[string]int{}
	for _, f := range friendsOfFriends {
		if !excluded[f.FriendID] {
			mutual[f.FriendID]++
		}
	}

	candidateIDs := maps.Keys(mutual)
	users, err := getUserMap(ctx, d.userRepo, candidateIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	suggestions := []model.FriendSuggestion{}
	for _, id := range candidateIDs {
		if u, ok := users[id]; ok {
			suggestions = append(suggestions, model.FriendSuggestion{
				User:          model.ConvertUser(&u),
				MutualFriends: mutual[id],
			})
		}
	}

	// Fill with other users when friends of friends are not enough.
	if len(suggestions) < limit {
		others, err := d.userRepo.GetList(ctx, 0, limit+len(excluded)+len(suggestions))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
			return nil, errorx.Unknown
		}

		for _, u := range others {
			if excluded[u.ID] || mutual[u.ID] > 0 {
				continue
			}
			suggestions = append(suggestions, model.FriendSuggestion{User: model.ConvertUser(&u)})
		}
	}

	slices.SortFunc(suggestions, func(a, b model.FriendSuggestion) bool {
		if a.MutualFriends != b.MutualFriends {
			return a.MutualFriends > b.MutualFriends
		}
		return a.User.Username < b.User.Username
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return &model.GetFriendSuggestionsResponse{Suggestions: suggestions}, nil
}

func (d *friendDomain) GetRelation(
	ctx context.Context, req *model.GetRelationRequest,
) (*model.GetRelationResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a user")
	}

	if req.UserID == requestUserID {
		return &model.GetRelationResponse{Relation: string(RelationSelf)}, nil
	}

	areFriends, err := common.RetryRead(ctx, func() (bool, error) {
		return d.friendshipRepo.Exists(ctx, requestUserID, req.UserID)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check friendship: %v", err)
		return nil, errorx.Unknown
	}

	if areFriends {
		return &model.GetRelationResponse{Relation: string(RelationFriends)}, nil
	}

	pending, err := d.friendRequestRepo.GetPendingBetween(ctx, requestUserID, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetRelationResponse{Relation: string(RelationNone)}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get pending friend request: %v", err)
		return nil, errorx.Unknown
	}

	relation := RelationRequestReceived
	if pending.SenderID == requestUserID {
		relation = RelationRequestSent
	}

	return &model.GetRelationResponse{Relation: string(relation), RequestID: pending.ID}, nil
}

func (d *friendDomain) convertRequest(ctx context.Context, request *entity.FriendRequest) (model.FriendRequest, error) {
	users, err := getUserMap(ctx, d.userRepo, []string{request.SenderID, request.RecipientID})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return model.FriendRequest{}, errorx.Unknown
	}

	return model.ConvertFriendRequest(request, users), nil
}

func (d *friendDomain) notifyRequest(ctx context.Context, request *entity.FriendRequest, client model.FriendRequest) {
	d.notifier.Notify(ctx, realtime.NewEvent(realtime.FriendRequestEntity, request.ID, request.UpdatedAt, client).
		WithUsers(request.SenderID, request.RecipientID))
}
