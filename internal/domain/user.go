package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/domain/search"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	Get(context.Context, *model.GetUserRequest) (*model.GetUserResponse, error)
	Search(context.Context, *model.SearchUsersRequest) (*model.SearchUsersResponse, error)

	// Sync stores the profile carried by an access token, users are owned by the authentication
	// service.
	Sync(context.Context, *model.AccessToken) error

	// BuildIndex indexes every user.
	BuildIndex(context.Context) error
}

type userDomain struct {
	userRepo repository.UserRepository
	indexer  search.Indexer
}

func NewUserDomain(userRepo repository.UserRepository, indexer search.Indexer) *userDomain {
	return &userDomain{userRepo: userRepo, indexer: indexer}
}

func (d *userDomain) Get(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	user, err := common.RetryRead(ctx, func() (*entity.User, error) {
		return d.userRepo.GetByID(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetUserResponse{User: model.ConvertUser(user)}, nil
}

func (d *userDomain) Search(ctx context.Context, req *model.SearchUsersRequest) (*model.SearchUsersResponse, error) {
	q := strings.TrimSpace(req.Q)
	if q == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a query")
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	limit := common.ClampLimit(req.Limit, apiCfg.DefaultLimit, apiCfg.MaxLimit)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := d.search(ctx, q, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot search users: %v", err)
		return nil, errorx.Unknown
	}

	requestUserID := xcontext.RequestUserID(ctx)
	result := []model.User{}
	for _, u := range users {
		if u.ID == requestUserID {
			continue
		}
		result = append(result, model.ConvertUser(&u))
	}

	return &model.SearchUsersResponse{Users: result}, nil
}

// search uses the index and falls back to the database when the index fails.
func (d *userDomain) search(ctx context.Context, q string, offset, limit int) ([]entity.User, error) {
	if d.indexer != nil {
		ids, err := d.indexer.SearchUsers(q, offset, limit)
		if err == nil {
			return d.getOrdered(ctx, ids)
		}

		xcontext.Logger(ctx).Warnf("Cannot search users in index, use database instead: %v", err)
	}

	return common.RetryRead(ctx, func() ([]entity.User, error) {
		return d.userRepo.Search(ctx, q, offset, limit)
	})
}

func (d *userDomain) getOrdered(ctx context.Context, ids []string) ([]entity.User, error) {
	users, err := common.RetryRead(ctx, func() ([]entity.User, error) {
		return d.userRepo.GetByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	userMap := common.ToMap(users, func(u entity.User) string { return u.ID })
	result := []entity.User{}
	for _, id := range ids {
		if u, ok := userMap[id]; ok {
			result = append(result, u)
		}
	}

	return result, nil
}

func (d *userDomain) Sync(ctx context.Context, token *model.AccessToken) error {
	if token.ID == "" || token.Username == "" {
		return errorx.New(errorx.BadRequest, "Incomplete user profile")
	}

	user := &entity.User{
		Base:        entity.Base{ID: token.ID},
		Username:    token.Username,
		DisplayName: token.DisplayName,
		AvatarURL:   token.AvatarURL,
	}

	if err := d.userRepo.Upsert(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert user: %v", err)
		return errorx.Unknown
	}

	if d.indexer != nil {
		err := d.indexer.IndexUser(user.ID, search.UserData{
			Username:    user.Username,
			DisplayName: user.DisplayName,
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot index user %s: %v", user.ID, err)
		}
	}

	return nil
}

func (d *userDomain) BuildIndex(ctx context.Context) error {
	if d.indexer == nil {
		return nil
	}

	const batchSize = 500
	for offset := 0; ; offset += batchSize {
		users, err := d.userRepo.GetList(ctx, offset, batchSize)
		if err != nil {
			return err
		}

		for _, u := range users {
			err := d.indexer.IndexUser(u.ID, search.UserData{
				Username:    u.Username,
				DisplayName: u.DisplayName,
				Bio:         u.Bio,
			})
			if err != nil {
				return err
			}
		}

		if len(users) < batchSize {
			xcontext.Logger(ctx).Infof("Indexed %d users", offset+len(users))
			return nil
		}
	}
}

// getUserMap loads users of ids, missing users are absent from the map.
func getUserMap(ctx context.Context, userRepo repository.UserRepository, ids []string) (map[string]entity.User, error) {
	users, err := common.RetryRead(ctx, func() ([]entity.User, error) {
		return userRepo.GetByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	return common.ToMap(users, func(u entity.User) string { return u.ID }), nil
}
