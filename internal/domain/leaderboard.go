package domain

import (
	"context"

	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/domain/statistic"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
)

type LeaderboardDomain interface {
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	GetMyRank(context.Context, *model.GetMyRankRequest) (*model.GetMyRankResponse, error)
}

type leaderboardDomain struct {
	challengeRepo repository.ChallengeRepository
	userRepo      repository.UserRepository
	leaderboard   statistic.Leaderboard
}

func NewLeaderboardDomain(
	challengeRepo repository.ChallengeRepository,
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
) *leaderboardDomain {
	return &leaderboardDomain{
		challengeRepo: challengeRepo,
		userRepo:      userRepo,
		leaderboard:   leaderboard,
	}
}

func (d *leaderboardDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	standings, err := d.getStandings(ctx, req.Type, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Leaderboard
	limit := common.ClampLimit(req.Limit, cfg.DefaultLimit, cfg.MaxLimit)
	if len(standings) > limit {
		standings = standings[:limit]
	}

	result, err := d.convertStandings(ctx, standings)
	if err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{Standings: result}, nil
}

// GetMyRank returns no standing when the caller is not on the board.
func (d *leaderboardDomain) GetMyRank(
	ctx context.Context, req *model.GetMyRankRequest,
) (*model.GetMyRankResponse, error) {
	standings, err := d.getStandings(ctx, req.Type, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	requestUserID := xcontext.RequestUserID(ctx)
	for _, s := range standings {
		if s.UserID != requestUserID {
			continue
		}

		result, err := d.convertStandings(ctx, []statistic.Standing{s})
		if err != nil {
			return nil, err
		}

		return &model.GetMyRankResponse{Standing: &result[0]}, nil
	}

	return &model.GetMyRankResponse{}, nil
}

func (d *leaderboardDomain) getStandings(
	ctx context.Context, boardType, challengeID string,
) ([]statistic.Standing, error) {
	t, err := statistic.ToLeaderboardType(boardType)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid leaderboard type")
	}

	board := entity.LeaderboardScope{Type: t}
	if t == entity.ChallengeLeaderboard {
		challenge, err := getChallenge(ctx, d.challengeRepo, challengeID)
		if err != nil {
			return nil, err
		}

		board.Scope = challenge.ID
	}

	return d.leaderboard.GetStandings(ctx, board)
}

func (d *leaderboardDomain) convertStandings(
	ctx context.Context, standings []statistic.Standing,
) ([]model.Standing, error) {
	userIDs := []string{}
	for _, s := range standings {
		userIDs = append(userIDs, s.UserID)
	}

	users, err := getUserMap(ctx, d.userRepo, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Standing{}
	for _, s := range standings {
		result = append(result, model.Standing{
			User:   model.ConvertShortUser(s.UserID, users),
			Score:  s.Score,
			Rank:   s.Rank,
			Change: s.Change,
		})
	}

	return result, nil
}
