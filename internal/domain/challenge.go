package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/domain/statistic"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

type ChallengeDomain interface {
	Get(context.Context, *model.GetChallengeRequest) (*model.GetChallengeResponse, error)
}

type challengeDomain struct {
	challengeRepo     repository.ChallengeRepository
	participationRepo repository.ParticipationRepository
}

func NewChallengeDomain(
	challengeRepo repository.ChallengeRepository,
	participationRepo repository.ParticipationRepository,
) *challengeDomain {
	return &challengeDomain{
		challengeRepo:     challengeRepo,
		participationRepo: participationRepo,
	}
}

func (d *challengeDomain) Get(
	ctx context.Context, req *model.GetChallengeRequest,
) (*model.GetChallengeResponse, error) {
	challenge, err := getChallenge(ctx, d.challengeRepo, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	participations, err := common.RetryRead(ctx, func() ([]entity.Participation, error) {
		return d.participationRepo.GetList(ctx, repository.ParticipationFilter{ChallengeID: challenge.ID})
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participations: %v", err)
		return nil, errorx.Unknown
	}

	stats := statistic.Aggregate(participations)
	return &model.GetChallengeResponse{
		Challenge: model.ConvertChallenge(challenge, model.ChallengeStats{
			ParticipantCount: stats.ParticipantCount,
			CompletedCount:   stats.CompletedCount,
			AverageProgress:  stats.AverageProgress,
		}),
	}, nil
}

func getChallenge(
	ctx context.Context, challengeRepo repository.ChallengeRepository, id string,
) (*entity.Challenge, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a challenge")
	}

	challenge, err := common.RetryRead(ctx, func() (*entity.Challenge, error) {
		return challengeRepo.GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return nil, errorx.Unknown
	}

	return challenge, nil
}
