package repository

import (
	"context"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
)

type ChallengeRepository interface {
	Create(ctx context.Context, data *entity.Challenge) error
	GetByID(ctx context.Context, id string) (*entity.Challenge, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Challenge, error)
}

type challengeRepository struct{}

func NewChallengeRepository() *challengeRepository {
	return &challengeRepository{}
}

func (r *challengeRepository) Create(ctx context.Context, data *entity.Challenge) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *challengeRepository) GetByID(ctx context.Context, id string) (*entity.Challenge, error) {
	var result entity.Challenge
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *challengeRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Challenge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.Challenge
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
