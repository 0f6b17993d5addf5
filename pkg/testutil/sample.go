package testutil

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
)

// SampleUser creates a new user in database with randomized fields. The sample can be
// overwritten by non-zero fields of init.
func SampleUser(ctx context.Context, init *entity.User) (entity.User, error) {
	id := uuid.NewString()
	sample := &entity.User{
		Base:        entity.Base{ID: id},
		Username:    "user_" + id[:8],
		DisplayName: "User " + id[:8],
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewUserRepository().Upsert(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SampleChallenge creates a new challenge in database with randomized fields. The sample can be
// overwritten by non-zero fields of init.
func SampleChallenge(ctx context.Context, init *entity.Challenge) (entity.Challenge, error) {
	id := uuid.NewString()
	sample := &entity.Challenge{
		Base:         entity.Base{ID: id},
		Title:        "Challenge " + id[:8],
		DurationDays: 7,
		PointsReward: 70,
		Difficulty:   entity.DifficultyMedium,
		CreatedBy:    User1.ID,
		IsPublic:     true,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewChallengeRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		if !overwriteValue.Field(i).IsZero() {
			originValue.Field(i).Set(overwriteValue.Field(i))
		}
	}
}
