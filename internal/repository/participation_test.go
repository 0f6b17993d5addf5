package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/questx-lab/habit/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParticipationRepository_UniquePerChallengeAndUser(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	repo := repository.NewParticipationRepository()

	require.NoError(t, repo.Create(ctx, &entity.Participation{
		Base:        entity.Base{ID: "p1"},
		ChallengeID: testutil.Challenge1.ID,
		UserID:      testutil.User1.ID,
		Status:      entity.ParticipationActive,
		StartedAt:   time.Now(),
	}))

	err := repo.Create(ctx, &entity.Participation{
		Base:        entity.Base{ID: "p2"},
		ChallengeID: testutil.Challenge1.ID,
		UserID:      testutil.User1.ID,
		Status:      entity.ParticipationActive,
		StartedAt:   time.Now(),
	})
	require.Error(t, err)

	list, err := repo.GetList(ctx, repository.ParticipationFilter{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, testutil.Challenge1.Title, list[0].Challenge.Title)
}

func TestParticipationRepository_CheckIn(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	repo := repository.NewParticipationRepository()

	require.NoError(t, repo.Create(ctx, &entity.Participation{
		Base:        entity.Base{ID: "p1"},
		ChallengeID: testutil.Challenge1.ID,
		UserID:      testutil.User1.ID,
		Status:      entity.ParticipationActive,
		StartedAt:   time.Now(),
	}))

	update := repository.CheckInUpdate{
		Progress:       10,
		Status:         entity.ParticipationActive,
		LastCheckIn:    time.Now(),
		LastCheckInDay: "2024-03-01",
		CheckInStreak:  1,
		LongestStreak:  1,
		CheckInCount:   1,
	}
	require.NoError(t, repo.CheckIn(ctx, "p1", "", update))

	// A second update based on the same previous day loses.
	err := repo.CheckIn(ctx, "p1", "", update)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 10.0, p.Progress)
	require.Equal(t, "2024-03-01", p.LastCheckInDay)
	require.True(t, p.LastCheckIn.Valid)

	require.NoError(t, repo.CreateCheckIn(ctx, &entity.CheckIn{ParticipationID: "p1", Day: "2024-03-01"}))
	require.Error(t, repo.CreateCheckIn(ctx, &entity.CheckIn{ParticipationID: "p1", Day: "2024-03-01"}))

	var checkIns int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.CheckIn{}).Where("participation_id=?", "p1").Count(&checkIns).Error)
	require.Equal(t, int64(1), checkIns)

	require.NoError(t, repo.Abandon(ctx, "p1"))
	require.True(t, errors.Is(repo.Abandon(ctx, "p1"), gorm.ErrRecordNotFound))

	// Abandoned participations never accept a check-in.
	err = repo.CheckIn(ctx, "p1", "2024-03-01", update)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
