package domain

import (
	"testing"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_challengeDomain_Get(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	participationRepo := repository.NewParticipationRepository()

	for _, p := range []entity.Participation{
		{
			Base:        entity.Base{ID: "p1"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      testutil.User1.ID,
			Progress:    100,
			Status:      entity.ParticipationCompleted,
		},
		{
			Base:        entity.Base{ID: "p2"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      testutil.User2.ID,
			Progress:    50,
			Status:      entity.ParticipationActive,
		},
		{
			Base:        entity.Base{ID: "p3"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      testutil.User3.ID,
			Progress:    30,
			Status:      entity.ParticipationAbandoned,
		},
	} {
		p := p
		require.NoError(t, participationRepo.Create(ctx, &p))
	}

	d := NewChallengeDomain(repository.NewChallengeRepository(), participationRepo)

	resp, err := d.Get(ctx, &model.GetChallengeRequest{ChallengeID: testutil.Challenge1.ID})
	require.NoError(t, err)
	require.Equal(t, testutil.Challenge1.Title, resp.Challenge.Title)
	require.Equal(t, []string{"reading"}, resp.Challenge.Tags)
	require.Equal(t, model.ChallengeStats{
		ParticipantCount: 3,
		CompletedCount:   1,
		AverageProgress:  60,
	}, resp.Challenge.Stats)

	resp, err = d.Get(ctx, &model.GetChallengeRequest{ChallengeID: testutil.Challenge2.ID})
	require.NoError(t, err)
	require.Equal(t, model.ChallengeStats{}, resp.Challenge.Stats)

	_, err = d.Get(ctx, &model.GetChallengeRequest{ChallengeID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))
}
