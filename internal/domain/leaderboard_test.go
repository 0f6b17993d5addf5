package domain

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/habit/internal/domain/statistic"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newLeaderboardDomain(t *testing.T, ctx context.Context) *leaderboardDomain {
	redisClient, _ := testutil.NewMiniRedisClient(t, ctx)
	participationRepo := repository.NewParticipationRepository()

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, p := range []entity.Participation{
		{
			Base:        entity.Base{ID: "p1"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      testutil.User1.ID,
			Status:      entity.ParticipationActive,
			Progress:    90,
			StartedAt:   start.Add(time.Hour),
		},
		{
			Base:        entity.Base{ID: "p2"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      testutil.User2.ID,
			Status:      entity.ParticipationActive,
			Progress:    90,
			StartedAt:   start,
		},
		{
			Base:        entity.Base{ID: "p3"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      testutil.User3.ID,
			Status:      entity.ParticipationActive,
			Progress:    70,
			StartedAt:   start,
		},
	} {
		p := p
		require.NoError(t, participationRepo.Create(ctx, &p))
	}

	return NewLeaderboardDomain(
		repository.NewChallengeRepository(),
		repository.NewUserRepository(),
		statistic.New(participationRepo, repository.NewRankSnapshotRepository(redisClient)),
	)
}

func Test_leaderboardDomain_GetLeaderboard(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	d := newLeaderboardDomain(t, ctx)

	resp, err := d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{
		Type:        "challenge",
		ChallengeID: testutil.Challenge1.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Standings, 3)

	// Equal scores are ordered by the earliest start.
	require.Equal(t, testutil.User2.ID, resp.Standings[0].User.ID)
	require.Equal(t, "bob", resp.Standings[0].User.Username)
	require.Equal(t, 1, resp.Standings[0].Rank)
	require.Equal(t, float64(90), resp.Standings[0].Score)
	require.Equal(t, testutil.User1.ID, resp.Standings[1].User.ID)
	require.Equal(t, 2, resp.Standings[1].Rank)
	require.Equal(t, testutil.User3.ID, resp.Standings[2].User.ID)
	require.Equal(t, 3, resp.Standings[2].Rank)

	resp, err = d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Standings, 1)
	require.Equal(t, testutil.User2.ID, resp.Standings[0].User.ID)
	require.Equal(t, float64(90), resp.Standings[0].Score)
}

func Test_leaderboardDomain_Invalid(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	d := newLeaderboardDomain(t, ctx)

	testCases := []struct {
		name    string
		req     *model.GetLeaderboardRequest
		wantErr errorx.Code
	}{
		{
			name:    "invalid type",
			req:     &model.GetLeaderboardRequest{Type: "weekly"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "challenge board without challenge",
			req:     &model.GetLeaderboardRequest{Type: "challenge"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "unknown challenge",
			req:     &model.GetLeaderboardRequest{Type: "challenge", ChallengeID: "unknown"},
			wantErr: errorx.NotFound,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.GetLeaderboard(ctx, tt.req)
			require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func Test_leaderboardDomain_GetMyRank(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	d := newLeaderboardDomain(t, ctx)

	resp, err := d.GetMyRank(ctx, &model.GetMyRankRequest{Type: "streak"})
	require.NoError(t, err)
	require.NotNil(t, resp.Standing)

	resp, err = d.GetMyRank(ctx, &model.GetMyRankRequest{
		Type:        "challenge",
		ChallengeID: testutil.Challenge1.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Standing)
	require.Equal(t, 2, resp.Standing.Rank)
	require.Equal(t, "alice", resp.Standing.User.Username)

	// Users who never joined are not on the board.
	daveCtx := testutil.WithUserID(ctx, testutil.User4.ID)
	resp, err = d.GetMyRank(daveCtx, &model.GetMyRankRequest{
		Type:        "challenge",
		ChallengeID: testutil.Challenge1.ID,
	})
	require.NoError(t, err)
	require.Nil(t, resp.Standing)
}
