package statistic

import (
	"testing"
	"time"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard_SnapshotAndChange(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User1.ID)
	redisClient, _ := testutil.NewMiniRedisClient(t, ctx)

	participationRepo := repository.NewParticipationRepository()
	l := New(participationRepo, repository.NewRankSnapshotRepository(redisClient))

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []entity.User{testutil.User1, testutil.User2, testutil.User3} {
		require.NoError(t, participationRepo.Create(ctx, &entity.Participation{
			Base:        entity.Base{ID: u.ID + "_p"},
			ChallengeID: testutil.Challenge1.ID,
			UserID:      u.ID,
			Status:      entity.ParticipationActive,
			Progress:    float64(10 * (i + 1)),
			StartedAt:   start.Add(time.Duration(i) * time.Hour),
		}))
	}

	board := entity.LeaderboardScope{Type: entity.ChallengeLeaderboard, Scope: testutil.Challenge1.ID}

	standings, err := l.GetStandings(ctx, board)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	require.Equal(t, testutil.User3.ID, standings[0].UserID)
	require.Equal(t, 0, standings[0].Change)

	require.NoError(t, l.Snapshot(ctx, board))

	// User1 overtakes everybody after the snapshot.
	update := repository.CheckInUpdate{
		Progress:       90,
		Status:         entity.ParticipationActive,
		LastCheckIn:    start,
		LastCheckInDay: "2024-03-01",
		CheckInStreak:  1,
		LongestStreak:  1,
		CheckInCount:   9,
	}
	require.NoError(t, participationRepo.CheckIn(ctx, testutil.User1.ID+"_p", "", update))

	standings, err = l.GetStandings(ctx, board)
	require.NoError(t, err)
	require.Equal(t, []Standing{
		{UserID: testutil.User1.ID, Score: 90, Rank: 1, Change: 2},
		{UserID: testutil.User3.ID, Score: 30, Rank: 2, Change: -1},
		{UserID: testutil.User2.ID, Score: 20, Rank: 3, Change: -1},
	}, standings)

	boards, err := l.Boards(ctx)
	require.NoError(t, err)
	require.Equal(t, []entity.LeaderboardScope{
		{Type: entity.GlobalLeaderboard},
		{Type: entity.StreakLeaderboard},
		board,
	}, boards)
}

func TestLeaderboard_ChallengeBoardRequiresScope(t *testing.T) {
	ctx := testutil.MockContext()
	l := New(repository.NewParticipationRepository(), repository.NewRankSnapshotRepository(&testutil.MockRedisClient{}))

	_, err := l.GetStandings(ctx, entity.LeaderboardScope{Type: entity.ChallengeLeaderboard})
	require.Error(t, err)
}
