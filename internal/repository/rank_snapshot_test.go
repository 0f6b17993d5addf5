package repository_test

import (
	"testing"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestRankSnapshotRepository(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient, s := testutil.NewMiniRedisClient(t, ctx)
	repo := repository.NewRankSnapshotRepository(redisClient)

	board := entity.LeaderboardScope{Type: entity.ChallengeLeaderboard, Scope: "challenge1"}

	ranks, err := repo.Get(ctx, board)
	require.NoError(t, err)
	require.Empty(t, ranks)

	require.NoError(t, repo.Save(ctx, board, map[string]int{"user1": 2, "user2": 1}))
	require.True(t, s.Exists("rank:challenge:challenge1"))

	ranks, err = repo.Get(ctx, board)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"user1": 2, "user2": 1}, ranks)

	// A new snapshot replaces the old one.
	require.NoError(t, repo.Save(ctx, board, map[string]int{"user3": 1}))
	ranks, err = repo.Get(ctx, board)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"user3": 1}, ranks)
}
