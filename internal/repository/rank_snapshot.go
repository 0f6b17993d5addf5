package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
	"github.com/questx-lab/habit/pkg/xredis"
)

const rankSnapshotTTL = 7 * 24 * time.Hour

// RankSnapshotRepository keeps the ranks of the last snapshot of every leaderboard, they are the
// base of the rank change shown to users.
type RankSnapshotRepository interface {
	Save(ctx context.Context, board entity.LeaderboardScope, ranks map[string]int) error
	Get(ctx context.Context, board entity.LeaderboardScope) (map[string]int, error)
}

type rankSnapshotRepository struct {
	redisClient xredis.Client
}

func NewRankSnapshotRepository(redisClient xredis.Client) *rankSnapshotRepository {
	return &rankSnapshotRepository{redisClient: redisClient}
}

func (r *rankSnapshotRepository) Save(
	ctx context.Context, board entity.LeaderboardScope, ranks map[string]int,
) error {
	values := make(map[string]any, len(ranks))
	for userID, rank := range ranks {
		values[userID] = rank
	}

	return r.redisClient.HSetAll(ctx, rankSnapshotKey(board), values, rankSnapshotTTL)
}

// Get returns an empty map if the board has never been snapshotted.
func (r *rankSnapshotRepository) Get(ctx context.Context, board entity.LeaderboardScope) (map[string]int, error) {
	values, err := r.redisClient.HGetAll(ctx, rankSnapshotKey(board))
	if err != nil {
		return nil, err
	}

	ranks := make(map[string]int, len(values))
	for userID, value := range values {
		rank, err := strconv.Atoi(value)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Invalid rank %q of user %s in %s", value, userID, board)
			continue
		}

		ranks[userID] = rank
	}

	return ranks, nil
}

func rankSnapshotKey(board entity.LeaderboardScope) string {
	return fmt.Sprintf("rank:%s", board)
}
