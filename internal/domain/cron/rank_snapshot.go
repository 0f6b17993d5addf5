package cron

import (
	"context"
	"time"

	"github.com/questx-lab/habit/internal/domain/statistic"
	"github.com/questx-lab/habit/pkg/dateutil"
	"github.com/questx-lab/habit/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

const snapshotConcurrency = 4

// RankSnapshotCronJob stores the ranks of every leaderboard once a day. Rank changes shown on
// leaderboards are relative to the last snapshot.
type RankSnapshotCronJob struct {
	leaderboard statistic.Leaderboard
	hour        int
	location    *time.Location
	now         func() time.Time
}

// NewRankSnapshotCronJob runs the job every day at hour in location.
func NewRankSnapshotCronJob(
	leaderboard statistic.Leaderboard, hour int, location *time.Location,
) *RankSnapshotCronJob {
	return &RankSnapshotCronJob{
		leaderboard: leaderboard,
		hour:        hour,
		location:    location,
		now:         time.Now,
	}
}

func (job *RankSnapshotCronJob) Do(ctx context.Context) {
	boards, err := job.leaderboard.Boards(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboards: %v", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for _, board := range boards {
		board := board
		g.Go(func() error {
			if err := job.leaderboard.Snapshot(gctx, board); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot snapshot %s: %v", board, err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (job *RankSnapshotCronJob) RunNow() bool {
	return false
}

func (job *RankSnapshotCronJob) Next() time.Time {
	return dateutil.NextDayAt(job.now().In(job.location), job.hour)
}
