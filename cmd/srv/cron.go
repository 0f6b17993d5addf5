package main

import (
	"github.com/questx-lab/habit/internal/domain/cron"
	"github.com/questx-lab/habit/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewRankSnapshotCronJob(
		s.leaderboard, cfg.Leaderboard.SnapshotHour, cfg.Participation.Location()))
	cronJobManager.Start(s.ctx)

	return nil
}
