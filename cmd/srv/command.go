package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "habit"
	app.Usage = "Social habit challenge backend"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the TOML configuration file",
			EnvVars: []string{"HABIT_CONFIG"},
		},
	}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it serves every procedure and the metrics.`,
		},
		{
			Action:      s.startReconciler,
			Name:        "reconciler",
			Usage:       "Start service reconciler",
			Category:    "Websocket",
			Description: `Used to push change events from the message queue to websocket clients.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to snapshot leaderboard ranks every night.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Used to apply pending database migrations.`,
		},
	}

	s.app = app
}
