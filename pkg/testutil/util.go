package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/habit/config"
	"github.com/questx-lab/habit/migration"
	"github.com/questx-lab/habit/pkg/logger"
	"github.com/questx-lab/habit/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env:      "test",
		LogLevel: "DEBUG",
		Database: config.DatabaseConfigs{Driver: "sqlite", Database: ":memory:"},
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
			RateLimit:    1000,
			RateBurst:    1000,
		},
		Auth: config.AuthConfigs{
			TokenSecret:     "secret",
			AccessTokenName: "access_token",
			Expiration:      time.Minute,
		},
		Participation: config.ParticipationConfigs{TimeZone: "UTC"},
		Leaderboard:   config.LeaderboardConfigs{DefaultLimit: 20, MaxLimit: 100},
		Comment:       config.CommentConfigs{MaxLength: 200, NodeID: 1},
		Realtime:      config.RealtimeConfigs{BufferSize: 8},
	}
}

// MockContext returns a context carrying an empty migrated in-memory database. Every call creates
// a new database.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Each connection of sqlite :memory: is a different database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.Migrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}

// WithUserID switches the requesting user of a context created by MockContext.
func WithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
