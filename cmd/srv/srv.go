package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/questx-lab/habit/config"
	"github.com/questx-lab/habit/internal/domain"
	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/domain/search"
	"github.com/questx-lab/habit/internal/domain/statistic"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/migration"
	"github.com/questx-lab/habit/pkg/idutil"
	"github.com/questx-lab/habit/pkg/kafka"
	"github.com/questx-lab/habit/pkg/logger"
	"github.com/questx-lab/habit/pkg/pubsub"
	"github.com/questx-lab/habit/pkg/router"
	"github.com/questx-lab/habit/pkg/xcontext"
	"github.com/questx-lab/habit/pkg/xredis"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	router      *router.Router
	redisClient xredis.Client
	publisher   pubsub.Publisher
	localBus    *pubsub.LocalBus
	indexer     search.Indexer
	reconciler  *realtime.Reconciler

	userRepo          repository.UserRepository
	challengeRepo     repository.ChallengeRepository
	friendRequestRepo repository.FriendRequestRepository
	friendshipRepo    repository.FriendshipRepository
	participationRepo repository.ParticipationRepository
	commentRepo       repository.CommentRepository
	commentLikeRepo   repository.CommentLikeRepository
	rankSnapshotRepo  repository.RankSnapshotRepository

	leaderboard statistic.Leaderboard

	userDomain          domain.UserDomain
	friendDomain        domain.FriendDomain
	challengeDomain     domain.ChallengeDomain
	participationDomain domain.ParticipationDomain
	commentDomain       domain.CommentDomain
	leaderboardDomain   domain.LeaderboardDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		termSignal := make(chan os.Signal, 1)
		signal.Notify(termSignal, syscall.SIGINT, syscall.SIGTERM)
		<-termSignal
		cancel()
	}()

	s.ctx = xcontext.WithConfigs(ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	logLevel := gormlogger.Silent
	if strings.EqualFold(cfg.LogLevel, "debug") {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		panic(err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = client
}

// loadPublisher publishes change events to kafka, or to an in-process bus when kafka is not
// configured.
func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		s.localBus = pubsub.NewLocalBus()
		s.publisher = s.localBus
		xcontext.Logger(s.ctx).Infof("Kafka is not configured, change events stay in this process")
		return
	}

	publisher, err := kafka.NewPublisher(cfg.GroupID, brokers(cfg.Addr))
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadIndexer() {
	s.indexer = search.NewBleveIndex(s.ctx)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.challengeRepo = repository.NewChallengeRepository()
	s.friendRequestRepo = repository.NewFriendRequestRepository()
	s.friendshipRepo = repository.NewFriendshipRepository()
	s.participationRepo = repository.NewParticipationRepository()
	s.commentRepo = repository.NewCommentRepository()
	s.commentLikeRepo = repository.NewCommentLikeRepository()
	s.rankSnapshotRepo = repository.NewRankSnapshotRepository(s.redisClient)
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)

	idGenerator, err := idutil.NewSnowflakeGenerator(cfg.Comment.NodeID)
	if err != nil {
		panic(err)
	}

	notifier := realtime.NewNotifier(s.publisher)
	s.leaderboard = statistic.New(s.participationRepo, s.rankSnapshotRepo)

	s.userDomain = domain.NewUserDomain(s.userRepo, s.indexer)
	s.friendDomain = domain.NewFriendDomain(s.userRepo, s.friendRequestRepo, s.friendshipRepo, notifier)
	s.challengeDomain = domain.NewChallengeDomain(s.challengeRepo, s.participationRepo)
	s.participationDomain = domain.NewParticipationDomain(s.challengeRepo, s.participationRepo, notifier)
	s.commentDomain = domain.NewCommentDomain(
		s.challengeRepo, s.commentRepo, s.commentLikeRepo, s.userRepo, idGenerator, notifier)
	s.leaderboardDomain = domain.NewLeaderboardDomain(s.challengeRepo, s.userRepo, s.leaderboard)
}

func brokers(addr string) []string {
	result := []string{}
	for _, a := range strings.Split(addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			result = append(result, a)
		}
	}
	return result
}
