package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/questx-lab/habit/internal/domain/cron"
	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/middleware"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/pkg/authenticator"
	"github.com/questx-lab/habit/pkg/prometheus"
	"github.com/questx-lab/habit/pkg/router"
	"github.com/questx-lab/habit/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadIndexer()
	defer s.indexer.Close()
	s.loadRepos()
	s.loadDomains()

	// The index lives in this process, so does the job refreshing it.
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewSearchIndexCronJob(s.userDomain))
	go cronJobManager.Start(s.ctx)

	// Without kafka, websocket clients are served by this process.
	if s.localBus != nil {
		s.reconciler = realtime.NewReconciler(xcontext.Configs(s.ctx).Realtime.BufferSize)
		s.localBus.Handle(realtime.Topic, s.reconciler.Handle)
	}

	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	return s.serve(&http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	})
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.Expiration)
	authVerifier := middleware.NewAuthVerifier(tokenEngine).WithUserSync(s.userDomain)
	rateLimiter := middleware.NewRateLimiter(cfg.ApiServer.RateLimit, cfg.ApiServer.RateBurst)

	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle("/metrics", prometheus.NewHandler())

	authRouter := s.router.Branch()
	authRouter.Before(authVerifier.Middleware())
	authRouter.Before(middleware.Authenticate())
	authRouter.Before(rateLimiter.Middleware())
	{
		// User API
		router.GET(authRouter, "/getUser", s.userDomain.Get)
		router.GET(authRouter, "/searchUsers", s.userDomain.Search)

		// Friend API
		router.POST(authRouter, "/sendFriendRequest", s.friendDomain.SendRequest)
		router.POST(authRouter, "/acceptFriendRequest", s.friendDomain.AcceptRequest)
		router.POST(authRouter, "/rejectFriendRequest", s.friendDomain.RejectRequest)
		router.POST(authRouter, "/cancelFriendRequest", s.friendDomain.CancelRequest)
		router.POST(authRouter, "/removeFriend", s.friendDomain.RemoveFriend)
		router.GET(authRouter, "/getFriends", s.friendDomain.GetFriends)
		router.GET(authRouter, "/getPendingFriendRequests", s.friendDomain.GetPendingRequests)
		router.GET(authRouter, "/getFriendSuggestions", s.friendDomain.GetSuggestions)
		router.GET(authRouter, "/getRelation", s.friendDomain.GetRelation)

		// Challenge API
		router.GET(authRouter, "/getChallenge", s.challengeDomain.Get)
		router.POST(authRouter, "/joinChallenge", s.participationDomain.Join)
		router.POST(authRouter, "/checkIn", s.participationDomain.CheckIn)
		router.POST(authRouter, "/leaveChallenge", s.participationDomain.Leave)
		router.GET(authRouter, "/getParticipation", s.participationDomain.Get)
		router.GET(authRouter, "/getMyParticipations", s.participationDomain.GetMyList)

		// Comment API
		router.POST(authRouter, "/postComment", s.commentDomain.Post)
		router.POST(authRouter, "/toggleLike", s.commentDomain.ToggleLike)
		router.POST(authRouter, "/togglePin", s.commentDomain.TogglePin)
		router.POST(authRouter, "/deleteComment", s.commentDomain.Delete)
		router.GET(authRouter, "/getComments", s.commentDomain.GetThread)

		// Leaderboard API
		router.GET(authRouter, "/getLeaderboard", s.leaderboardDomain.GetLeaderboard)
		router.GET(authRouter, "/getMyRank", s.leaderboardDomain.GetMyRank)

		if s.reconciler != nil {
			router.Websocket(authRouter, "/ws", realtime.NewGateway(s.reconciler).Serve)
		}
	}
}

// serve runs server until the context of the service is done.
func (s *srv) serve(server *http.Server) error {
	go func() {
		<-s.ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}
