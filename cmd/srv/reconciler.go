package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/middleware"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/pkg/authenticator"
	"github.com/questx-lab/habit/pkg/kafka"
	"github.com/questx-lab/habit/pkg/prometheus"
	"github.com/questx-lab/habit/pkg/router"
	"github.com/questx-lab/habit/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startReconciler(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	s.reconciler = realtime.NewReconciler(cfg.Realtime.BufferSize)

	// Every reconciler must see every event, so each instance is its own consumer group.
	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.GroupID+"-reconciler-"+uuid.NewString(),
		brokers(cfg.Kafka.Addr),
		[]string{realtime.Topic},
		s.reconciler.Handle,
	)
	if err != nil {
		return err
	}
	subscriber.Subscribe(s.ctx)
	defer func() {
		if err := subscriber.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot stop subscriber: %v", err)
		}
	}()

	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.Expiration)

	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())
	s.router.Handle("/metrics", prometheus.NewHandler())
	s.router.Before(middleware.NewAuthVerifier(tokenEngine).Middleware())
	s.router.Before(middleware.Authenticate())
	router.Websocket(s.router, "/ws", realtime.NewGateway(s.reconciler).Serve)

	return s.serve(&http.Server{
		Addr:              cfg.Realtime.Address(),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	})
}
