package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/persuade-agent/internal/domain/cron"
	"github.com/questx-lab/persuade-agent/internal/repository/migration"
	"github.com/questx-lab/persuade-agent/pkg/prometheus"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRun(*cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	ctx, cancel := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := xcontext.Configs(ctx)
	s.ethClient.Start(ctx)

	if cfg.PrometheusServer.Port != "" {
		go s.startPrometheus(ctx)
	}

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewChallengePollCronJob(s.challengeDomain, cfg.Challenge.PollInterval))
	if cfg.Challenge.PostInterval > 0 {
		cronJobManager.Register(cron.NewChallengePostCronJob(s.challengeDomain, cfg.Challenge.PostInterval))
	}

	cronJobManager.Start(ctx)
	return nil
}

func (s *srv) startPrometheus(ctx context.Context) {
	cfg := xcontext.Configs(ctx)
	httpSrv := &http.Server{
		Addr:    cfg.PrometheusServer.Address(),
		Handler: prometheus.NewHandler(),
	}

	go func() {
		<-ctx.Done()
		httpSrv.Close()
	}()

	xcontext.Logger(ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		xcontext.Logger(ctx).Errorf("Prometheus server stopped: %v", err)
	}
}

func (s *srv) startMigrate(*cli.Context) error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	if db == nil {
		return errors.New("database driver is not configured")
	}

	if err := migration.DoMigration(db); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated winner ledger table")
	return nil
}
