package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/logger"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

func MockContext() context.Context {
	cfg := config.Default()
	cfg.Challenge.Topics = []string{"remote work increases productivity"}
	cfg.Challenge.RewardAmount = "2"
	cfg.Challenge.TokenSymbol = "$S"
	cfg.Challenge.Threshold = 7
	cfg.Challenge.FallbackAddress = "0x000000000000000000000000000000000000dEaD"
	cfg.Challenge.PollInterval = time.Second

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewSilenceLogger())

	return ctx
}

// MockContextWithConfigs is MockContext with the configs changed by modify.
func MockContextWithConfigs(modify func(*config.Configs)) context.Context {
	ctx := MockContext()
	cfg := xcontext.Configs(ctx)
	modify(&cfg)
	return xcontext.WithConfigs(ctx, cfg)
}
