package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/questx-lab/persuade-agent/internal/model"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startPost(cctx *cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	resp, err := s.challengeDomain.Post(s.ctx, &model.PostChallengeRequest{
		Topic: cctx.String("topic"),
		Force: cctx.Bool("force"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) startCheck(*cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	resp, err := s.challengeDomain.CheckReplies(s.ctx, &model.CheckRepliesRequest{})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) startReward(cctx *cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	resp, err := s.challengeDomain.Reward(s.ctx, &model.RewardRequest{
		Username: cctx.String("username"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) startStatus(*cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	resp, err := s.challengeDomain.GetStatus(s.ctx, &model.GetStatusRequest{})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) stop() {
	type stopper interface {
		Stop(ctx context.Context) error
	}

	if p, ok := s.publisher.(stopper); ok {
		if err := p.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop publisher: %v", err)
		}
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(b))
	return nil
}
