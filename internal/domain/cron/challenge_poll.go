package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/persuade-agent/internal/domain"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/internal/model"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

// ChallengePollCronJob checks the replies of the current challenge once per
// interval.
type ChallengePollCronJob struct {
	challengeDomain domain.ChallengeDomain
	interval        time.Duration

	// mutex serializes ticks, a slow tick delays the next one.
	mutex sync.Mutex
}

func NewChallengePollCronJob(challengeDomain domain.ChallengeDomain, interval time.Duration) *ChallengePollCronJob {
	return &ChallengePollCronJob{challengeDomain: challengeDomain, interval: interval}
}

func (job *ChallengePollCronJob) Do(ctx context.Context) {
	job.mutex.Lock()
	defer job.mutex.Unlock()

	resp, err := job.challengeDomain.CheckReplies(ctx, &model.CheckRepliesRequest{})
	if err != nil {
		if errorx.HasCode(err, errorx.NoActiveChallenge) {
			xcontext.Logger(ctx).Debugf("No challenge to poll")
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot check replies: %v", err)
		return
	}

	if resp.Processed > 0 || resp.Winner != nil {
		xcontext.Logger(ctx).Infof("Poll: %d fetched, %d processed, completed: %t",
			resp.Fetched, resp.Processed, resp.Completed)
	}
}

func (job *ChallengePollCronJob) RunNow() bool {
	return true
}

func (job *ChallengePollCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

// ChallengePostCronJob posts a new challenge when none is open.
type ChallengePostCronJob struct {
	challengeDomain domain.ChallengeDomain
	interval        time.Duration
}

func NewChallengePostCronJob(challengeDomain domain.ChallengeDomain, interval time.Duration) *ChallengePostCronJob {
	return &ChallengePostCronJob{challengeDomain: challengeDomain, interval: interval}
}

func (job *ChallengePostCronJob) Do(ctx context.Context) {
	status, err := job.challengeDomain.GetStatus(ctx, &model.GetStatusRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get challenge status: %v", err)
		return
	}

	if status.State == string(entity.ChallengeStateOpen) {
		return
	}

	// A completed challenge waits until its winner is paid.
	if status.Winner != nil && !status.Winner.Rewarded {
		return
	}

	resp, err := job.challengeDomain.Post(ctx, &model.PostChallengeRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot post new challenge: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Posted new challenge %q", resp.Topic)
}

func (job *ChallengePostCronJob) RunNow() bool {
	return false
}

func (job *ChallengePostCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
