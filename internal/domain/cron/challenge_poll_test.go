package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/internal/model"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
	"github.com/questx-lab/persuade-agent/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type mockChallengeDomain struct {
	PostFunc         func(context.Context, *model.PostChallengeRequest) (*model.PostChallengeResponse, error)
	CheckRepliesFunc func(context.Context, *model.CheckRepliesRequest) (*model.CheckRepliesResponse, error)
	RewardFunc       func(context.Context, *model.RewardRequest) (*model.RewardResponse, error)
	GetStatusFunc    func(context.Context, *model.GetStatusRequest) (*model.GetStatusResponse, error)
}

func (m *mockChallengeDomain) Post(
	ctx context.Context, req *model.PostChallengeRequest,
) (*model.PostChallengeResponse, error) {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, req)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *mockChallengeDomain) CheckReplies(
	ctx context.Context, req *model.CheckRepliesRequest,
) (*model.CheckRepliesResponse, error) {
	if m.CheckRepliesFunc != nil {
		return m.CheckRepliesFunc(ctx, req)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *mockChallengeDomain) Reward(
	ctx context.Context, req *model.RewardRequest,
) (*model.RewardResponse, error) {
	if m.RewardFunc != nil {
		return m.RewardFunc(ctx, req)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *mockChallengeDomain) GetStatus(
	ctx context.Context, req *model.GetStatusRequest,
) (*model.GetStatusResponse, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, req)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func TestChallengePostCronJob(t *testing.T) {
	testCases := []struct {
		name     string
		status   *model.GetStatusResponse
		wantPost bool
	}{
		{
			name:     "no challenge",
			status:   &model.GetStatusResponse{State: string(entity.ChallengeStateNoActive)},
			wantPost: true,
		},
		{
			name:     "open challenge",
			status:   &model.GetStatusResponse{State: string(entity.ChallengeStateOpen)},
			wantPost: false,
		},
		{
			name: "completed and rewarded",
			status: &model.GetStatusResponse{
				State:  string(entity.ChallengeStateCompleted),
				Winner: &model.Winner{Username: "alice", Rewarded: true},
			},
			wantPost: true,
		},
		{
			name: "completed but not rewarded",
			status: &model.GetStatusResponse{
				State:  string(entity.ChallengeStateCompleted),
				Winner: &model.Winner{Username: "alice"},
			},
			wantPost: false,
		},
		{
			name: "abandoned",
			status: &model.GetStatusResponse{
				State:     string(entity.ChallengeStateCompleted),
				Abandoned: true,
			},
			wantPost: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			posted := false
			job := NewChallengePostCronJob(&mockChallengeDomain{
				GetStatusFunc: func(context.Context, *model.GetStatusRequest) (*model.GetStatusResponse, error) {
					return tt.status, nil
				},
				PostFunc: func(context.Context, *model.PostChallengeRequest) (*model.PostChallengeResponse, error) {
					posted = true
					return &model.PostChallengeResponse{Topic: "topic"}, nil
				},
			}, time.Hour)

			job.Do(testutil.MockContext())
			require.Equal(t, tt.wantPost, posted)
			require.False(t, job.RunNow())
		})
	}
}

func TestChallengePollCronJob(t *testing.T) {
	calls := 0
	job := NewChallengePollCronJob(&mockChallengeDomain{
		CheckRepliesFunc: func(context.Context, *model.CheckRepliesRequest) (*model.CheckRepliesResponse, error) {
			calls++
			if calls == 1 {
				return nil, errorx.ErrNoActiveChallenge
			}
			if calls == 2 {
				return nil, errors.New("hub unavailable")
			}
			return &model.CheckRepliesResponse{Fetched: 1, Processed: 1}, nil
		},
	}, time.Minute)

	ctx := testutil.MockContext()
	job.Do(ctx)
	job.Do(ctx)
	job.Do(ctx)
	require.Equal(t, 3, calls)
	require.True(t, job.RunNow())
	require.WithinDuration(t, time.Now().Add(time.Minute), job.Next(), time.Second)
}

func TestCronJobManager(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})

	job := NewChallengePollCronJob(&mockChallengeDomain{
		CheckRepliesFunc: func(context.Context, *model.CheckRepliesRequest) (*model.CheckRepliesResponse, error) {
			if calls.Add(1) == 3 {
				close(done)
			}
			return &model.CheckRepliesResponse{}, nil
		},
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(testutil.MockContext())
	manager := NewCronJobManager()
	manager.Register(job)

	stopped := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run three times")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}
}
