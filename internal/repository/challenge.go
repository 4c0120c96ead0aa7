package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

type ChallengeRepository interface {
	Create(ctx context.Context, topic, rewardAmount string) (*entity.Challenge, error)
	Save(ctx context.Context, challenge *entity.Challenge) error
	LoadMostRecent(ctx context.Context) (*entity.Challenge, error)
	Current(ctx context.Context) (*entity.Challenge, error)
	Abandon(ctx context.Context) error
}

// challengeRepository keeps the single current challenge in memory and
// snapshots it to one JSON file per challenge.
type challengeRepository struct {
	dir string

	mutex   sync.Mutex
	current *entity.Challenge
	now     func() time.Time
}

func NewChallengeRepository(dir string) *challengeRepository {
	return &challengeRepository{dir: dir, now: time.Now}
}

// SnapshotFileName returns the file name of the snapshot of a challenge
// created at t, e.g. challenge_2024-01-02T03-04-05-123456.json.
func SnapshotFileName(t time.Time) string {
	ts := t.Format("2006-01-02T15:04:05.000000")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("challenge_%s.json", ts)
}

func (r *challengeRepository) SnapshotPath(challenge *entity.Challenge) string {
	return filepath.Join(r.dir, SnapshotFileName(challenge.CreatedAt))
}

func (r *challengeRepository) Create(ctx context.Context, topic, rewardAmount string) (*entity.Challenge, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}

	if current != nil && !current.Completed {
		return nil, errorx.New(errorx.ActiveChallengeExists,
			"Challenge %q is still open", current.Topic)
	}

	challenge := &entity.Challenge{
		Topic:        topic,
		CreatedAt:    r.now(),
		RewardAmount: rewardAmount,
		Responses:    []*entity.Response{},
	}

	if err := r.Save(ctx, challenge); err != nil {
		return nil, err
	}

	return challenge, nil
}

func (r *challengeRepository) Save(ctx context.Context, challenge *entity.Challenge) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := writeJSONFile(r.SnapshotPath(challenge), challenge); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save snapshot of challenge %q: %v", challenge.Topic, err)
		return err
	}

	r.current = challenge
	return nil
}

// LoadMostRecent returns the most recently modified snapshot, or nil if there
// is none.
func (r *challengeRepository) LoadMostRecent(ctx context.Context) (*entity.Challenge, error) {
	files, err := filepath.Glob(filepath.Join(r.dir, "challenge_*.json"))
	if err != nil {
		return nil, err
	}

	var latest string
	var latestTime time.Time
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}

		if latest == "" || info.ModTime().After(latestTime) ||
			(info.ModTime().Equal(latestTime) && f > latest) {
			latest, latestTime = f, info.ModTime()
		}
	}

	if latest == "" {
		return nil, nil
	}

	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, err
	}

	challenge := &entity.Challenge{}
	if err := json.Unmarshal(b, challenge); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", latest, err)
	}

	xcontext.Logger(ctx).Infof("Loaded challenge %q from %s", challenge.Topic, latest)
	return challenge, nil
}

func (r *challengeRepository) Current(ctx context.Context) (*entity.Challenge, error) {
	r.mutex.Lock()
	current := r.current
	r.mutex.Unlock()

	if current != nil {
		return current, nil
	}

	challenge, err := r.LoadMostRecent(ctx)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.current == nil {
		r.current = challenge
	}

	return r.current, nil
}

func (r *challengeRepository) Abandon(ctx context.Context) error {
	current, err := r.Current(ctx)
	if err != nil {
		return err
	}

	if current == nil || current.Completed {
		return errorx.ErrNoActiveChallenge
	}

	current.Completed = true
	current.Abandoned = true
	return r.Save(ctx, current)
}
