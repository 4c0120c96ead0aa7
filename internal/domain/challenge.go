package domain

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/questx-lab/persuade-agent/internal/client"
	"github.com/questx-lab/persuade-agent/internal/common"
	"github.com/questx-lab/persuade-agent/internal/domain/challenge"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/internal/model"
	"github.com/questx-lab/persuade-agent/internal/repository"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

type ChallengeDomain interface {
	Post(context.Context, *model.PostChallengeRequest) (*model.PostChallengeResponse, error)
	CheckReplies(context.Context, *model.CheckRepliesRequest) (*model.CheckRepliesResponse, error)
	Reward(context.Context, *model.RewardRequest) (*model.RewardResponse, error)
	GetStatus(context.Context, *model.GetStatusRequest) (*model.GetStatusResponse, error)
}

// ReplyPredicate decides whether a new reply is evaluated. Rejected replies
// are not recorded and are seen again on the next poll.
type ReplyPredicate func(ctx context.Context, ch *entity.Challenge, reply challenge.NormalizedReply) bool

func AcceptAllReplies(context.Context, *entity.Challenge, challenge.NormalizedReply) bool {
	return true
}

// KeywordReplyPredicate accepts replies containing at least one of keywords,
// case-insensitively. No keywords accepts everything.
func KeywordReplyPredicate(keywords []string) ReplyPredicate {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	if len(lowered) == 0 {
		return AcceptAllReplies
	}

	return func(_ context.Context, _ *entity.Challenge, reply challenge.NormalizedReply) bool {
		text := strings.ToLower(reply.Text)
		for _, k := range lowered {
			if strings.Contains(text, k) {
				return true
			}
		}

		return false
	}
}

type challengeDomain struct {
	challengeRepo repository.ChallengeRepository
	socialCaller  client.SocialCaller
	evaluator     *challenge.Evaluator
	disburser     *challenge.Disburser
	events        *challenge.EventPublisher
	predicate     ReplyPredicate
	randIntn      func(int) int
}

func NewChallengeDomain(
	challengeRepo repository.ChallengeRepository,
	socialCaller client.SocialCaller,
	evaluator *challenge.Evaluator,
	disburser *challenge.Disburser,
	events *challenge.EventPublisher,
	predicate ReplyPredicate,
) *challengeDomain {
	if predicate == nil {
		predicate = AcceptAllReplies
	}

	return &challengeDomain{
		challengeRepo: challengeRepo,
		socialCaller:  socialCaller,
		evaluator:     evaluator,
		disburser:     disburser,
		events:        events,
		predicate:     predicate,
		randIntn:      rand.Intn,
	}
}

func (d *challengeDomain) Post(
	ctx context.Context, req *model.PostChallengeRequest,
) (*model.PostChallengeResponse, error) {
	cfg := xcontext.Configs(ctx).Challenge

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		if len(cfg.Topics) == 0 {
			return nil, errorx.ErrNoTopics
		}

		topic = cfg.Topics[d.randIntn(len(cfg.Topics))]
	}

	if err := challenge.ValidateRewardAmount(cfg.RewardAmount); err != nil {
		return nil, err
	}

	if req.Force {
		if err := d.abandonOpenChallenge(ctx); err != nil {
			return nil, err
		}
	}

	ch, err := d.challengeRepo.Create(ctx, topic, cfg.RewardAmount)
	if err != nil {
		if errorx.HasCode(err, errorx.ActiveChallengeExists) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot create challenge: %v", err)
		return nil, errorx.Unknown
	}

	logger := xcontext.Logger(ctx).With("topic", topic).With("stage", "post")
	ch.FallbackAddress = cfg.FallbackAddress

	result, err := d.socialCaller.Post(ctx, challenge.ChallengeMessage(topic, cfg.RewardAmount, cfg.TokenSymbol))
	if err != nil {
		common.PromCounters[common.ChallengesPostedTotal].WithLabelValues("failure").Inc()
		logger.Errorf("Cannot post challenge: %v", err)

		if err := d.challengeRepo.Abandon(ctx); err != nil {
			logger.Errorf("Cannot abandon unposted challenge: %v", err)
		}

		return nil, errorx.New(errorx.Unavailable, "Cannot post challenge: %v", err)
	}

	rootPostID, ok := challenge.ExtractID(result)
	if !ok {
		logger.Warnf("Cannot extract post id from %#v", result)
	}
	ch.RootPostID = rootPostID

	if err := d.challengeRepo.Save(ctx, ch); err != nil {
		logger.Errorf("Cannot save posted challenge: %v", err)
		return nil, errorx.Unknown
	}

	common.PromCounters[common.ChallengesPostedTotal].WithLabelValues("success").Inc()
	updateResponseGauges(ch)
	d.events.Publish(ctx, ch, challenge.EventChallengePosted, challenge.NewChallengeEventData(ch))
	logger.Infof("Challenge posted with root post %s", rootPostID)

	return &model.PostChallengeResponse{
		Topic:        ch.Topic,
		RootPostID:   ch.RootPostID,
		RewardAmount: ch.RewardAmount,
		CreatedAt:    ch.CreatedAt,
	}, nil
}

func (d *challengeDomain) abandonOpenChallenge(ctx context.Context) error {
	current, err := d.challengeRepo.Current(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current challenge: %v", err)
		return errorx.Unknown
	}

	if current == nil || current.Completed {
		return nil
	}

	if err := d.challengeRepo.Abandon(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot abandon challenge %q: %v", current.Topic, err)
		return errorx.Unknown
	}

	xcontext.Logger(ctx).Warnf("Abandoned challenge %q", current.Topic)
	d.events.Publish(ctx, current, challenge.EventChallengeAbandoned, challenge.NewChallengeEventData(current))
	return nil
}

func (d *challengeDomain) CheckReplies(
	ctx context.Context, req *model.CheckRepliesRequest,
) (*model.CheckRepliesResponse, error) {
	ch, err := d.activeChallenge(ctx)
	if err != nil {
		return nil, err
	}

	logger := xcontext.Logger(ctx).With("topic", ch.Topic)

	if ch.Completed {
		winner := challenge.WinningResponse(ch)
		if winner == nil {
			return &model.CheckRepliesResponse{Completed: true}, nil
		}

		if !winner.Rewarded {
			logger.Infof("Retry the reward of %s", winner.Username)
			if _, err := d.disburser.Disburse(ctx, ch, winner); err != nil {
				return nil, err
			}
		}

		return &model.CheckRepliesResponse{Completed: true, Winner: winnerOf(winner)}, nil
	}

	if ch.RootPostID == "" {
		return nil, errorx.New(errorx.MissingRootPost, "Challenge %q has no root post", ch.Topic)
	}

	threshold := xcontext.Configs(ctx).Challenge.Threshold
	sendFeedback := xcontext.Configs(ctx).Challenge.SendFeedback

	raws := d.fetchReplies(ctx, ch)
	resp := &model.CheckRepliesResponse{Fetched: len(raws)}

	var winner *entity.Response
	for _, raw := range raws {
		reply, err := challenge.Normalize(raw)
		if err != nil {
			common.PromCounters[common.ReplyEvaluationFailure].WithLabelValues("normalize").Inc()
			logger.With("stage", "normalize").Warnf("Skip reply: %v", err)
			resp.Skipped++
			continue
		}

		replyLogger := logger.With("reply_id", reply.ReplyID)

		if reply.ReplyID == ch.RootPostID || ch.HasReply(reply.ReplyID) {
			resp.Duplicated++
			continue
		}

		if !d.predicate(ctx, ch, reply) {
			replyLogger.Debugf("Reply of %s is rejected", reply.Username)
			resp.Skipped++
			continue
		}

		username := reply.Username
		if username == "" {
			username = challenge.UnknownUsername
		}

		evaluation, err := d.evaluator.Evaluate(ctx, ch.Topic, threshold, reply.Text, username)
		if err != nil {
			common.PromCounters[common.ReplyEvaluationFailure].WithLabelValues("evaluate").Inc()
			replyLogger.With("stage", "evaluate").Errorf("Cannot evaluate reply, retry next time: %v", err)
			resp.Skipped++
			continue
		}

		response := &entity.Response{
			Username:    username,
			DisplayName: reply.DisplayName,
			FID:         reply.FID,
			ReplyID:     reply.ReplyID,
			ReplyText:   reply.Text,
			Evaluation:  evaluation,
			Timestamp:   time.Now(),
		}
		ch.Responses = append(ch.Responses, response)
		completed := challenge.Complete(ch, response)
		resp.Processed++

		common.PromCounters[common.RepliesProcessedTotal].
			WithLabelValues(strconv.FormatBool(evaluation.Passed)).Inc()
		replyLogger.Infof("Reply of %s scored %d/10, passed: %t", username, evaluation.Score, evaluation.Passed)

		if err := d.challengeRepo.Save(ctx, ch); err != nil {
			replyLogger.Errorf("Cannot save challenge: %v", err)
		}

		d.events.Publish(ctx, ch, challenge.EventReplyEvaluated, challenge.ReplyEventData{
			Topic:    ch.Topic,
			Username: username,
			ReplyID:  reply.ReplyID,
			Score:    evaluation.Score,
			Passed:   evaluation.Passed,
		})

		if sendFeedback {
			if _, err := d.socialCaller.Reply(ctx, reply.ReplyID, challenge.FeedbackMessage(response)); err != nil {
				common.PromCounters[common.ExternalCallFailure].WithLabelValues("reply").Inc()
				replyLogger.Errorf("Cannot send feedback: %v", err)
			}
		}

		if completed {
			winner = response
			break
		}
	}

	updateResponseGauges(ch)
	logger.Infof("Processed %d new replies out of %d", resp.Processed, resp.Fetched)

	if winner == nil {
		return resp, nil
	}

	resp.Completed = true
	logger.Infof("Challenge is won by %s", winner.Username)
	d.events.Publish(ctx, ch, challenge.EventChallengeCompleted, challenge.NewChallengeEventData(ch))

	if _, err := d.disburser.Disburse(ctx, ch, winner); err != nil {
		return nil, err
	}

	resp.Winner = winnerOf(winner)
	return resp, nil
}

// fetchReplies reads replies through the primary path, then the alternate
// one. Both failing yields no replies for this tick.
func (d *challengeDomain) fetchReplies(ctx context.Context, ch *entity.Challenge) []entity.RawReply {
	logger := xcontext.Logger(ctx).With("topic", ch.Topic).With("stage", "fetch")

	replies, err := d.socialCaller.FetchReplies(ctx, ch.RootPostID)
	if err == nil {
		return replies
	}

	common.PromCounters[common.ExternalCallFailure].WithLabelValues("fetch_replies").Inc()
	logger.Warnf("Cannot fetch replies: %v", err)

	alternate, ok := d.socialCaller.(client.AlternateReplyFetcher)
	if !ok {
		return nil
	}

	replies, err = alternate.FetchRepliesAlternate(ctx, ch.RootPostID)
	if err != nil {
		common.PromCounters[common.ExternalCallFailure].WithLabelValues("fetch_replies_alternate").Inc()
		logger.Errorf("Cannot fetch replies through the alternate path: %v", err)
		return nil
	}

	return replies
}

func (d *challengeDomain) Reward(
	ctx context.Context, req *model.RewardRequest,
) (*model.RewardResponse, error) {
	ch, err := d.activeChallenge(ctx)
	if err != nil {
		return nil, err
	}

	var winner *entity.Response
	if req.Username != "" {
		winner = challenge.PassingByUsername(ch, req.Username)
	} else {
		winner = challenge.WinningResponse(ch)
		if winner == nil {
			winner = challenge.FirstPassing(ch)
		}
	}

	if winner == nil {
		return nil, errorx.ErrNoWinner
	}

	if ch.Completed && winner.Username != ch.Winner {
		return nil, errorx.New(errorx.AlreadyRewarded,
			"Challenge %q is already won by %s", ch.Topic, ch.Winner)
	}

	if challenge.Complete(ch, winner) {
		if err := d.challengeRepo.Save(ctx, ch); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot save challenge: %v", err)
			return nil, errorx.Unknown
		}

		d.events.Publish(ctx, ch, challenge.EventChallengeCompleted, challenge.NewChallengeEventData(ch))
	}

	result, err := d.disburser.Disburse(ctx, ch, winner)
	if err != nil {
		return nil, err
	}

	return &model.RewardResponse{
		Winner:          *winnerOf(winner),
		AlreadyRewarded: result.AlreadyRewarded,
	}, nil
}

func (d *challengeDomain) GetStatus(
	ctx context.Context, req *model.GetStatusRequest,
) (*model.GetStatusResponse, error) {
	ch, err := d.challengeRepo.Current(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current challenge: %v", err)
		return nil, errorx.Unknown
	}

	if ch == nil {
		return &model.GetStatusResponse{State: string(entity.ChallengeStateNoActive)}, nil
	}

	return &model.GetStatusResponse{
		State:        string(ch.State()),
		Topic:        ch.Topic,
		RootPostID:   ch.RootPostID,
		RewardAmount: ch.RewardAmount,
		CreatedAt:    ch.CreatedAt,
		Responses:    len(ch.Responses),
		Passed:       ch.PassedCount(),
		Abandoned:    ch.Abandoned,
		Winner:       winnerOf(challenge.WinningResponse(ch)),
	}, nil
}

// activeChallenge returns the current challenge unless there is none or it
// was abandoned.
func (d *challengeDomain) activeChallenge(ctx context.Context) (*entity.Challenge, error) {
	ch, err := d.challengeRepo.Current(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current challenge: %v", err)
		return nil, errorx.Unknown
	}

	if ch == nil || ch.Abandoned {
		return nil, errorx.ErrNoActiveChallenge
	}

	return ch, nil
}

func winnerOf(response *entity.Response) *model.Winner {
	if response == nil {
		return nil
	}

	return &model.Winner{
		Username: response.Username,
		ReplyID:  response.ReplyID,
		Score:    response.Evaluation.Score,
		Rewarded: response.Rewarded,
		Address:  response.ResolvedAddress,
		Amount:   response.RewardAmount,
		TxHash:   response.RewardTx,
	}
}

func updateResponseGauges(ch *entity.Challenge) {
	passed := ch.PassedCount()
	common.PromGauges[common.ChallengeResponsesCount].WithLabelValues("true").Set(float64(passed))
	common.PromGauges[common.ChallengeResponsesCount].WithLabelValues("false").Set(float64(len(ch.Responses) - passed))
}
