package challenge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/persuade-agent/internal/common"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/pubsub"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

const (
	EventChallengePosted    = "challenge_posted"
	EventChallengeAbandoned = "challenge_abandoned"
	EventReplyEvaluated     = "reply_evaluated"
	EventChallengeCompleted = "challenge_completed"
	EventRewardDisbursed    = "reward_disbursed"
)

type ChallengeEventData struct {
	Topic      string `json:"topic"`
	RootPostID string `json:"root_post_id,omitempty"`
	Winner     string `json:"winner,omitempty"`
	Responses  int    `json:"responses"`
}

type ReplyEventData struct {
	Topic    string `json:"topic"`
	Username string `json:"username"`
	ReplyID  string `json:"reply_id"`
	Score    int    `json:"score"`
	Passed   bool   `json:"passed"`
}

type RewardEventData struct {
	Topic   string `json:"topic"`
	Winner  string `json:"winner"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
	TxHash  string `json:"tx_hash"`
}

// EventPublisher publishes lifecycle events of challenges. Publishing never
// fails the caller, errors are logged.
type EventPublisher struct {
	publisher pubsub.Publisher
	topic     string
	node      *snowflake.Node
}

func NewEventPublisher(publisher pubsub.Publisher, topic string) (*EventPublisher, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	return &EventPublisher{publisher: publisher, topic: topic, node: node}, nil
}

func (p *EventPublisher) Publish(ctx context.Context, challenge *entity.Challenge, eventType string, data any) {
	if p == nil || p.publisher == nil {
		return
	}

	event := pubsub.Event{
		ID:        p.node.Generate().String(),
		Type:      eventType,
		CreatedAt: time.Now(),
		Data:      data,
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", eventType, err)
		return
	}

	// Events of the same challenge share the partition key.
	key := []byte(challenge.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err := p.publisher.Publish(ctx, p.topic, &pubsub.Pack{Key: key, Msg: b}); err != nil {
		common.PromCounters[common.ExternalCallFailure].WithLabelValues("publish").Inc()
		xcontext.Logger(ctx).Errorf("Cannot publish event %s of challenge %q: %v", eventType, challenge.Topic, err)
	}
}

func NewChallengeEventData(challenge *entity.Challenge) ChallengeEventData {
	return ChallengeEventData{
		Topic:      challenge.Topic,
		RootPostID: challenge.RootPostID,
		Winner:     challenge.Winner,
		Responses:  len(challenge.Responses),
	}
}
