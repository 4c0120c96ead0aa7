package pubsub

import (
	"context"
	"time"
)

// Pack is a message on the wire: a partition key and an encoded payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}

// NopPublisher drops every message, it is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Pack) error {
	return nil
}

// Event is the envelope of every event published by the agent.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      any       `json:"data"`
}
