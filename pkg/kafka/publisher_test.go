package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/questx-lab/persuade-agent/pkg/pubsub"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"type":"challenge_posted"}` {
			return errors.New("unexpected payload")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newPublisherWithProducer("persuade-agent", nil, producer)
	pack := &pubsub.Pack{Key: []byte("topic"), Msg: []byte(`{"type":"challenge_posted"}`)}

	require.NoError(t, p.Publish(context.Background(), "persuade_challenge", pack))
	require.Error(t, p.Publish(context.Background(), "persuade_challenge", pack))
	require.NoError(t, p.Stop(context.Background()))
}
