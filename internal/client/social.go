package client

import (
	"context"
	"errors"

	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/api/farcaster"
)

type SocialCaller interface {
	// Post publishes a top-level post and returns the network's result, whose
	// shape is not guaranteed.
	Post(ctx context.Context, text string) (entity.RawReply, error)
	FetchReplies(ctx context.Context, threadID string) ([]entity.RawReply, error)
	// Reply answers targetID and returns the id of the new post.
	Reply(ctx context.Context, targetID, text string) (string, error)
}

// AlternateReplyFetcher is an optional second path to read replies, used
// when FetchReplies fails.
type AlternateReplyFetcher interface {
	FetchRepliesAlternate(ctx context.Context, threadID string) ([]entity.RawReply, error)
}

type farcasterCaller struct {
	endpoint farcaster.IEndpoint
}

func NewFarcasterCaller(endpoint farcaster.IEndpoint) *farcasterCaller {
	return &farcasterCaller{endpoint: endpoint}
}

func (c *farcasterCaller) Post(ctx context.Context, text string) (entity.RawReply, error) {
	cast, err := c.endpoint.PublishCast(ctx, text, "")
	if err != nil {
		return nil, err
	}

	return entity.MappingReply(cast), nil
}

func (c *farcasterCaller) FetchReplies(ctx context.Context, threadID string) ([]entity.RawReply, error) {
	casts, err := c.endpoint.CastsByParent(ctx, threadID)
	if err != nil {
		return nil, err
	}

	replies := make([]entity.RawReply, 0, len(casts))
	for _, cast := range casts {
		replies = append(replies, entity.MappingReply(cast))
	}

	return replies, nil
}

func (c *farcasterCaller) FetchRepliesAlternate(ctx context.Context, threadID string) ([]entity.RawReply, error) {
	casts, err := c.endpoint.Conversation(ctx, threadID)
	if err != nil {
		return nil, err
	}

	replies := make([]entity.RawReply, 0, len(casts))
	for _, cast := range casts {
		replies = append(replies, entity.MappingReply(cast))
	}

	return replies, nil
}

func (c *farcasterCaller) Reply(ctx context.Context, targetID, text string) (string, error) {
	cast, err := c.endpoint.PublishCast(ctx, text, targetID)
	if err != nil {
		return "", err
	}

	hash, err := cast.GetString("hash")
	if err != nil {
		return "", err
	}

	if hash == "" {
		return "", errors.New("reply has no hash")
	}

	return hash, nil
}
