package farcaster

import (
	"context"

	"github.com/questx-lab/persuade-agent/pkg/api"
)

type IEndpoint interface {
	PublishCast(ctx context.Context, text, parentHash string) (api.JSON, error)
	CastsByParent(ctx context.Context, hash string) ([]api.JSON, error)
	Conversation(ctx context.Context, hash string) ([]api.JSON, error)
	UserByFID(ctx context.Context, fid int64) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
}
