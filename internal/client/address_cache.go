package client

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
	"github.com/questx-lab/persuade-agent/pkg/xredis"
)

type AddressCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, address string) error
}

type redisAddressCache struct {
	redisClient xredis.Client
	ttl         time.Duration
}

func NewRedisAddressCache(redisClient xredis.Client, ttl time.Duration) *redisAddressCache {
	return &redisAddressCache{redisClient: redisClient, ttl: ttl}
}

func (c *redisAddressCache) Get(ctx context.Context, key string) (string, bool) {
	address, err := c.redisClient.Get(ctx, key)
	if err != nil {
		if !xredis.IsNil(err) {
			xcontext.Logger(ctx).Warnf("Cannot get address from redis: %v", err)
		}
		return "", false
	}

	return address, address != ""
}

func (c *redisAddressCache) Set(ctx context.Context, key, address string) error {
	return c.redisClient.Set(ctx, key, address, c.ttl)
}

type memoryAddressCache struct {
	addresses *xsync.MapOf[string, string]
}

func NewMemoryAddressCache() *memoryAddressCache {
	return &memoryAddressCache{addresses: xsync.NewMapOf[string]()}
}

func (c *memoryAddressCache) Get(ctx context.Context, key string) (string, bool) {
	return c.addresses.Load(key)
}

func (c *memoryAddressCache) Set(ctx context.Context, key, address string) error {
	c.addresses.Store(key, address)
	return nil
}
