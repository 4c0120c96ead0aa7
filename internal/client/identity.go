package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/questx-lab/persuade-agent/internal/common"
	"github.com/questx-lab/persuade-agent/pkg/api/farcaster"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

// Identity is what is known about a reply author.
type Identity struct {
	Username string
	FID      int64
}

// SyntheticUsernamePrefix is prepended to the numeric id of an author whose
// username is unknown.
const SyntheticUsernamePrefix = "user_"

// ResolvedFID returns the known fid, or the fid encoded in a synthetic
// username.
func (i Identity) ResolvedFID() int64 {
	if i.FID != 0 {
		return i.FID
	}

	if s, ok := strings.CutPrefix(i.Username, SyntheticUsernamePrefix); ok {
		if fid, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fid
		}
	}

	return 0
}

type IdentityCaller interface {
	ResolveAddress(ctx context.Context, identity Identity) (string, error)
}

type UserFinder interface {
	UserByFID(ctx context.Context, fid int64) (farcaster.User, error)
	UserByUsername(ctx context.Context, username string) (farcaster.User, error)
}

type identityCaller struct {
	users UserFinder
	cache AddressCache
}

func NewIdentityCaller(users UserFinder, cache AddressCache) *identityCaller {
	return &identityCaller{users: users, cache: cache}
}

func (c *identityCaller) ResolveAddress(ctx context.Context, identity Identity) (string, error) {
	fid := identity.ResolvedFID()

	key := common.RedisKeyAddressByUsername(identity.Username)
	if fid != 0 {
		key = common.RedisKeyAddressByFID(fid)
	}

	if address, ok := c.cache.Get(ctx, key); ok {
		return address, nil
	}

	var user farcaster.User
	var err error
	if fid != 0 {
		user, err = c.users.UserByFID(ctx, fid)
	} else {
		user, err = c.users.UserByUsername(ctx, identity.Username)
	}
	if err != nil {
		return "", err
	}

	address := user.PreferredAddress()
	if address == "" {
		return "", fmt.Errorf("user %s has no address", identity.Username)
	}

	if err := c.cache.Set(ctx, key, address); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache address of %s: %v", identity.Username, err)
	}

	return address, nil
}
