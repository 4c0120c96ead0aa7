package client

import (
	"context"
	"errors"
	"testing"

	"github.com/questx-lab/persuade-agent/pkg/api/farcaster"
	"github.com/stretchr/testify/require"
)

type mockUserFinder struct {
	byFID      map[int64]farcaster.User
	byUsername map[string]farcaster.User
	calls      int
}

func (m *mockUserFinder) UserByFID(ctx context.Context, fid int64) (farcaster.User, error) {
	m.calls++
	if u, ok := m.byFID[fid]; ok {
		return u, nil
	}
	return farcaster.User{}, errors.New("not found")
}

func (m *mockUserFinder) UserByUsername(ctx context.Context, username string) (farcaster.User, error) {
	m.calls++
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return farcaster.User{}, errors.New("not found")
}

func TestIdentity_ResolvedFID(t *testing.T) {
	require.Equal(t, int64(5), Identity{Username: "alice", FID: 5}.ResolvedFID())
	require.Equal(t, int64(1234), Identity{Username: "user_1234"}.ResolvedFID())
	require.Equal(t, int64(0), Identity{Username: "user_abc"}.ResolvedFID())
	require.Equal(t, int64(0), Identity{Username: "alice"}.ResolvedFID())
}

func TestIdentityCaller_ResolveAddress(t *testing.T) {
	finder := &mockUserFinder{
		byFID: map[int64]farcaster.User{
			1234: {FID: 1234, CustodyAddress: "0xcustody"},
		},
		byUsername: map[string]farcaster.User{
			"alice": {
				FID:               1,
				Username:          "alice",
				CustodyAddress:    "0xcustody-alice",
				VerifiedAddresses: farcaster.VerifiedAddresses{EthAddresses: []string{"0xverified-alice"}},
			},
			"noaddr": {FID: 2, Username: "noaddr"},
		},
	}
	caller := NewIdentityCaller(finder, NewMemoryAddressCache())
	ctx := context.Background()

	address, err := caller.ResolveAddress(ctx, Identity{Username: "user_1234"})
	require.NoError(t, err)
	require.Equal(t, "0xcustody", address)

	address, err = caller.ResolveAddress(ctx, Identity{Username: "alice"})
	require.NoError(t, err)
	require.Equal(t, "0xverified-alice", address)
	require.Equal(t, 2, finder.calls)

	// Cached.
	address, err = caller.ResolveAddress(ctx, Identity{Username: "alice"})
	require.NoError(t, err)
	require.Equal(t, "0xverified-alice", address)
	require.Equal(t, 2, finder.calls)

	_, err = caller.ResolveAddress(ctx, Identity{Username: "noaddr"})
	require.Error(t, err)

	_, err = caller.ResolveAddress(ctx, Identity{Username: "ghost"})
	require.Error(t, err)
}
