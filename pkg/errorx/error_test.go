package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("cannot post: %w", New(ActiveChallengeExists, "challenge %q is still open", "x"))

	require.True(t, errors.Is(err, New(ActiveChallengeExists, "")))
	require.False(t, errors.Is(err, ErrNoActiveChallenge))
	require.True(t, HasCode(err, ActiveChallengeExists))
	require.False(t, HasCode(errors.New("plain"), ActiveChallengeExists))
	require.Equal(t, `cannot post: challenge "x" is still open`, err.Error())
}
