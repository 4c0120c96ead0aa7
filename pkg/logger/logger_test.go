package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLoggerWithWriter("warning", buf)

	l.Infof("hidden %d", 1)
	require.Empty(t, buf.String())

	l.Warnf("shown %d", 2)
	require.Contains(t, buf.String(), "shown 2")
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLoggerWithWriter("debug", buf).With("reply_id", "0xabc")

	l.Debugf("evaluated")
	require.Contains(t, buf.String(), "reply_id=0xabc")
	require.Contains(t, buf.String(), "evaluated")
}
