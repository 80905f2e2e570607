//go:build !windows

package stderr

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedirect_LogsCapturedLines(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	c, err := Redirect(zap.New(core))
	require.NoError(t, err)

	fmt.Fprintln(os.Stderr, "ALSA lib pcm.c: underrun")
	fmt.Fprintln(os.Stderr, "   ")
	fmt.Fprintln(os.Stderr, "second line")
	require.NoError(t, c.Close())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ALSA lib pcm.c: underrun", entries[0].ContextMap()["stderr"])
	assert.Equal(t, "second line", entries[1].ContextMap()["stderr"])
}

func TestRedirect_CloseRestores(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	c, err := Redirect(zap.New(core))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	fmt.Fprint(os.Stderr, "")
	assert.Zero(t, logs.Len())
}
