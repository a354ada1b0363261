package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	prevInfo, prevFatal := InfoLogger, FatalLogger
	t.Cleanup(func() { InfoLogger, FatalLogger = prevInfo, prevFatal })

	l, err := New(Config{Level: "warn"})
	require.NoError(t, err)
	assert.Same(t, l, InfoLogger)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestHelpersWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("hello %s", "world")
		Error("oops %d", 1)
	})
}
