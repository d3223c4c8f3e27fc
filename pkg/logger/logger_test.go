package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitSetsLevel(t *testing.T) {
	require.NoError(t, Init("debug"))
	require.True(t, Logger().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn"))
	require.False(t, Logger().Core().Enabled(zapcore.InfoLevel))
	require.True(t, Logger().Core().Enabled(zapcore.WarnLevel))
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init("nonsense"))
	require.True(t, Logger().Core().Enabled(zapcore.InfoLevel))
	require.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
}

func TestWithModuleReturnsChild(t *testing.T) {
	require.NoError(t, Init("info"))
	require.NotNil(t, WithModule("beta"))
}
