package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit_NivelPorEntorno(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	Init()

	require.NotNil(t, Logger())
	assert.True(t, Logger().Core().Enabled(zapcore.DebugLevel))
	assert.NotNil(t, Sugar())
}

func TestInit_NivelPorDefecto(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	Init()

	require.NotNil(t, Logger())
	assert.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Logger().Core().Enabled(zapcore.InfoLevel))
}
