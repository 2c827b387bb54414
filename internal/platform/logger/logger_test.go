package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelByEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantLevel zapcore.Level
	}{
		{"Production defaults to info", Config{Environment: EnvironmentProduction}, zapcore.InfoLevel},
		{"Staging defaults to info", Config{Environment: EnvironmentStaging}, zapcore.InfoLevel},
		{"Development defaults to debug", Config{Environment: EnvironmentDevelopment}, zapcore.DebugLevel},
		{"Local defaults to debug", Config{Environment: EnvironmentLocal}, zapcore.DebugLevel},
		{"Explicit level wins", Config{Environment: EnvironmentLocal, Level: "warn"}, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, level, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tt.wantLevel, level.Level())
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, _, err := New(Config{Environment: "moon"})
	assert.ErrorContains(t, err, "invalid environment")

	_, _, err = New(Config{Environment: EnvironmentProduction, Level: "loud"})
	assert.ErrorContains(t, err, "invalid level")
}

func TestNew_LevelIsAdjustable(t *testing.T) {
	log, level, err := New(Config{Environment: EnvironmentProduction})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	level.SetLevel(zapcore.DebugLevel)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
