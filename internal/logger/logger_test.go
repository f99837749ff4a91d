package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		env, level string
		enabled    zapcore.Level
		disabled   zapcore.Level
	}{
		{"dev", "debug", zapcore.DebugLevel, zapcore.Level(-2)},
		{"production", "warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"prod", " ERROR ", zapcore.ErrorLevel, zapcore.WarnLevel},
		{"dev", "chatty", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := New(tt.env, tt.level)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.disabled))
		})
	}
}
