package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want zapcore.Level
	}{
		{name: "default", opts: Options{}, want: zapcore.WarnLevel},
		{name: "verbose", opts: Options{Verbose: true}, want: zapcore.DebugLevel},
		{name: "quiet", opts: Options{Quiet: true}, want: zapcore.ErrorLevel},
		{name: "verbose wins", opts: Options{Verbose: true, Quiet: true}, want: zapcore.DebugLevel},
		{name: "json", opts: Options{JSON: true}, want: zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.opts)
			require.NoError(t, err)

			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}
