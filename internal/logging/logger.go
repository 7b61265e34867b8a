// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavor.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// Quiet raises the level to error. Verbose wins if both are set.
	Quiet bool
	// JSON switches from the console encoder to JSON lines.
	JSON bool
}

// New builds a logger writing to stderr, so stdout stays free for command output.
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.JSON {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
		config.DisableCaller = true
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	switch {
	case opts.Verbose:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case opts.Quiet:
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
