// Package logger builds the process-wide structured logger.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap.Logger at the given verbosity ("debug", "info",
// "warn", "error", ...), adapted from fxnlabs-function-node's internal/logger.
func New(verbosity string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	return config.Build()
}
