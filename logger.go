// logger.go
// Package filenamesimilarity provides shared utilities for the go_filename_similarity package.
package filenamesimilarity

import (
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
)

// createDefaultLogger creates and returns a default logger instance.
func createDefaultLogger() (ports.Logger, error) {
	return logger.NewStdLogger()
}
