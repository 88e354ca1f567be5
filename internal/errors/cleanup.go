// Package errors provides utilities for error handling in ctrun.
package errors

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// DeferClose properly closes an io.Closer with logging.
// Use this in defer statements to avoid suppressing close errors.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// DeferRemove removes a partially written file unless *keep is true.
// Use this in defer statements after creating an output file.
func DeferRemove(logger zerolog.Logger, path string, keep *bool) {
	if keep != nil && *keep {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove partial file")
	}
}
