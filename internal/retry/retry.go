// Package retry retries operations that fail transiently, with exponential backoff.
//
// Its main use is starting a test binary that the build is still writing: exec then fails
// with ETXTBSY for a short while, and trying again a few milliseconds later succeeds.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"syscall"
	"time"
)

// Config defines the backoff schedule. The zero value is not usable.
type Config struct {
	// MaxAttempts is the maximum number of calls.
	MaxAttempts int

	// InitialBackoff is the wait before the second call. Each later wait doubles it.
	InitialBackoff time.Duration

	// MaxBackoff caps a single wait. Zero means no cap.
	MaxBackoff time.Duration

	// Jitter adds up to this fraction of the wait, growing with the attempt number.
	Jitter float64
}

// Launch is the schedule for starting a process whose executable may still be open for
// writing.
var Launch = Config{
	MaxAttempts:    5,
	InitialBackoff: 10 * time.Millisecond,
	MaxBackoff:     200 * time.Millisecond,
	Jitter:         0.2,
}

// ShouldRetryFunc reports whether err is worth another attempt.
type ShouldRetryFunc func(error) bool

// Do calls fn until it succeeds, shouldRetry rejects its error, the attempts run out or ctx
// is done. A nil shouldRetry retries every error.
func Do(ctx context.Context, cfg Config, fn func() error, shouldRetry ShouldRetryFunc) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(cfg, attempt)):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// TextFileBusy reports whether err is ETXTBSY, returned by exec while another process holds
// the executable open for writing.
func TextFileBusy(err error) bool {
	return errors.Is(err, syscall.ETXTBSY)
}

// backoff returns InitialBackoff * 2^(attempt-1), capped, plus jitter.
func backoff(cfg Config, attempt int) time.Duration {
	wait := time.Duration(math.Pow(2, float64(attempt-1)) * float64(cfg.InitialBackoff))

	if cfg.MaxBackoff > 0 && wait > cfg.MaxBackoff {
		wait = cfg.MaxBackoff
	}

	if cfg.Jitter > 0 {
		wait += time.Duration(float64(wait) * cfg.Jitter * float64(attempt) / float64(cfg.MaxAttempts))
	}

	return wait
}
