package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/dgallion1/scoregest/internal/pathstore"
)

// MaxRetries bounds attempts per pathstore call.
const MaxRetries = 3

// IsRetryable reports whether a pathstore call failed transiently: a
// network error, a 5xx or a 429.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *pathstore.StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError || se.Code == http.StatusTooManyRequests
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter, doubling
// from base and capped at 30 times base.
func Backoff(attempt int, base time.Duration) time.Duration {
	d := base << uint(attempt)
	if limit := 30 * base; d > limit {
		d = limit
	}
	if d <= 1 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d)/2))
}

// withRetry runs fn until it succeeds, fails permanently, or MaxRetries is
// reached.
func withRetry(ctx context.Context, log *slog.Logger, base time.Duration, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		log.Warn("retryable pathstore error", "op", op, "attempt", attempt, "error", err)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(Backoff(attempt, base)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
