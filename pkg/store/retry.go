package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// RetryConfig bounds the retry policy applied around a backend.
type RetryConfig struct {
	MaxAttempts     int // 1 disables retries
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns three attempts with a short exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

type retryingStore struct {
	next   Store
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry re-attempts writes that failed with a retryable kind. Because
// record ids are never reused, repeating a write cannot clobber another
// record. Attempts stop early when ctx is done.
func WithRetry(s Store, cfg RetryConfig, logger *slog.Logger) Store {
	if cfg.MaxAttempts <= 1 {
		return s
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retryingStore{next: s, cfg: cfg, logger: logger.With("component", "store.retry")}
}

func (r *retryingStore) Put(ctx context.Context, rec contact.Record) error {
	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		b.InitialInterval = r.cfg.InitialInterval
	}
	if r.cfg.MaxInterval > 0 {
		b.MaxInterval = r.cfg.MaxInterval
	}

	var lastErr error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := r.next.Put(ctx, rec)
		if err == nil {
			return struct{}{}, nil
		}
		lastErr = err
		var se *Error
		if errors.As(err, &se) && se.Retryable() {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.logger.WarnContext(ctx, "store write failed, retrying",
				"id", rec.ID,
				"error", err,
				"backoff", next,
			)
		}),
	)
	if err == nil {
		return nil
	}

	// Retry returns the bare context error when ctx ends between attempts;
	// the last backend error is already classified and says more.
	if lastErr != nil {
		return lastErr
	}
	return err
}

func (r *retryingStore) Close() error {
	return Close(r.next)
}
