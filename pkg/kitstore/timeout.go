package kitstore

import (
	"context"
	"time"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/errors"
)

// timeoutStore bounds every operation of an inner store with a deadline.
type timeoutStore struct {
	inner   Store
	timeout time.Duration
}

// WithTimeout wraps a store so that every Load and Save is bounded by the
// given deadline. A non-positive timeout falls back to DefaultTimeout.
// Deadline overruns surface as TIMEOUT errors.
func WithTimeout(inner Store, timeout time.Duration) Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &timeoutStore{inner: inner, timeout: timeout}
}

func (s *timeoutStore) Load(ctx context.Context, userID string) (*brand.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cfg, err := s.inner.Load(ctx, userID)
	if err != nil {
		return nil, mapDeadline(ctx, err, "load kit")
	}
	return cfg, nil
}

func (s *timeoutStore) Save(ctx context.Context, userID string, cfg *brand.Config) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.inner.Save(ctx, userID, cfg); err != nil {
		return mapDeadline(ctx, err, "save kit")
	}
	return nil
}

func (s *timeoutStore) Close() error {
	return s.inner.Close()
}

func mapDeadline(ctx context.Context, err error, op string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s timed out", op)
	}
	return err
}

var _ Store = (*timeoutStore)(nil)
