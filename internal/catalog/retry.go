package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	t "neotables/internal/types"
)

// Retry retries transient failures up to maxAttempts with exponential
// backoff starting at baseDelay. Not-found and permanent errors return
// immediately; a canceled context stops the loop.
func Retry(maxAttempts int, baseDelay time.Duration, log *zap.Logger) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(next Source) Source {
		return &retrying{next: next, max: maxAttempts, base: baseDelay, log: log}
	}
}

type retrying struct {
	next Source
	max  int
	base time.Duration
	log  *zap.Logger
}

func (r *retrying) Origin() t.Origin { return r.next.Origin() }
func (r *retrying) Key() string      { return r.next.Key() }

func (r *retrying) Fetch(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := r.do(ctx, "fetch", name, func() error {
		var err error
		body, err = r.next.Fetch(ctx, name)
		return err
	})
	return body, err
}

func (r *retrying) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := r.do(ctx, "list", prefix, func() error {
		var err error
		names, err = r.next.List(ctx, prefix)
		return err
	})
	return names, err
}

func (r *retrying) do(ctx context.Context, op, name string, call func() error) error {
	var last error
	for i := 0; i < r.max; i++ {
		err := call()
		if err == nil || !IsTransient(err) {
			return err
		}
		last = err
		if i == r.max-1 {
			break
		}
		delay := r.base * time.Duration(1<<i)
		r.log.Warn("transient source failure, retrying",
			zap.String("op", op),
			zap.String("name", name),
			zap.String("source", r.next.Key()),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", delay),
			zap.Error(err))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return last
}
