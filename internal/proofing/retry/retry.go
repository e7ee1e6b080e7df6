// Package retry runs an operation under a bounded attempt budget. Errors are
// classified as transient (retried) or fatal (returned at once); after the
// final attempt the last error is returned unchanged.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"idproof/internal/proofing"
)

// DefaultMaxAttempts is the total number of attempts, including the first.
const DefaultMaxAttempts = 3

// Verdict is the classification of one attempt.
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictRetry
	VerdictFatal
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictRetry:
		return "retry"
	default:
		return "fatal"
	}
}

// Policy configures an executor. The zero value is usable and behaves like
// Default.
type Policy struct {
	// MaxAttempts bounds the total number of attempts.
	MaxAttempts int
	// Retryable decides whether an error is transient.
	Retryable func(error) bool
	// Backoff builds the wait schedule for one Do call.
	Backoff func() backoff.BackOff
	// OnRetry is invoked before each retry with the 1-based attempt that failed.
	OnRetry func(attempt int, err error)
}

// Default retries transient transport errors (timeouts and connection
// failures) up to three attempts with no wait in between.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Retryable:   proofing.IsRetryable,
		Backoff:     NoDelay,
	}
}

// NoDelay retries immediately.
func NoDelay() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

// Exponential waits between attempts with jittered exponential growth capped
// at maxInterval.
func Exponential(initial, maxInterval time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.MaxInterval = maxInterval
		b.MaxElapsedTime = 0
		return b
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Retryable == nil {
		p.Retryable = proofing.IsRetryable
	}
	if p.Backoff == nil {
		p.Backoff = NoDelay
	}
	return p
}

// Classify returns the verdict for err under this policy.
func (p Policy) Classify(err error) Verdict {
	if err == nil {
		return VerdictOK
	}
	if errors.Is(err, context.Canceled) {
		return VerdictFatal
	}
	if p.withDefaults().Retryable(err) {
		return VerdictRetry
	}
	return VerdictFatal
}

// Do runs op until it succeeds, fails fatally, or the attempt budget is
// spent. Cancelling ctx stops further attempts; the cancellation is joined
// with the last attempt's error.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	b := p.Backoff()
	b.Reset()

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if p.Classify(err) == VerdictFatal || attempt >= p.MaxAttempts {
			return zero, err
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return zero, err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if cerr := sleep(ctx, wait); cerr != nil {
			return zero, errors.Join(cerr, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
