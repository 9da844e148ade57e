package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the maximum number of attempts, including the first one.
	MaxAttempts int `mapstructure:"max_attempts" default:"10"`
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration `mapstructure:"initial_delay" default:"100ms"`
	// MaxDelay caps the wait between two attempts.
	MaxDelay time.Duration `mapstructure:"max_delay" default:"30s"`
	// Multiplier grows the delay after every retriable failure.
	Multiplier float64 `mapstructure:"multiplier" default:"2"`
	// Jitter randomizes each delay by +/- the given fraction (0 disables it).
	Jitter float64 `mapstructure:"jitter" default:"0"`

	// Notify, when set, is called before every wait with the failure and the delay.
	Notify func(err error, next time.Duration) `mapstructure:"-"`
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  10,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

// WithNotify returns a copy of the policy reporting scheduled retries to fn.
func (p Policy) WithNotify(fn func(err error, next time.Duration)) Policy {
	p.Notify = fn
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialDelay
	if exp.InitialInterval <= 0 {
		exp.InitialInterval = backoff.DefaultInitialInterval
	}
	exp.MaxInterval = p.MaxDelay
	if exp.MaxInterval < exp.InitialInterval {
		exp.MaxInterval = exp.InitialInterval
	}
	exp.Multiplier = p.Multiplier
	if exp.Multiplier < 1 {
		exp.Multiplier = 1
	}
	exp.RandomizationFactor = p.Jitter
	// Attempts are bounded by count, never by wall clock.
	exp.MaxElapsedTime = 0
	exp.Reset()

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do executes op until it succeeds, fails with an error shouldRetry rejects,
// runs out of attempts, or ctx is done. A nil shouldRetry means IsRetriable.
//
// When attempts are exhausted the last failure is returned wrapped in an
// *ExhaustedError.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), shouldRetry func(error) bool) (T, error) {
	if shouldRetry == nil {
		shouldRetry = IsRetriable
	}

	attempts := 0
	operation := func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		attempts++
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		if !shouldRetry(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	var notify backoff.Notify
	if p.Notify != nil {
		notify = backoff.Notify(p.Notify)
	}

	res, err := backoff.RetryNotifyWithData(operation, p.backOff(ctx), notify)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(err, ctxErr) {
			return res, fmt.Errorf("retry cancelled after %d attempt(s): %w", attempts, err)
		}
		if shouldRetry(err) {
			return res, fmt.Errorf("retry cancelled after %d attempt(s): %w: %w", attempts, ctxErr, err)
		}
	}
	if shouldRetry(err) {
		return res, &ExhaustedError{Attempts: attempts, Err: err}
	}
	return res, err
}
