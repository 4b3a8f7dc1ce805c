// Package retry runs an operation under a bounded retry policy.
package retry

import (
	"context"
	"errors"
	"log"
	"time"
)

// Backoff computes the wait after the given failed attempt (1-indexed).
type Backoff func(base time.Duration, attempt int) time.Duration

// Fixed waits the base delay after every failure.
func Fixed(base time.Duration, _ int) time.Duration { return base }

// Progressive waits base*attempt, so the third retry waits three times as long
// as the first.
func Progressive(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// Policy bounds how an operation is retried.
type Policy struct {
	Name        string
	MaxAttempts int
	Delay       time.Duration
	Backoff     Backoff
	// Retryable reports whether an error is worth another attempt.
	// Nil retries everything except permanent and context errors.
	Retryable func(error) bool
}

// Phase is the policy for top-level pipeline phases: the first call plus
// five retries with a progressive delay.
func Phase(name string, delay time.Duration) Policy {
	return Policy{Name: name, MaxAttempts: 6, Delay: delay, Backoff: Progressive}
}

// Step is the policy for fine-grained sub-steps: three attempts with a fixed delay.
func Step(name string, delay time.Duration) Policy {
	return Policy{Name: name, MaxAttempts: 3, Delay: delay, Backoff: Fixed}
}

// Wait returns the delay applied after the given failed attempt.
func (p Policy) Wait(attempt int) time.Duration {
	if p.Backoff == nil {
		return p.Delay
	}
	return p.Backoff(p.Delay, attempt)
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return true
}

// Do runs op until it succeeds, returns a non-retryable error, or the policy's
// attempts are exhausted. The last error is returned on exhaustion.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !p.retryable(err) || attempt == attempts {
			break
		}

		wait := p.Wait(attempt)
		log.Printf("%s failed (attempt %d/%d): %v; retrying in %s", p.label(), attempt, attempts, err, wait)
		if err := Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// Run is Do for operations that only return an error.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func (p Policy) label() string {
	if p.Name == "" {
		return "operation"
	}
	return p.Name
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
