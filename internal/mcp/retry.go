package mcp

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// Backoff names how the pause between load attempts grows
type Backoff string

const (
	BackoffExponential Backoff = "exponential"
	BackoffLinear      Backoff = "linear"
	BackoffFixed       Backoff = "fixed"
)

// ParseBackoff resolves a backoff name case-insensitively
func ParseBackoff(name string) (Backoff, error) {
	switch b := Backoff(strings.ToLower(strings.TrimSpace(name))); b {
	case BackoffExponential, BackoffLinear, BackoffFixed:
		return b, nil
	}
	return "", &ValidationError{
		Field:  "retry_backoff",
		Value:  name,
		Reason: "must be exponential, linear or fixed",
	}
}

// RetryPolicy controls how directory loads are repeated after transient
// storage failures
type RetryPolicy struct {
	Attempts  int
	Backoff   Backoff
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    bool
}

// DefaultRetryPolicy matches the environment defaults of Config
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  3,
	Backoff:   BackoffExponential,
	BaseDelay: 500 * time.Millisecond,
	MaxDelay:  5 * time.Second,
	Jitter:    true,
}

// pause returns the wait after the given failed attempt, starting at 1
func (p RetryPolicy) pause(attempt int) time.Duration {
	d := p.BaseDelay
	switch p.Backoff {
	case BackoffLinear:
		d *= time.Duration(attempt)
	case BackoffFixed:
	default:
		for range attempt - 1 {
			if (p.MaxDelay > 0 && d >= p.MaxDelay) || d > math.MaxInt64/2 {
				break
			}
			d *= 2
		}
	}
	if p.MaxDelay > 0 {
		d = min(d, p.MaxDelay)
	}
	if p.Jitter && d > 0 {
		// ±25%
		d += time.Duration((rand.Float64() - 0.5) * 0.5 * float64(d))
	}
	return d
}

// Retry runs fn until it succeeds, returns an error IsRetryable rejects or
// the policy runs out of attempts
func Retry(ctx context.Context, policy RetryPolicy, fn func(attempt int) error) error {
	attempts := max(policy.Attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(attempt); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			return &RetryableError{Err: err, Attempts: attempts}
		}

		timer := time.NewTimer(policy.pause(attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}
}
