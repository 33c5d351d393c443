// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// BackoffPolicy bounds one retry loop: at most MaxAttempts tries, delays
// starting at BaseDelay and growing by Multiplier, with up to Jitter of
// randomization on each delay.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Jitter      time.Duration
}

// ForkVerifyPolicy matches the hosting platform's asynchronous fork
// completion: five attempts, 3s base, 1.5x growth, up to 1s jitter.
func ForkVerifyPolicy() BackoffPolicy {
	return BackoffPolicy{MaxAttempts: 5, BaseDelay: 3 * time.Second, Multiplier: 1.5, Jitter: time.Second}
}

// BranchCreatePolicy covers ref creation and pull-request submission: five
// attempts, 2s base, doubling.
func BranchCreatePolicy() BackoffPolicy {
	return BackoffPolicy{MaxAttempts: 5, BaseDelay: 2 * time.Second, Multiplier: 2}
}

// Permanent marks err as non-retryable so RetryWithBackoff stops immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// RetryWithBackoff runs op until it succeeds, returns a permanent error, or
// the policy's attempt cap is exhausted. notify, when non-nil, observes each
// failed attempt before the next delay so callers can report "attempt N of M".
func RetryWithBackoff[T any](ctx context.Context, policy BackoffPolicy, notify func(attempt int, err error), op func() (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.BaseDelay
	eb.Multiplier = policy.Multiplier
	eb.RandomizationFactor = 0
	if policy.Jitter > 0 && policy.BaseDelay > 0 {
		eb.RandomizationFactor = float64(policy.Jitter) / float64(policy.BaseDelay)
	}

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err != nil && notify != nil {
			notify(attempt, err)
		}
		return v, err
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(uint(policy.MaxAttempts)))
}
