// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled limits how fast commands reach the wrapped Executor.
type Throttled struct {
	next    Executor
	limiter *rate.Limiter
}

// NewThrottled wraps next so that at most perSecond commands start each
// second. A non-positive perSecond returns next unchanged.
func NewThrottled(next Executor, perSecond float64) Executor {
	if perSecond <= 0 {
		return next
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (t *Throttled) Execute(ctx context.Context, args []string) (Output, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return Output{}, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.Execute(ctx, args)
}
