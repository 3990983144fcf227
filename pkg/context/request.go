// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package context

import (
	"context"

	"github.com/google/uuid"
)

type RunID struct{}

// WithRunID returns the run ID carried by c, attaching a new one if c has
// none.
func WithRunID(c context.Context) (context.Context, string) {
	if id, ok := c.Value(RunID{}).(string); ok && id != "" {
		return c, id
	}
	newID := uuid.New().String()
	c = context.WithValue(c, RunID{}, newID)
	return c, newID
}

// FromRunID returns a copy of c carrying runID.
func FromRunID(c context.Context, runID string) context.Context {
	return context.WithValue(c, RunID{}, runID)
}
