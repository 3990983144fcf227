// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

import (
	"fmt"
	"sort"
)

// Location is one node's placement: bucket type name to bucket name.
// Keys that are not recognized bucket types are carried but never acted on.
type Location map[string]string

// Bucket is a recognized entry of a Location.
type Bucket struct {
	Level Level
	Name  string
}

// ValidationError describes why a Location was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the minimal structure needed to build a hierarchy. Checks
// run in order and the first failure is returned.
func (loc Location) Validate() error {
	if len(loc) < 2 {
		return &ValidationError{Field: "location", Message: "must specify at least 2 buckets"}
	}

	if _, ok := loc[LevelHost.String()]; !ok {
		return &ValidationError{Field: "location", Message: "must specify a 'host' bucket"}
	}

	other := false
	for key := range loc {
		if l, ok := ParseLevel(key); ok && l != LevelHost {
			other = true
			break
		}
	}
	if !other {
		return &ValidationError{Field: "location", Message: "host specified but other bucket types are invalid"}
	}

	for _, b := range loc.Buckets() {
		if b.Name == "" {
			return &ValidationError{
				Field:   "location." + b.Level.String(),
				Message: fmt.Sprintf("bucket name for '%s' must not be empty", b.Level),
			}
		}
	}

	return nil
}

// Buckets returns the recognized entries of loc, most specific level first.
func (loc Location) Buckets() []Bucket {
	var out []Bucket
	for _, l := range levels {
		if name, ok := loc[l.String()]; ok {
			out = append(out, Bucket{Level: l, Name: name})
		}
	}
	return out
}

// UnknownKeys returns the keys of loc that are not bucket types, sorted.
func (loc Location) UnknownKeys() []string {
	var out []string
	for key := range loc {
		if _, ok := ParseLevel(key); !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Host returns the host bucket name, or "" if none is set.
func (loc Location) Host() string {
	return loc[LevelHost.String()]
}
