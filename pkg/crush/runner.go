// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

import (
	"context"
	"errors"
	"time"

	crushctx "github.com/LeeDigitalWorks/cephcrush/pkg/context"
	"github.com/LeeDigitalWorks/cephcrush/pkg/logger"
)

// Request is one node's run.
type Request struct {
	Cluster  string
	Location Location

	// Check reports what would run without executing anything.
	Check bool
}

// Runner validates a location, builds its hierarchy and assembles the result.
type Runner struct {
	builder *Builder
	now     func() time.Time
}

// NewRunner creates a Runner around builder.
func NewRunner(builder *Builder) *Runner {
	return &Runner{builder: builder, now: time.Now}
}

// Run processes req. It never returns nil; failures are described by the
// result's RC, Msg and Err.
func (r *Runner) Run(ctx context.Context, req Request) *Result {
	if req.Cluster == "" {
		req.Cluster = DefaultCluster
	}

	ctx, runID := crushctx.WithRunID(ctx)
	res := &Result{RunID: runID, Host: req.Location.Host()}
	log := logger.Ctx(ctx).With().
		Str("run_id", res.RunID).
		Str("cluster", req.Cluster).
		Str("host", res.Host).
		Logger()
	ctx = logger.WithLogger(ctx, &log)

	defer func() {
		LastRunTimestamp.SetToCurrentTime()
	}()

	if err := req.Location.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			res.Stdout = verr.Message
		} else {
			res.Stdout = err.Error()
		}
		res.RC = 1
		res.err = err
		RunsTotal.WithLabelValues("invalid").Inc()
		log.Error().Err(err).Msg("invalid CRUSH location")
		return res
	}

	if unknown := req.Location.UnknownKeys(); len(unknown) > 0 {
		log.Warn().Strs("keys", unknown).Msg("ignoring unrecognized bucket types")
	}

	if req.Check {
		for _, c := range Plan(req.Cluster, req.Location) {
			res.Planned = append(res.Planned, r.builder.Args(c))
		}
		RunsTotal.WithLabelValues("check").Inc()
		log.Info().Int("commands", len(res.Planned)).Msg("check mode, nothing executed")
		return res
	}

	start := r.now()
	state, err := r.builder.Build(ctx, req.Cluster, req.Location)
	res.setTiming(start, r.now())

	for _, f := range state.Failures {
		res.Failures = append(res.Failures, StepFailure{
			Cmd:    f.Args,
			RC:     f.Output.ExitCode,
			Stderr: trimNewlines(f.Output.Stderr),
		})
	}

	if last, ok := state.Last(); ok {
		res.Cmd = last.Args
		res.RC = last.Output.ExitCode
		res.setOutput(last.Output.Stdout, last.Output.Stderr)
		res.Changed = true
	}

	switch {
	case errors.Is(err, ErrNoValidBucketType):
		res.Stdout = err.Error()
		res.RC = 1
		res.err = err
	case err != nil:
		if state.Unstarted != nil {
			res.Cmd = state.Unstarted
			res.setOutput(nil, nil)
		}
		res.Failed = true
		res.Msg = err.Error()
		res.RC = 1
		res.err = err
	case res.RC != 0:
		res.Failed = true
		res.Msg = MsgNonZeroReturn
		res.err = &ExecutionError{Cmd: res.Cmd, RC: res.RC, Stderr: res.Stderr}
	}

	if res.err != nil {
		RunsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(res.err).Int("rc", res.RC).Msg("CRUSH hierarchy build failed")
		return res
	}

	RunsTotal.WithLabelValues("changed").Inc()
	log.Info().
		Int("commands", len(state.Steps)).
		Str("delta", res.Delta).
		Msg("CRUSH hierarchy built")
	return res
}
