// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LeeDigitalWorks/cephcrush/pkg/executor"
	"github.com/LeeDigitalWorks/cephcrush/pkg/logger"
)

// StructureDocURL documents the valid CRUSH bucket types.
const StructureDocURL = "http://docs.ceph.com/docs/master/rados/operations/crush-map/#crush-structure"

// ErrNoValidBucketType is returned when a build processes no bucket at all.
var ErrNoValidBucketType = errors.New("no valid CRUSH bucket type found, valid buckets can be found at " + StructureDocURL)

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// Program is the cluster management binary. Defaults to "ceph".
	Program string

	// AbortOnFailure stops the build at the first command that exits
	// non-zero. By default every command is run and the last one decides
	// the reported status.
	AbortOnFailure bool
}

// Step is one executed command and what it produced.
type Step struct {
	Command  Command
	Args     []string
	Output   executor.Output
	Duration time.Duration
}

// Failed reports whether the command exited non-zero.
func (s Step) Failed() bool {
	return s.Output.ExitCode != 0
}

// BuildState is the outcome of one Build call. It belongs to that call only.
type BuildState struct {
	// Previous is the last level processed, empty if none was.
	Previous Level

	// Steps lists every executed command in order.
	Steps []Step

	// Failures lists the steps that exited non-zero.
	Failures []Step

	// Aborted is set when AbortOnFailure stopped the build early.
	Aborted bool

	// Unstarted is the argument vector of the command the executor could
	// not run, if any. It is not part of Steps.
	Unstarted []string
}

// Last returns the most recently executed step.
func (s *BuildState) Last() (Step, bool) {
	if len(s.Steps) == 0 {
		return Step{}, false
	}
	return s.Steps[len(s.Steps)-1], true
}

// Builder creates and links the buckets of a Location.
type Builder struct {
	exec   executor.Executor
	config BuilderConfig
}

// NewBuilder creates a Builder issuing commands through exec.
func NewBuilder(exec executor.Executor, config BuilderConfig) *Builder {
	if config.Program == "" {
		config.Program = DefaultProgram
	}
	return &Builder{exec: exec, config: config}
}

// Args returns the argument vector the builder would run for c.
func (b *Builder) Args(c Command) []string {
	return c.Args(b.config.Program)
}

// Plan returns the commands that build the hierarchy for loc, in execution
// order. It does not validate loc.
func Plan(cluster string, loc Location) []Command {
	var cmds []Command
	walk(cluster, loc, func(c Command) bool {
		cmds = append(cmds, c)
		return true
	})
	return cmds
}

// walk visits the recognized levels of loc from most specific to most
// general. Every present level yields an add-bucket command, followed by a
// move of the previously visited bucket under it. It stops early when visit
// returns false and returns the last level it processed.
func walk(cluster string, loc Location, visit func(Command) bool) Level {
	var previous Level
	for _, level := range levels {
		name, ok := loc[level.String()]
		if !ok {
			continue
		}

		if !visit(AddBucket(cluster, name, level)) {
			return level
		}

		if previous != "" {
			if !visit(Move(cluster, loc[previous.String()], level, name)) {
				return level
			}
		}

		previous = level
	}
	return previous
}

// Build runs the commands for loc against cluster. A non-zero exit code does
// not stop the build unless AbortOnFailure is set. An error is returned when
// a command could not be run at all or when no bucket type was processed; the
// returned state is valid in both cases.
func (b *Builder) Build(ctx context.Context, cluster string, loc Location) (*BuildState, error) {
	log := logger.Ctx(ctx)
	state := &BuildState{}

	var execErr error
	state.Previous = walk(cluster, loc, func(c Command) bool {
		step, err := b.run(ctx, c)
		if err != nil {
			CommandsTotal.WithLabelValues(string(c.Subcommand), "error").Inc()
			state.Unstarted = b.Args(c)
			execErr = fmt.Errorf("run %q: %w", c.String(), err)
			return false
		}

		state.Steps = append(state.Steps, step)
		if step.Failed() {
			CommandsTotal.WithLabelValues(string(c.Subcommand), "nonzero").Inc()
			state.Failures = append(state.Failures, step)
			log.Warn().
				Str("command", c.String()).
				Int("rc", step.Output.ExitCode).
				Bytes("stderr", step.Output.Stderr).
				Msg("CRUSH command exited non-zero")
			if b.config.AbortOnFailure {
				state.Aborted = true
				return false
			}
			return true
		}

		CommandsTotal.WithLabelValues(string(c.Subcommand), "ok").Inc()
		return true
	})

	if execErr != nil {
		return state, execErr
	}
	if state.Previous == "" {
		return state, ErrNoValidBucketType
	}
	return state, nil
}

func (b *Builder) run(ctx context.Context, c Command) (Step, error) {
	args := b.Args(c)
	logger.Ctx(ctx).Debug().Strs("args", args).Msg("running CRUSH command")

	start := time.Now()
	out, err := b.exec.Execute(ctx, args)
	elapsed := time.Since(start)
	CommandDuration.WithLabelValues(string(c.Subcommand)).Observe(elapsed.Seconds())

	if err != nil {
		return Step{}, err
	}
	return Step{Command: c, Args: args, Output: out, Duration: elapsed}, nil
}
