// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor runs cluster administration commands as child processes.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Output is what a finished command produced.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Executor runs one command synchronously. A non-zero exit code is not an
// error; the error return is reserved for commands that could not be run at
// all.
type Executor interface {
	Execute(ctx context.Context, args []string) (Output, error)
}

// Config configures a process executor.
type Config struct {
	// Prefix is prepended to every argument vector, e.g.
	// ["docker", "exec", "ceph-mon-node1"] to run inside a container.
	Prefix []string

	// Timeout bounds a single command. Zero means no timeout.
	Timeout time.Duration

	// Env is appended to the inherited environment.
	Env []string
}

// Exec runs commands with os/exec.
type Exec struct {
	config Config
}

// New creates a process executor.
func New(config Config) *Exec {
	return &Exec{config: config}
}

// Execute runs args and waits for it to exit.
func (e *Exec) Execute(ctx context.Context, args []string) (Output, error) {
	argv := e.argv(args)
	if len(argv) == 0 {
		return Output{}, errors.New("empty command")
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(e.config.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.config.Env...)
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("%s: %w", argv[0], ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("%s: %w", argv[0], err)
	}
	return out, nil
}

func (e *Exec) argv(args []string) []string {
	if len(e.config.Prefix) == 0 {
		return args
	}
	argv := make([]string, 0, len(e.config.Prefix)+len(args))
	argv = append(argv, e.config.Prefix...)
	return append(argv, args...)
}
