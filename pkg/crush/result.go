// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// MsgNonZeroReturn is the result message for a failed command.
const MsgNonZeroReturn = "non-zero return code"

// ExecutionError reports that the command deciding a run's status exited
// non-zero.
type ExecutionError struct {
	Cmd    []string
	RC     int
	Stderr string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", strings.Join(e.Cmd, " "), e.RC)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// StepFailure is a non-zero command observed during a run.
type StepFailure struct {
	Cmd    []string `json:"cmd"`
	RC     int      `json:"rc"`
	Stderr string   `json:"stderr,omitempty"`
}

// Result is the caller-visible record of one run.
type Result struct {
	RunID   string    `json:"run_id"`
	Host    string    `json:"host,omitempty"`
	Changed bool      `json:"changed"`
	Failed  bool      `json:"failed"`
	Msg     string    `json:"msg,omitempty"`
	Cmd     []string  `json:"cmd,omitempty"`
	Start   time.Time `json:"start,omitzero"`
	End     time.Time `json:"end,omitzero"`
	Delta   string    `json:"delta,omitempty"`
	RC      int       `json:"rc"`
	Stdout  string    `json:"stdout"`
	Stderr  string    `json:"stderr"`

	// Planned lists the commands a check run would have executed.
	Planned [][]string `json:"planned,omitempty"`

	// Failures lists every command that exited non-zero, including ones
	// before the last.
	Failures []StepFailure `json:"failures,omitempty"`

	err error
}

// Err returns the error behind a non-zero RC: a *ValidationError,
// ErrNoValidBucketType, an executor error or an *ExecutionError.
func (r *Result) Err() error {
	return r.err
}

// OK reports whether the run succeeded.
func (r *Result) OK() bool {
	return r.err == nil && r.RC == 0
}

func (r *Result) setTiming(start, end time.Time) {
	r.Start = start
	r.End = end
	r.Delta = end.Sub(start).String()
}

func (r *Result) setOutput(out []byte, errOut []byte) {
	r.Stdout = trimNewlines(out)
	r.Stderr = trimNewlines(errOut)
}

func trimNewlines(b []byte) string {
	return string(bytes.TrimRight(b, "\r\n"))
}
