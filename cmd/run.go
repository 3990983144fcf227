// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	crushctx "github.com/LeeDigitalWorks/cephcrush/pkg/context"
	"github.com/LeeDigitalWorks/cephcrush/pkg/crush"
	"github.com/LeeDigitalWorks/cephcrush/pkg/debug"
	"github.com/LeeDigitalWorks/cephcrush/pkg/executor"
	"github.com/LeeDigitalWorks/cephcrush/pkg/logger"
	"github.com/LeeDigitalWorks/cephcrush/pkg/utils"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

// runOptions are the settings shared by commands that execute CRUSH changes.
type runOptions struct {
	cluster        string
	program        string
	prefix         []string
	abortOnFailure bool
	commandTimeout time.Duration
	rateLimit      float64
	check          bool
	output         string
	metricsFile    string
	pushgateway    string
	runID          string
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("cluster", crush.DefaultCluster, "Ceph cluster name")
	cmd.Flags().String("ceph-binary", crush.DefaultProgram, "Path to the ceph CLI")
	cmd.Flags().StringSlice("exec-prefix", nil, "Command prefix for every ceph call, e.g. 'docker,exec,ceph-mon-node1'")
	cmd.Flags().Bool("abort-on-failure", false, "Stop at the first command that exits non-zero and report it")
	cmd.Flags().Duration("command-timeout", 0, "Timeout for a single ceph command (0 = no timeout)")
	cmd.Flags().Float64("rate-limit", 0, "Maximum ceph commands per second (0 = unlimited)")
	cmd.Flags().Bool("check", false, "Validate and report the planned commands without executing them")
	cmd.Flags().StringP("output", "o", "json", "Output format (json, text)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this node-exporter textfile")
	cmd.Flags().String("pushgateway", "", "Push Prometheus metrics to this Pushgateway URL")
	cmd.Flags().String("run-id", "", "Correlation ID for results and logs (default: random per host)")
}

func loadRunOptions(cmd *cobra.Command) (runOptions, error) {
	f := NewFlagLoader(cmd)
	opts := runOptions{
		cluster:        f.String("cluster"),
		program:        f.String("ceph-binary"),
		prefix:         f.StringSlice("exec-prefix"),
		abortOnFailure: f.Bool("abort-on-failure"),
		commandTimeout: f.Duration("command-timeout"),
		rateLimit:      f.Float64("rate-limit"),
		check:          f.Bool("check"),
		output:         f.String("output"),
		metricsFile:    f.String("metrics-file"),
		pushgateway:    f.String("pushgateway"),
		runID:          f.String("run-id"),
	}

	switch opts.output {
	case outputJSON, outputText:
	default:
		return opts, fmt.Errorf("unknown output format %q", opts.output)
	}

	if opts.metricsFile != "" {
		opts.metricsFile = utils.ResolvePath(opts.metricsFile)
		if err := utils.CheckWritableDir(filepath.Dir(opts.metricsFile)); err != nil {
			return opts, fmt.Errorf("metrics file directory: %w", err)
		}
	}
	return opts, nil
}

func (o runOptions) runner() *crush.Runner {
	exec := executor.NewThrottled(executor.New(executor.Config{
		Prefix:  o.prefix,
		Timeout: o.commandTimeout,
	}), o.rateLimit)

	return crush.NewRunner(crush.NewBuilder(exec, crush.BuilderConfig{
		Program:        o.program,
		AbortOnFailure: o.abortOnFailure,
	}))
}

// context attaches the configured run ID to ctx.
func (o runOptions) context(ctx context.Context) context.Context {
	if o.runID == "" {
		return ctx
	}
	return crushctx.FromRunID(ctx, o.runID)
}

// exportMetrics writes metrics to the configured sinks. Failures are logged
// and never fail the run.
func (o runOptions) exportMetrics(instance string) {
	if o.metricsFile != "" {
		if err := debug.WriteTextfile(o.metricsFile); err != nil {
			logger.Warn().Err(err).Str("path", o.metricsFile).Msg("Failed to write metrics")
		}
	}
	if o.pushgateway != "" {
		if err := debug.Push(o.pushgateway, instance); err != nil {
			logger.Warn().Err(err).Str("url", o.pushgateway).Msg("Failed to push metrics")
		}
	}
}

// captureFailure reports execution failures to Sentry. Invalid locations are
// user errors and are not reported.
func captureFailure(ctx context.Context, res *crush.Result) {
	err := res.Err()
	if err == nil {
		return
	}
	var verr *crush.ValidationError
	if errors.As(err, &verr) || errors.Is(err, crush.ErrNoValidBucketType) {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", res.RunID)
		scope.SetTag("host", res.Host)
		scope.SetContext("crush", sentry.Context{
			"cmd":    res.Cmd,
			"rc":     res.RC,
			"stderr": res.Stderr,
		})
		hub.CaptureException(err)
	})
}
