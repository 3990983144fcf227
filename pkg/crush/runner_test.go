// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	crushctx "github.com/LeeDigitalWorks/cephcrush/pkg/context"
	"github.com/LeeDigitalWorks/cephcrush/pkg/debug"
	"github.com/LeeDigitalWorks/cephcrush/pkg/executor"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	prometheusgo "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(fake *fakeExecutor, cfg BuilderConfig) *Runner {
	r := NewRunner(NewBuilder(fake, cfg))
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * 250 * time.Millisecond)
	}
	return r
}

func TestRunner_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{"single bucket", Location{"rack": "rackA"}, "must specify at least 2 buckets"},
		{"missing host", Location{"rack": "rackA", "root": "default"}, "must specify a 'host' bucket"},
		{"host only", Location{"host": "node1"}, "must specify at least 2 buckets"},
		{"host with invalid types", Location{"host": "node1", "zone": "z"}, "host specified but other bucket types are invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFakeExecutor()
			res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{Location: tt.loc})

			assert.Equal(t, 1, res.RC)
			assert.Equal(t, tt.want, res.Stdout)
			assert.False(t, res.Changed)
			assert.False(t, res.OK())
			assert.Empty(t, fake.calls)

			var verr *ValidationError
			assert.ErrorAs(t, res.Err(), &verr)
		})
	}
}

func TestRunner_Success(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	fake.outputs["move rackA root=default"] = executor.Output{
		Stdout: []byte("moved item id -3 name 'rackA' to location {root=default} in crush map\r\n"),
		Stderr: []byte("\n"),
	}

	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Location: Location{"host": "node1", "rack": "rackA", "root": "default"},
	})

	require.True(t, res.OK())
	require.NoError(t, res.Err())
	assert.True(t, res.Changed)
	assert.False(t, res.Failed)
	assert.Equal(t, 0, res.RC)
	assert.Equal(t, "node1", res.Host)
	assert.Equal(t, "moved item id -3 name 'rackA' to location {root=default} in crush map", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Equal(t, []string{"ceph", "--cluster", "ceph", "osd", "crush", "move", "rackA", "root=default"}, res.Cmd)
	assert.Equal(t, "250ms", res.Delta)
	assert.True(t, res.End.After(res.Start))

	_, err := uuid.Parse(res.RunID)
	assert.NoError(t, err)

	require.Empty(t, cmp.Diff([]string{
		"add-bucket node1 host",
		"add-bucket rackA rack",
		"move node1 rack=rackA",
		"add-bucket default root",
		"move rackA root=default",
	}, fake.ops()))
}

func TestRunner_CallerRunID(t *testing.T) {
	t.Parallel()

	ctx := crushctx.FromRunID(context.Background(), "deploy-42")
	res := newTestRunner(newFakeExecutor(), BuilderConfig{}).Run(ctx, Request{
		Location: Location{"host": "node1", "rack": "rackA"},
	})
	assert.Equal(t, "deploy-42", res.RunID)
}

func TestRunner_DefaultCluster(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Location: Location{"host": "node1", "rack": "rackA"},
	})
	require.True(t, res.OK())
	for _, c := range fake.calls {
		assert.Equal(t, []string{"ceph", "--cluster", "ceph"}, c[:3])
	}
}

func TestRunner_LastCommandDecidesStatus(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	fake.outputs["add-bucket rackA rack"] = executor.Output{ExitCode: 22, Stderr: []byte("Error EINVAL\n")}

	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Cluster:  "ceph",
		Location: Location{"host": "node1", "rack": "rackA"},
	})

	// The failing add-bucket is followed by a successful move.
	assert.Equal(t, 0, res.RC)
	assert.True(t, res.OK())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 22, res.Failures[0].RC)
	assert.Equal(t, "Error EINVAL", res.Failures[0].Stderr)
	assert.Equal(t, []string{"ceph", "--cluster", "ceph", "osd", "crush", "add-bucket", "rackA", "rack"}, res.Failures[0].Cmd)
}

func TestRunner_ExecutionError(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	fake.outputs["move node1 rack=rackA"] = executor.Output{ExitCode: 2, Stderr: []byte("Error ENOENT: item node1 does not exist\n")}

	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Location: Location{"host": "node1", "rack": "rackA"},
	})

	assert.Equal(t, 2, res.RC)
	assert.True(t, res.Failed)
	assert.True(t, res.Changed)
	assert.Equal(t, MsgNonZeroReturn, res.Msg)
	assert.Equal(t, "Error ENOENT: item node1 does not exist", res.Stderr)

	var eerr *ExecutionError
	require.ErrorAs(t, res.Err(), &eerr)
	assert.Equal(t, 2, eerr.RC)
	assert.Equal(t, res.Cmd, eerr.Cmd)
	assert.Contains(t, eerr.Error(), "exit status 2")
}

func TestRunner_AbortOnFailureReportsFirstFailure(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	fake.outputs["add-bucket rackA rack"] = executor.Output{ExitCode: 13, Stderr: []byte("EACCES")}

	res := newTestRunner(fake, BuilderConfig{AbortOnFailure: true}).Run(context.Background(), Request{
		Location: Location{"host": "node1", "rack": "rackA", "root": "default"},
	})

	assert.Equal(t, 13, res.RC)
	assert.True(t, res.Failed)
	assert.Equal(t, []string{"ceph", "--cluster", "ceph", "osd", "crush", "add-bucket", "rackA", "rack"}, res.Cmd)
	assert.Len(t, fake.calls, 2)
}

func TestRunner_ExecutorError(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	fake.errs["add-bucket node1 host"] = errors.New("executable file not found")

	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Location: Location{"host": "node1", "rack": "rackA"},
	})

	assert.Equal(t, 1, res.RC)
	assert.True(t, res.Failed)
	assert.False(t, res.Changed)
	assert.Contains(t, res.Msg, "executable file not found")
	assert.Error(t, res.Err())
}

func TestRunner_ExecutorErrorReportsFailingCommand(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	fake.outputs["add-bucket node1 host"] = executor.Output{Stdout: []byte("added bucket node1 type host to crush map\n")}
	fake.errs["add-bucket rackA rack"] = errors.New("timeout")

	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Location: Location{"host": "node1", "rack": "rackA"},
	})

	assert.Equal(t, 1, res.RC)
	assert.True(t, res.Failed)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"ceph", "--cluster", "ceph", "osd", "crush", "add-bucket", "rackA", "rack"}, res.Cmd)
	assert.Empty(t, res.Stdout)
	assert.Contains(t, res.Msg, `run "add-bucket rackA rack": timeout`)
}

func TestRunner_CheckMode(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Cluster:  "backup",
		Location: Location{"host": "node1", "rack": "rackA"},
		Check:    true,
	})

	assert.True(t, res.OK())
	assert.False(t, res.Changed)
	assert.Equal(t, 0, res.RC)
	assert.Empty(t, fake.calls)
	require.Empty(t, cmp.Diff([][]string{
		{"ceph", "--cluster", "backup", "osd", "crush", "add-bucket", "node1", "host"},
		{"ceph", "--cluster", "backup", "osd", "crush", "add-bucket", "rackA", "rack"},
		{"ceph", "--cluster", "backup", "osd", "crush", "move", "node1", "rack=rackA"},
	}, res.Planned))
}

func TestRunner_CheckModeStillValidates(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{
		Location: Location{"host": "node1"},
		Check:    true,
	})

	assert.Equal(t, 1, res.RC)
	assert.Empty(t, res.Planned)
	assert.Empty(t, fake.calls)
}

func TestRunner_SameInputSameCommands(t *testing.T) {
	t.Parallel()

	loc := Location{"host": "node1", "rack": "rackA", "datacenter": "dc1", "root": "default"}

	first, second := newFakeExecutor(), newFakeExecutor()
	require.True(t, newTestRunner(first, BuilderConfig{}).Run(context.Background(), Request{Location: loc}).OK())
	require.True(t, newTestRunner(second, BuilderConfig{}).Run(context.Background(), Request{Location: loc}).OK())

	require.Empty(t, cmp.Diff(first.calls, second.calls))
}

func TestResult_JSON(t *testing.T) {
	t.Parallel()

	fake := newFakeExecutor()
	res := newTestRunner(fake, BuilderConfig{}).Run(context.Background(), Request{Location: Location{"host": "node1"}})

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, float64(1), m["rc"])
	assert.Equal(t, false, m["changed"])
	assert.Equal(t, "must specify at least 2 buckets", m["stdout"])
	assert.NotContains(t, m, "start", "validation failures carry no timing")
	assert.NotContains(t, m, "cmd")
}

func runsTotal(t *testing.T, result string) float64 {
	t.Helper()

	families, err := debug.Gatherer().Gather()
	require.NoError(t, err)

	var fam *prometheusgo.MetricFamily
	for _, f := range families {
		if f.GetName() == "cephcrush_runner_runs_total" {
			fam = f
		}
	}
	if fam == nil {
		return 0
	}
	for _, m := range fam.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "result" && lp.GetValue() == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRunner_Metrics(t *testing.T) {
	// Not parallel: reads global counters.
	invalidBefore := runsTotal(t, "invalid")
	changedBefore := runsTotal(t, "changed")

	r := newTestRunner(newFakeExecutor(), BuilderConfig{})
	r.Run(context.Background(), Request{Location: Location{}})
	r.Run(context.Background(), Request{Location: Location{"host": "node1", "root": "default"}})

	assert.Equal(t, invalidBefore+1, runsTotal(t, "invalid"))
	assert.Equal(t, changedBefore+1, runsTotal(t, "changed"))
}
