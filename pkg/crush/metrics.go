package crush

import (
	"github.com/LeeDigitalWorks/cephcrush/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CommandsTotal tracks executed commands by subcommand and outcome
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cephcrush",
		Subsystem: "builder",
		Name:      "commands_total",
		Help:      "Total number of CRUSH commands executed",
	}, []string{"subcommand", "status"}) // status: "ok", "nonzero", "error"

	// CommandDuration tracks how long each command took to run
	CommandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cephcrush",
		Subsystem: "builder",
		Name:      "command_duration_seconds",
		Help:      "Time spent waiting for CRUSH commands",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"subcommand"})

	// RunsTotal tracks hierarchy runs by result
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cephcrush",
		Subsystem: "runner",
		Name:      "runs_total",
		Help:      "Total number of location runs",
	}, []string{"result"}) // result: "changed", "check", "invalid", "failed"

	// LastRunTimestamp is the unix time of the last completed run
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cephcrush",
		Subsystem: "runner",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})
)

func init() {
	debug.Registry().MustRegister(
		CommandsTotal,
		CommandDuration,
		RunsTotal,
		LastRunTimestamp,
	)
}
