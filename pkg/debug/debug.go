package debug

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name metrics are grouped under.
const PushJob = "cephcrush"

var (
	// Global registry for custom metrics
	globalRegistry = prometheus.NewRegistry()

	exportMu sync.Mutex
)

// Registry returns the Prometheus registry for registering custom metrics.
// Metrics registered here are written by WriteTextfile and Push.
func Registry() prometheus.Registerer {
	return globalRegistry
}

// Gatherer returns the registry for reading back metrics.
func Gatherer() prometheus.Gatherer {
	return globalRegistry
}

// WriteTextfile writes all registered metrics to path in the text exposition
// format, for pickup by the node exporter textfile collector. The file is
// replaced atomically.
func WriteTextfile(path string) error {
	exportMu.Lock()
	defer exportMu.Unlock()

	if err := prometheus.WriteToTextfile(path, globalRegistry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push sends all registered metrics to the Pushgateway at url, grouped by
// instance (usually the node hostname).
func Push(url, instance string) error {
	exportMu.Lock()
	defer exportMu.Unlock()

	pusher := push.New(url, PushJob).Gatherer(globalRegistry)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
