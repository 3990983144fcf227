package debug

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "cephcrush",
	Subsystem: "debug_test",
	Name:      "events_total",
	Help:      "Counter used by tests",
})

func init() {
	Registry().MustRegister(testCounter)
}

func TestWriteTextfile(t *testing.T) {
	testCounter.Inc()

	path := filepath.Join(t.TempDir(), "cephcrush.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cephcrush_debug_test_events_total")
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "cephcrush.prom"))
	assert.Error(t, err)
}

func TestPush(t *testing.T) {
	var pushed atomic.Bool
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushed.Store(true)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, Push(srv.URL, "node1"))
	assert.True(t, pushed.Load())
	p, _ := path.Load().(string)
	assert.True(t, strings.HasPrefix(p, "/metrics/job/"+PushJob), p)
	assert.Contains(t, p, "instance/node1")
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.Error(t, Push(srv.URL, ""))
}
