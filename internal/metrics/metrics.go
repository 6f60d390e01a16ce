// Package metrics exposes Prometheus counters for the results watcher.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "samvad_polls"

// Registry holds every collector served by Handler.
var Registry = prometheus.NewRegistry()

var (
	snapshotsPublished = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_published_total",
		Help:      "Poll result snapshots delivered to at least one publisher.",
	}, []string{"poll_id"})

	snapshotsSkipped = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_skipped_total",
		Help:      "Poll result snapshots skipped because they were already published.",
	})

	fetchFailures = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Failed calls to the polling service by operation.",
	}, []string{"operation"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// SnapshotPublished records a delivered snapshot for a poll.
func SnapshotPublished(pollID int64) {
	snapshotsPublished.WithLabelValues(strconv.FormatInt(pollID, 10)).Inc()
}

// SnapshotSkipped records a snapshot dropped as a duplicate.
func SnapshotSkipped() { snapshotsSkipped.Inc() }

// FetchFailed records a failed polling service call.
func FetchFailed(operation string) { fetchFailures.WithLabelValues(operation).Inc() }

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
