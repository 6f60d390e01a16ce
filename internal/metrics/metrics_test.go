package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	beforeSkipped := testutil.ToFloat64(snapshotsSkipped)
	SnapshotSkipped()
	if got := testutil.ToFloat64(snapshotsSkipped); got != beforeSkipped+1 {
		t.Fatalf("skipped counter = %v, want %v", got, beforeSkipped+1)
	}

	SnapshotPublished(42)
	if got := testutil.ToFloat64(snapshotsPublished.WithLabelValues("42")); got < 1 {
		t.Fatalf("published counter for poll 42 = %v", got)
	}

	FetchFailed("get_poll_results")
	if got := testutil.ToFloat64(fetchFailures.WithLabelValues("get_poll_results")); got < 1 {
		t.Fatalf("fetch failures counter = %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	SnapshotPublished(7)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `samvad_polls_snapshots_published_total{poll_id="7"}`) {
		t.Fatalf("published metric missing from exposition:\n%s", body)
	}
}
