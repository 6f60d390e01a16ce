package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-polls/internal/config"
	"github.com/samvad-hq/samvad-polls/pkg/publishers"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newPollsService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/polls", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":2,"question":"Tabs or spaces?","created_at":"2024-01-01T00:00:00Z","owner_id":1,"options":[]}]`)
	})
	mux.HandleFunc("/polls/1/results", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"poll_id":1,"question":"Lunch?","results":[{"option_id":1,"text":"pizza","vote_count":3}]}`)
	})
	mux.HandleFunc("/polls/2/results", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"poll_id":2,"question":"Tabs or spaces?","results":[{"option_id":5,"text":"tabs","vote_count":1}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, pollsURL, sinkURL string, discover int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	watchlistFile := writeTestFile(t, dir, "watchlist.yaml", "polls:\n  - id: 1\n    name: lunch\n")
	publishersFile := writeTestFile(t, dir, "publishers.yaml",
		fmt.Sprintf("publishers:\n  - id: sink\n    type: http\n    http:\n      url: %s\n", sinkURL))

	return &config.Config{
		PollsBaseURL:           pollsURL,
		PollsTimeout:           2 * time.Second,
		WatchlistFile:          watchlistFile,
		PublishersFile:         publishersFile,
		WatchInterval:          time.Hour,
		DiscoverLimit:          discover,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "snapshots.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Minute,
	}
}

func TestWatcherPublishesWatchedAndDiscoveredPolls(t *testing.T) {
	pollsSrv := newPollsService(t)

	events := make(chan publishers.Event, 4)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		events <- evt
		w.WriteHeader(http.StatusNoContent)
	}))
	defer sink.Close()

	w, err := NewWatcher(context.Background(), testConfig(t, pollsSrv.URL, sink.URL, 5), nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	got := map[int64]string{}
	for len(got) < 2 {
		select {
		case evt := <-events:
			got[evt.PollID] = evt.PollName
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got[1] != "lunch" || got[2] != "Tabs or spaces?" {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestNewWatcherRequiresPublishers(t *testing.T) {
	cfg := testConfig(t, "http://localhost:1", "http://localhost:2", 0)
	cfg.PublishersFile = writeTestFile(t, t.TempDir(), "publishers.yaml",
		"publishers:\n  - id: sink\n    type: http\n    enabled: false\n    http:\n      url: http://x\n")

	if _, err := NewWatcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error when every publisher is disabled")
	}
}

func TestNewWatcherMissingWatchlist(t *testing.T) {
	cfg := testConfig(t, "http://localhost:1", "http://localhost:2", 0)
	cfg.WatchlistFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewWatcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing watchlist without discovery")
	}

	cfg.DiscoverLimit = 3
	cfg.StorageType = "none"
	w, err := NewWatcher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("missing watchlist should be tolerated with discovery: %v", err)
	}
	w.close()
}

func TestNewWatcherNilConfig(t *testing.T) {
	if _, err := NewWatcher(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
