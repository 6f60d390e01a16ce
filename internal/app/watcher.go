package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/samvad-hq/samvad-polls/internal/config"
	"github.com/samvad-hq/samvad-polls/internal/logger"
	"github.com/samvad-hq/samvad-polls/internal/metrics"
	"github.com/samvad-hq/samvad-polls/internal/storage"
	"github.com/samvad-hq/samvad-polls/internal/watcher"
	"github.com/samvad-hq/samvad-polls/internal/watchlist"
	"github.com/samvad-hq/samvad-polls/pkg/polls"
	"github.com/samvad-hq/samvad-polls/pkg/publishers"
)

// Watcher is the results-watcher runtime. It owns the watch loop, the
// publisher fanout and the snapshot store.
type Watcher struct {
	cfg           *config.Config
	client        *polls.Client
	watchlist     *watchlist.Watchlist
	fanout        *publishers.Fanout
	service       *watcher.Service
	watchInterval time.Duration
	discoverLimit int
	log           logger.Logger
	store         storage.Store
}

// NewWatcher builds the runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := polls.New(
		polls.WithBaseURL(cfg.PollsBaseURL),
		polls.WithTimeout(cfg.PollsTimeout),
		polls.WithBearerToken(cfg.PollsBearerToken),
		polls.WithLogger(log),
	)

	wl, err := loadWatchlist(cfg)
	if err != nil {
		return nil, err
	}
	log.InfoObj("watchlist loaded", "watchlist_meta", map[string]any{
		"count":          len(wl.Enabled()),
		"discover_limit": cfg.DiscoverLimit,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Watcher{
		cfg:           cfg,
		client:        client,
		watchlist:     wl,
		fanout:        fanout,
		service:       watcher.NewService(client, fanout, log, store),
		watchInterval: cfg.WatchInterval,
		discoverLimit: cfg.DiscoverLimit,
		log:           log,
		store:         store,
	}, nil
}

// loadWatchlist reads the watchlist file. A missing file is tolerated when
// discovery supplies the polls instead.
func loadWatchlist(cfg *config.Config) (*watchlist.Watchlist, error) {
	wl, err := watchlist.Load(cfg.WatchlistFile)
	if err == nil {
		return wl, nil
	}
	if cfg.DiscoverLimit > 0 && errors.Is(err, fs.ErrNotExist) {
		return watchlist.New(nil)
	}
	return nil, fmt.Errorf("load watchlist: %w", err)
}

// Run starts the watch loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	if len(w.watchlist.Enabled()) == 0 && w.discoverLimit == 0 {
		w.log.WarnObj("no polls configured; watcher idle", "watchlist_file", w.cfg.WatchlistFile)
		<-ctx.Done()
		return nil
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"polls_count":      len(w.watchlist.Enabled()),
		"publishers_count": w.fanout.Size(),
		"watch_interval":   w.watchInterval.String(),
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial watch failed", "error", err)
	}

	ticker := time.NewTicker(w.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled watch failed", "error", err)
			}
		}
	}
}

// runOnce performs a single watch pass over the current poll set.
func (w *Watcher) runOnce(ctx context.Context) error {
	start := time.Now()
	entries := w.watchlist.Merge(w.discover(ctx))
	if len(entries) == 0 {
		w.log.WarnObj("watch pass skipped", "reason", "no polls to watch")
		return nil
	}

	w.log.InfoObj("watch started", "watch_meta", map[string]any{
		"polls_count": len(entries),
		"started_at":  start.UTC(),
	})
	if err := w.service.Run(ctx, entries); err != nil {
		return err
	}
	w.log.InfoObj("watch completed", "watch_meta", map[string]any{
		"polls_count": len(entries),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// discover lists the newest polls from the service when discovery is enabled.
func (w *Watcher) discover(ctx context.Context) []watchlist.Entry {
	if w.discoverLimit <= 0 {
		return nil
	}
	found, err := w.client.FetchPolls(ctx, polls.FetchPollsParams{Limit: w.discoverLimit})
	if err != nil {
		metrics.FetchFailed("fetch_polls")
		w.log.WarnObj("poll discovery failed", "error", err)
		return nil
	}
	out := make([]watchlist.Entry, 0, len(found))
	for _, p := range found {
		out = append(out, watchlist.Entry{PollID: p.ID, Name: p.Question})
	}
	return out
}

// close releases the store and publisher connections, logging failures.
func (w *Watcher) close() {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publishers close failed", "error", err)
	}
}
