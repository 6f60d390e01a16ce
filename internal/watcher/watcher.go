package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/samvad-hq/samvad-polls/internal/logger"
	"github.com/samvad-hq/samvad-polls/internal/metrics"
	"github.com/samvad-hq/samvad-polls/internal/watchlist"
	"github.com/samvad-hq/samvad-polls/pkg/polls"
	"github.com/samvad-hq/samvad-polls/pkg/publishers"
)

// Service fetches results for watched polls and publishes changed snapshots.
type Service struct {
	results   ResultsFetcher
	publisher EventPublisher
	store     SnapshotStore
	log       logger.Logger
}

// NewService wires a watcher. A nil store publishes every snapshot.
func NewService(results ResultsFetcher, pub EventPublisher, log logger.Logger, store SnapshotStore) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		results:   results,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Run executes one watch pass over the given polls.
func (s *Service) Run(ctx context.Context, entries []watchlist.Entry) error {
	if s == nil || s.results == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	if len(entries) == 0 {
		return fmt.Errorf("no polls configured for watching")
	}

	return errors.Join(s.runAll(ctx, entries)...)
}

func (s *Service) runAll(ctx context.Context, entries []watchlist.Entry) []error {
	errs := make([]error, 0, len(entries))

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if err := s.processPoll(ctx, entry); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("poll watch failed", "poll_error", map[string]any{
				"poll_id": entry.PollID,
				"name":    entry.Name,
				"error":   err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) processPoll(ctx context.Context, entry watchlist.Entry) error {
	res, err := s.results.GetPollResults(ctx, entry.PollID)
	if err != nil {
		metrics.FetchFailed("get_poll_results")
		return fmt.Errorf("fetch results for poll %d: %w", entry.PollID, err)
	}

	key, err := SnapshotKey(*res)
	if err != nil {
		return err
	}

	if s.seen(entry, key) {
		metrics.SnapshotSkipped()
		s.log.DebugObj("poll results unchanged", "poll_snapshot", map[string]any{
			"poll_id": entry.PollID,
			"key":     key,
		})
		return nil
	}

	if s.publisher == nil {
		return nil
	}

	evt := publishers.NewEvent(entry.Name, *res)
	delivered, pubErr := s.publisher.Publish(ctx, evt)
	if delivered > 0 {
		metrics.SnapshotPublished(entry.PollID)
		s.mark(entry, key)
		s.log.InfoObj("poll results published", "poll_snapshot", map[string]any{
			"poll_id":     entry.PollID,
			"event_id":    evt.ID,
			"total_votes": evt.TotalVotes,
			"publishers":  delivered,
		})
	}
	if pubErr != nil {
		return fmt.Errorf("publish results for poll %d: %w", entry.PollID, pubErr)
	}
	return nil
}

// seen reports whether the snapshot was already published. Lookup failures
// count as unseen so a flaky store never suppresses a change.
func (s *Service) seen(entry watchlist.Entry, key string) bool {
	if s.store == nil {
		return false
	}
	ok, err := s.store.SeenSnapshot(key)
	if err != nil {
		s.log.WarnObj("snapshot lookup failed", "storage_error", map[string]any{
			"poll_id": entry.PollID,
			"error":   err.Error(),
		})
		return false
	}
	return ok
}

func (s *Service) mark(entry watchlist.Entry, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.MarkSnapshot(key); err != nil {
		s.log.WarnObj("snapshot mark failed", "storage_error", map[string]any{
			"poll_id": entry.PollID,
			"error":   err.Error(),
		})
	}
}

type snapshotBody struct {
	Question string                 `json:"question"`
	Results  []polls.PollResultItem `json:"results"`
}

// SnapshotKey fingerprints poll results as "<poll_id>:<hash>". Identical
// results always produce the same key.
func SnapshotKey(res polls.PollResults) (string, error) {
	raw, err := json.Marshal(snapshotBody{Question: res.Question, Results: res.Results})
	if err != nil {
		return "", fmt.Errorf("encode snapshot for poll %d: %w", res.PollID, err)
	}
	return fmt.Sprintf("%d:%016x", res.PollID, xxhash.Sum64(raw)), nil
}
