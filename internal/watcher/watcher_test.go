package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/samvad-polls/internal/watchlist"
	"github.com/samvad-hq/samvad-polls/pkg/polls"
	"github.com/samvad-hq/samvad-polls/pkg/publishers"
)

// fakeResults serves canned results per poll id.
type fakeResults struct {
	mu      sync.Mutex
	results map[int64]polls.PollResults
	errs    map[int64]error
	calls   int
}

func (f *fakeResults) GetPollResults(_ context.Context, pollID int64) (*polls.PollResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[pollID]; err != nil {
		return nil, err
	}
	res := f.results[pollID]
	return &res, nil
}

// fakePublisher records events and reports a configurable success count.
type fakePublisher struct {
	mu        sync.Mutex
	events    []publishers.Event
	delivered int
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.delivered, f.err
}

// fakeStore tracks seen keys.
type fakeStore struct {
	mu      sync.Mutex
	seen    map[string]bool
	lookErr error
}

func (f *fakeStore) SeenSnapshot(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookErr != nil {
		return false, f.lookErr
	}
	return f.seen[key], nil
}

func (f *fakeStore) MarkSnapshot(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[key] = true
	return nil
}

func results(pollID int64, votes ...int64) polls.PollResults {
	res := polls.PollResults{PollID: pollID, Question: "Q?"}
	for i, v := range votes {
		res.Results = append(res.Results, polls.PollResultItem{OptionID: int64(i + 1), Text: "opt", VoteCount: v})
	}
	return res
}

func TestServicePublishesOncePerDistinctSnapshot(t *testing.T) {
	fetcher := &fakeResults{results: map[int64]polls.PollResults{1: results(1, 3, 2)}}
	pub := &fakePublisher{delivered: 1}
	store := &fakeStore{}
	svc := NewService(fetcher, pub, nil, store)
	entries := []watchlist.Entry{{PollID: 1, Name: "lunch"}}

	for i := 0; i < 2; i++ {
		if err := svc.Run(context.Background(), entries); err != nil {
			t.Fatalf("Run #%d: %v", i, err)
		}
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event for unchanged results, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.PollID != 1 || evt.PollName != "lunch" || evt.TotalVotes != 5 {
		t.Fatalf("unexpected event %+v", evt)
	}

	fetcher.results[1] = results(1, 3, 3)
	if err := svc.Run(context.Background(), entries); err != nil {
		t.Fatalf("Run after change: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected changed results to be published, got %d events", len(pub.events))
	}
}

func TestServiceDoesNotMarkWhenNoPublisherSucceeded(t *testing.T) {
	fetcher := &fakeResults{results: map[int64]polls.PollResults{1: results(1, 1)}}
	pub := &fakePublisher{delivered: 0, err: errors.New("all sinks down")}
	store := &fakeStore{}
	svc := NewService(fetcher, pub, nil, store)

	err := svc.Run(context.Background(), []watchlist.Entry{{PollID: 1}})
	if err == nil || !strings.Contains(err.Error(), "all sinks down") {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(store.seen) != 0 {
		t.Fatalf("snapshot must stay unseen after a failed publish")
	}
}

func TestServiceMarksOnPartialSuccess(t *testing.T) {
	fetcher := &fakeResults{results: map[int64]polls.PollResults{1: results(1, 1)}}
	pub := &fakePublisher{delivered: 1, err: errors.New("one sink down")}
	store := &fakeStore{}
	svc := NewService(fetcher, pub, nil, store)

	if err := svc.Run(context.Background(), []watchlist.Entry{{PollID: 1}}); err == nil {
		t.Fatalf("expected partial failure to be reported")
	}
	if len(store.seen) != 1 {
		t.Fatalf("expected snapshot marked after partial success")
	}
}

func TestServiceJoinsPerPollErrors(t *testing.T) {
	fetcher := &fakeResults{
		results: map[int64]polls.PollResults{2: results(2, 4)},
		errs: map[int64]error{
			1: &polls.ResultsFetchError{PollID: 1, StatusCode: 404, Message: "not found"},
		},
	}
	pub := &fakePublisher{delivered: 1}
	svc := NewService(fetcher, pub, nil, &fakeStore{})

	err := svc.Run(context.Background(), []watchlist.Entry{{PollID: 1}, {PollID: 2}})
	if err == nil {
		t.Fatalf("expected error for poll 1")
	}
	if _, ok := polls.AsResultsFetchError(err); !ok {
		t.Fatalf("expected ResultsFetchError in chain, got %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].PollID != 2 {
		t.Fatalf("poll 2 should still be published, got %+v", pub.events)
	}
}

func TestServiceStoreLookupErrorPublishes(t *testing.T) {
	fetcher := &fakeResults{results: map[int64]polls.PollResults{1: results(1, 1)}}
	pub := &fakePublisher{delivered: 1}
	svc := NewService(fetcher, pub, nil, &fakeStore{lookErr: errors.New("db locked")})

	if err := svc.Run(context.Background(), []watchlist.Entry{{PollID: 1}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected publish despite lookup failure")
	}
}

func TestServiceRunAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeResults{}
	svc := NewService(fetcher, &fakePublisher{}, nil, nil)
	errs := svc.runAll(ctx, []watchlist.Entry{{PollID: 1}, {PollID: 2}})
	if len(errs) != 0 || fetcher.calls != 0 {
		t.Fatalf("expected no work on cancelled context, errs=%v calls=%d", errs, fetcher.calls)
	}
}

func TestServiceRunRequiresEntries(t *testing.T) {
	svc := NewService(&fakeResults{}, nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when watchlist empty")
	}
	var nilSvc *Service
	if err := nilSvc.Run(context.Background(), []watchlist.Entry{{PollID: 1}}); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestSnapshotKeyStable(t *testing.T) {
	a, err := SnapshotKey(results(9, 1, 2))
	if err != nil {
		t.Fatalf("SnapshotKey: %v", err)
	}
	b, _ := SnapshotKey(results(9, 1, 2))
	c, _ := SnapshotKey(results(9, 2, 1))
	if a != b {
		t.Fatalf("identical results must share a key: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different results must not share a key")
	}
	if !strings.HasPrefix(a, "9:") {
		t.Fatalf("key must be prefixed by poll id, got %s", a)
	}
}
