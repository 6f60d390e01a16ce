package watcher

import (
	"context"

	"github.com/samvad-hq/samvad-polls/pkg/polls"
	"github.com/samvad-hq/samvad-polls/pkg/publishers"
)

// ResultsFetcher loads aggregated results for a poll.
type ResultsFetcher interface {
	GetPollResults(ctx context.Context, pollID int64) (*polls.PollResults, error)
}

// EventPublisher publishes snapshots downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// SnapshotStore remembers which snapshots were already published.
type SnapshotStore interface {
	SeenSnapshot(key string) (bool, error)
	MarkSnapshot(key string) error
}
