package publishers

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-polls/pkg/polls"
)

// Event represents a poll results snapshot published downstream.
type Event struct {
	ID          string                 `json:"id"`
	PollID      int64                  `json:"poll_id"`
	PollName    string                 `json:"poll_name"`
	Question    string                 `json:"question"`
	Results     []polls.PollResultItem `json:"results"`
	TotalVotes  int64                  `json:"total_votes"`
	CollectedAt time.Time              `json:"collected_at"`
}

// NewEvent constructs an Event for the given watched poll and its results.
func NewEvent(pollName string, res polls.PollResults) Event {
	items := make([]polls.PollResultItem, len(res.Results))
	copy(items, res.Results)
	return Event{
		ID:          uuid.NewString(),
		PollID:      res.PollID,
		PollName:    pollName,
		Question:    res.Question,
		Results:     items,
		TotalVotes:  res.TotalVotes(),
		CollectedAt: time.Now().UTC(),
	}
}

// Key is the partition/ordering key used by sinks that support one.
func (e Event) Key() string { return strconv.FormatInt(e.PollID, 10) }
