package polls

import (
	"fmt"
	"strings"
	"time"
)

// Poll is a question with an ordered set of selectable options.
type Poll struct {
	ID        int64    `json:"id"`
	Question  string   `json:"question"`
	CreatedAt string   `json:"created_at"`
	OwnerID   int64    `json:"owner_id"`
	Options   []Option `json:"options"`
}

// Option is one selectable answer belonging to a poll.
type Option struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	PollID int64  `json:"poll_id"`
}

// Vote records a user selecting an option.
type Vote struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	OptionID  int64  `json:"option_id"`
	CreatedAt string `json:"created_at"`
}

// PollResults holds the aggregated vote counts for a poll.
type PollResults struct {
	PollID   int64            `json:"poll_id"`
	Question string           `json:"question"`
	Results  []PollResultItem `json:"results"`
}

// PollResultItem is the vote count for a single option.
type PollResultItem struct {
	OptionID  int64  `json:"option_id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"vote_count"`
}

// CreatedTime parses the poll's created_at timestamp.
func (p Poll) CreatedTime() (time.Time, error) { return parseTimestamp(p.CreatedAt) }

// CreatedTime parses the vote's created_at timestamp.
func (v Vote) CreatedTime() (time.Time, error) { return parseTimestamp(v.CreatedAt) }

// OptionByID returns the option with the given id.
func (p Poll) OptionByID(id int64) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// TotalVotes sums the vote counts of every option.
func (r PollResults) TotalVotes() int64 {
	var total int64
	for _, item := range r.Results {
		total += item.VoteCount
	}
	return total
}

// Leader returns the option with the most votes. Ties go to the first option listed.
func (r PollResults) Leader() (PollResultItem, bool) {
	if len(r.Results) == 0 {
		return PollResultItem{}, false
	}
	best := r.Results[0]
	for _, item := range r.Results[1:] {
		if item.VoteCount > best.VoteCount {
			best = item
		}
	}
	return best, true
}

// timestampLayouts are tried in order; the service may omit the zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
