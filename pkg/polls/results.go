package polls

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// GetPollResults returns the aggregated vote counts from GET /polls/{id}/results.
// Result items keep the order the service returned them in.
func (c *Client) GetPollResults(ctx context.Context, pollID int64) (*PollResults, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	path := fmt.Sprintf("/polls/%d/results", pollID)

	start := time.Now()
	resp, err := c.http.Get(ctx, c.url(path), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get results for poll %d: %w", pollID, err)
	}
	c.trace(http.MethodGet, path, resp, start)

	if resp.StatusCode() != http.StatusOK {
		return nil, &ResultsFetchError{PollID: pollID, StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
	}

	var results PollResults
	if err := decodeJSON(resp.Body(), &results, "poll results"); err != nil {
		return nil, err
	}
	return &results, nil
}
