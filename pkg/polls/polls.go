package polls

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DefaultLimit is the page size used when FetchPollsParams.Limit is zero.
const DefaultLimit = 10

// FetchPollsParams selects a page of polls. The zero value requests the first
// DefaultLimit polls.
type FetchPollsParams struct {
	Skip  int
	Limit int
}

func (p FetchPollsParams) normalize() (FetchPollsParams, error) {
	if p.Skip < 0 {
		return p, fmt.Errorf("%w: skip must be non-negative, got %d", ErrInvalidPagination, p.Skip)
	}
	if p.Limit < 0 {
		return p, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidPagination, p.Limit)
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p, nil
}

// FetchPolls returns one page of polls from GET /polls.
func (c *Client) FetchPolls(ctx context.Context, params FetchPollsParams) ([]Poll, error) {
	params, err := params.normalize()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	const path = "/polls"
	query := map[string]string{
		"skip":  strconv.Itoa(params.Skip),
		"limit": strconv.Itoa(params.Limit),
	}

	start := time.Now()
	resp, err := c.http.Get(ctx, c.url(path), query, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch polls: %w", err)
	}
	c.trace(http.MethodGet, path, resp, start)

	if resp.StatusCode() != http.StatusOK {
		return nil, &FetchPollsError{StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
	}

	polls := []Poll{}
	if err := decodeJSON(resp.Body(), &polls, "polls"); err != nil {
		return nil, err
	}
	if polls == nil {
		polls = []Poll{}
	}
	return polls, nil
}
