package polls

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type voteRequest struct {
	OptionID int64 `json:"option_id"`
}

// CastVote records a vote for optionID on pollID via POST /polls/{id}/vote.
// The Authorization header is sent only when the client carries a bearer token.
func (c *Client) CastVote(ctx context.Context, pollID, optionID int64) (*Vote, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	path := fmt.Sprintf("/polls/%d/vote", pollID)

	var headers map[string]string
	if c.bearerToken != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.bearerToken}
	}

	start := time.Now()
	resp, err := c.http.Post(ctx, c.url(path), voteRequest{OptionID: optionID}, headers)
	if err != nil {
		return nil, fmt.Errorf("cast vote on poll %d: %w", pollID, err)
	}
	c.trace(http.MethodPost, path, resp, start)

	if resp.StatusCode() != http.StatusOK {
		return nil, &VotingError{PollID: pollID, StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
	}

	var vote Vote
	if err := decodeJSON(resp.Body(), &vote, "vote"); err != nil {
		return nil, err
	}
	return &vote, nil
}
