package polls

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-polls/pkg/httpclient"
)

// ErrInvalidPagination is returned by FetchPolls for a negative skip or limit.
var ErrInvalidPagination = errors.New("invalid pagination parameters")

// FetchPollsError reports a non-200 response from GET /polls.
type FetchPollsError struct {
	StatusCode int
	Message    string
}

func (e *FetchPollsError) Error() string {
	return fmt.Sprintf("GET /polls failed (%d): %s", e.StatusCode, e.Message)
}

// VotingError reports a non-200 response from POST /polls/{id}/vote.
type VotingError struct {
	PollID     int64
	StatusCode int
	Message    string
}

func (e *VotingError) Error() string {
	return fmt.Sprintf("POST /polls/%d/vote failed (%d): %s", e.PollID, e.StatusCode, e.Message)
}

// ResultsFetchError reports a non-200 response from GET /polls/{id}/results.
type ResultsFetchError struct {
	PollID     int64
	StatusCode int
	Message    string
}

func (e *ResultsFetchError) Error() string {
	return fmt.Sprintf("GET /polls/%d/results failed (%d): %s", e.PollID, e.StatusCode, e.Message)
}

// AsFetchPollsError unwraps err into a *FetchPollsError.
func AsFetchPollsError(err error) (*FetchPollsError, bool) {
	var target *FetchPollsError
	ok := errors.As(err, &target)
	return target, ok
}

// AsVotingError unwraps err into a *VotingError.
func AsVotingError(err error) (*VotingError, bool) {
	var target *VotingError
	ok := errors.As(err, &target)
	return target, ok
}

// AsResultsFetchError unwraps err into a *ResultsFetchError.
func AsResultsFetchError(err error) (*ResultsFetchError, bool) {
	var target *ResultsFetchError
	ok := errors.As(err, &target)
	return target, ok
}

// StatusCode returns the HTTP status carried by any of the operation errors,
// or 0 when err did not come from a non-200 response.
func StatusCode(err error) int {
	if e, ok := AsFetchPollsError(err); ok {
		return e.StatusCode
	}
	if e, ok := AsVotingError(err); ok {
		return e.StatusCode
	}
	if e, ok := AsResultsFetchError(err); ok {
		return e.StatusCode
	}
	return 0
}

// errorMessage prefers the response body and falls back to the status line.
func errorMessage(resp httpclient.Response) string {
	if text := strings.TrimSpace(string(resp.Body())); text != "" {
		return text
	}
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return fmt.Sprintf("unexpected status code %d", code)
	}
	if status := strings.TrimSpace(resp.Status()); status != "" {
		return status
	}
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}
