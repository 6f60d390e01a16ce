package polls

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-polls/pkg/httpclient"
)

const samplePolls = `[{"id":1,"question":"Q","created_at":"2024-01-01T00:00:00Z","owner_id":1,"options":[]}]`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(append([]ClientOption{WithBaseURL(srv.URL + "/"), WithTimeout(2 * time.Second)}, opts...)...)
}

func TestFetchPollsReturnsPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/polls" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("skip"); got != "0" {
			t.Fatalf("expected skip=0, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Fatalf("expected limit=2, got %q", got)
		}
		_, _ = w.Write([]byte(samplePolls))
	})

	polls, err := client.FetchPolls(context.Background(), FetchPollsParams{Skip: 0, Limit: 2})
	if err != nil {
		t.Fatalf("FetchPolls: %v", err)
	}
	if len(polls) != 1 {
		t.Fatalf("expected 1 poll, got %d", len(polls))
	}
	p := polls[0]
	if p.ID != 1 || p.Question != "Q" || p.OwnerID != 1 || p.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected poll %+v", p)
	}
	if p.Options == nil || len(p.Options) != 0 {
		t.Fatalf("expected empty options, got %#v", p.Options)
	}
}

func TestFetchPollsDecodesOptionsInOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7,"question":"Lunch?","created_at":"2024-05-02T10:30:00","owner_id":3,
			"options":[{"id":11,"text":"Pizza","poll_id":7},{"id":12,"text":"Salad","poll_id":7}]}]`))
	})

	polls, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	if err != nil {
		t.Fatalf("FetchPolls: %v", err)
	}
	opts := polls[0].Options
	if len(opts) != 2 || opts[0].Text != "Pizza" || opts[1].Text != "Salad" || opts[1].PollID != 7 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if o, ok := polls[0].OptionByID(12); !ok || o.Text != "Salad" {
		t.Fatalf("OptionByID(12) = %+v, %v", o, ok)
	}
	created, err := polls[0].CreatedTime()
	if err != nil {
		t.Fatalf("CreatedTime: %v", err)
	}
	if !created.Equal(time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created time %v", created)
	}
}

func TestFetchPollsAppliesDefaultLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Fatalf("expected default limit=10, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	polls, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	if err != nil {
		t.Fatalf("FetchPolls: %v", err)
	}
	if polls == nil || len(polls) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", polls)
	}
}

func TestFetchPollsRejectsNegativePagination(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	for _, params := range []FetchPollsParams{{Skip: -1}, {Limit: -5}} {
		_, err := client.FetchPolls(context.Background(), params)
		if !errors.Is(err, ErrInvalidPagination) {
			t.Fatalf("params %+v: expected ErrInvalidPagination, got %v", params, err)
		}
	}
	if called {
		t.Fatalf("no request should be sent for invalid pagination")
	}
}

func TestFetchPollsNon200ReturnsFetchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("  database unavailable \n"))
	})

	_, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	fe, ok := AsFetchPollsError(err)
	if !ok {
		t.Fatalf("expected FetchPollsError, got %T %v", err, err)
	}
	if fe.StatusCode != http.StatusInternalServerError || fe.Message != "database unavailable" {
		t.Fatalf("unexpected error fields %+v", fe)
	}
	if got := err.Error(); got != "GET /polls failed (500): database unavailable" {
		t.Fatalf("unexpected message %q", got)
	}
	if StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d", StatusCode(err))
	}
}

func TestFetchPollsEmptyBodyFallsBackToStatusLine(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	fe, ok := AsFetchPollsError(err)
	if !ok {
		t.Fatalf("expected FetchPollsError, got %v", err)
	}
	if fe.Message != "404 Not Found" {
		t.Fatalf("unexpected fallback message %q", fe.Message)
	}
}

func TestFetchPollsNon200SuccessCodeIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	fe, ok := AsFetchPollsError(err)
	if !ok {
		t.Fatalf("expected FetchPollsError, got %v", err)
	}
	if fe.StatusCode != http.StatusNoContent || fe.Message != "unexpected status code 204" {
		t.Fatalf("unexpected error %+v", fe)
	}
}

func TestFetchPollsInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	if err == nil || !strings.Contains(err.Error(), "decode polls response") {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, ok := AsFetchPollsError(err); ok {
		t.Fatalf("decode failures must not be reported as FetchPollsError")
	}
}

func TestFetchPollsTimeoutPropagatesTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(WithBaseURL(srv.URL), WithStdHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
	_, err := client.FetchPolls(context.Background(), FetchPollsParams{})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Fatalf("transport errors must not carry a status code")
	}
}

type failingHTTPClient struct {
	err error
}

func (f failingHTTPClient) Get(context.Context, string, map[string]string, map[string]string) (httpclient.Response, error) {
	return nil, f.err
}

func (f failingHTTPClient) Post(context.Context, string, any, map[string]string) (httpclient.Response, error) {
	return nil, f.err
}

func TestOperationsWrapTransportErrors(t *testing.T) {
	boom := errors.New("connection refused")
	client := New(WithHTTPClient(failingHTTPClient{err: boom}))

	if _, err := client.FetchPolls(context.Background(), FetchPollsParams{}); !errors.Is(err, boom) {
		t.Fatalf("FetchPolls: expected wrapped transport error, got %v", err)
	}
	if _, err := client.CastVote(context.Background(), 1, 2); !errors.Is(err, boom) {
		t.Fatalf("CastVote: expected wrapped transport error, got %v", err)
	}
	if _, err := client.GetPollResults(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("GetPollResults: expected wrapped transport error, got %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	c := New()
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("unexpected base url %q", c.BaseURL())
	}
	if c.timeout != DefaultTimeout {
		t.Fatalf("unexpected timeout %v", c.timeout)
	}
	if c.http == nil {
		t.Fatalf("expected default transport")
	}

	c = New(WithBaseURL("  "), WithTimeout(-time.Second))
	if c.BaseURL() != DefaultBaseURL || c.timeout != DefaultTimeout {
		t.Fatalf("invalid options should be ignored, got %q %v", c.BaseURL(), c.timeout)
	}
}
