package polls

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-polls/pkg/httpclient"
)

const (
	// DefaultBaseURL is used when WithBaseURL is not supplied.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds each call when WithTimeout is not supplied.
	DefaultTimeout = 10 * time.Second
)

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// Client issues requests against the polling service. It holds no mutable
// state, so a Client is safe for concurrent use whenever its transport is.
type Client struct {
	baseURL     string
	timeout     time.Duration
	bearerToken string
	http        httpclient.Client
	log         Logger
}

// New constructs a Client. Without options it talks to DefaultBaseURL through a
// resty-backed transport.
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout)
	}
	return c
}

// WithToken returns a copy of c that authenticates votes with token and shares
// c's transport.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	WithBearerToken(token)(&cp)
	return &cp
}

// BaseURL reports the configured service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string) string { return c.baseURL + path }

// withTimeout derives the per-call context.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) trace(method, path string, resp httpclient.Response, start time.Time) {
	c.log.DebugObj("polls request completed", "polls_request", map[string]any{
		"method":      method,
		"path":        path,
		"status_code": resp.StatusCode(),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
}

func decodeJSON(body []byte, out any, what string) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", what, err)
	}
	return nil
}
