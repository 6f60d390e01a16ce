package polls

import (
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-polls/pkg/httpclient"
)

// ClientOption configures a Client during construction in New.
type ClientOption func(*Client)

// WithBaseURL sets the service base URL. A trailing slash is ignored.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout bounds each call. It is applied as a context deadline so it also
// covers transports supplied through WithHTTPClient. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient injects the transport used for every request. Sharing one
// transport across clients reuses its connections; concurrent safety is the
// transport's.
func WithHTTPClient(hc httpclient.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithStdHTTPClient reuses an existing *http.Client and its connection pool.
func WithStdHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = httpclient.NewRestyClientFrom(hc)
		}
	}
}

// WithBearerToken sets the token sent as "Authorization: Bearer <token>" on votes.
// Surrounding whitespace is trimmed; a blank token sends no Authorization header.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		c.bearerToken = strings.TrimSpace(token)
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
