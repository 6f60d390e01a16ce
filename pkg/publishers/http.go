package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-polls/pkg/httpclient"
)

const (
	headerPollID   = "X-Poll-ID"
	headerEventID  = "X-Event-ID"
	maxBodySnippet = 512
)

// httpPublisher posts snapshots to a webhook.
type httpPublisher struct {
	id          string
	typ         string
	method      string
	url         string
	headers     map[string]string
	pollHeaders map[string]map[string]string
	client      *resty.Client
	log         Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	return &httpPublisher{
		id:          cfg.ID,
		typ:         TypeHTTP,
		method:      cfg.HTTP.Method,
		url:         cfg.HTTP.URL,
		headers:     cfg.HTTP.Headers,
		pollHeaders: cfg.HTTP.PollHeaders,
		client:      httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:         ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return h.typ }

// headersFor merges the shared headers with those configured for the event's
// poll. Poll headers win; the id headers are always set last.
func (h *httpPublisher) headersFor(evt Event) map[string]string {
	extra := h.pollHeaders[evt.Key()]
	out := make(map[string]string, len(h.headers)+len(extra)+3)
	for k, v := range h.headers {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	out["Content-Type"] = "application/json"
	out[headerPollID] = evt.Key()
	out[headerEventID] = evt.ID
	return out
}

// Publish delivers the snapshot; any non-2xx response is an error.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeaders(h.headersFor(evt)).
		SetBody(evt).
		Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		h.log.WarnObj("http publisher rejected event", "publisher_http_error", map[string]any{
			"publisher_id": h.id,
			"poll_id":      evt.PollID,
			"status_code":  resp.StatusCode(),
		})
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"event_id":     evt.ID,
		"status_code":  resp.StatusCode(),
	})
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return strings.TrimSpace(string(body))
}
