// Package httpx is the shared HTTP plumbing for the collaborator clients.
package httpx

import (
	"context"
	"net/http"
	"time"
)

// Client is a timeout-bounded HTTP client. It carries no retry layer:
// collaborator calls are never replayed, a failed call surfaces immediately
// and the next dictation is a fresh round trip.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client whose transport timeout backstops the per-call
// context deadline.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Do sends the request bound to ctx.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req.WithContext(ctx))
}
