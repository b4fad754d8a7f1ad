// Package proxyclient talks to the creatordex caching proxy. Successful
// responses are memoized in-process for the life of the session: channel
// identifiers never change once assigned, so the map is append-only and has
// no eviction.
package proxyclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/meeplemedia/creatordex/internal/model"
)

// Client implements enrich.Client over HTTP.
type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.Mutex
	channels map[string]*model.ChannelInfo
	queries  map[string]*model.ResolvedChannel
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a proxy client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		channels: make(map[string]*model.ChannelInfo),
		queries:  make(map[string]*model.ResolvedChannel),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Channel fetches metadata for a channel ID or handle, consulting the local
// cache first. Only successful responses are cached.
func (c *Client) Channel(ctx context.Context, channelID string) (*model.ChannelInfo, error) {
	if channelID == "" {
		return nil, eris.New("proxyclient: empty channel id")
	}

	c.mu.Lock()
	if info, ok := c.channels[channelID]; ok {
		c.mu.Unlock()
		return info, nil
	}
	c.mu.Unlock()

	var info model.ChannelInfo
	if err := c.getJSON(ctx, c.baseURL+"/api/channel/"+url.PathEscape(channelID), &info); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.channels[channelID] = &info
	c.mu.Unlock()
	return &info, nil
}

// Resolve searches for a channel by handle or free-text query, consulting the
// local cache first.
func (c *Client) Resolve(ctx context.Context, query string) (*model.ResolvedChannel, error) {
	if query == "" {
		return nil, eris.New("proxyclient: empty query")
	}

	c.mu.Lock()
	if res, ok := c.queries[query]; ok {
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	var res model.ResolvedChannel
	if err := c.getJSON(ctx, c.baseURL+"/api/resolve?q="+url.QueryEscape(query), &res); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.queries[query] = &res
	c.mu.Unlock()
	return &res, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "proxyclient: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "proxyclient: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("proxyclient: status %d from %s", resp.StatusCode, reqURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "proxyclient: decode response")
	}
	return nil
}
