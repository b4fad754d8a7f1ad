// Package youtube provides a client for the YouTube Data API v3 channel and
// search endpoints used to enrich the creator directory.
package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/meeplemedia/creatordex/internal/resilience"
)

// ErrNotFound is returned when no channel matches the ID or query.
var ErrNotFound = eris.New("youtube: channel not found")

// Client defines the YouTube Data API operations the proxy needs.
type Client interface {
	// ChannelInfo fetches snippet and statistics for a channel ID.
	ChannelInfo(ctx context.Context, channelID string) (*Channel, error)
	// ResolveChannel searches for the single best channel match for a handle
	// or free-text query.
	ResolveChannel(ctx context.Context, query string) (*ResolveResult, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *httpClient) {
		c.baseURL = base
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing request rate. The Data API has a daily quota;
// the limiter mostly guards against hammering it when a large dataset is
// enriched cold.
func WithRateLimit(qps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

// WithRetry overrides the retry configuration.
func WithRetry(cfg resilience.Config) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.Config
}

// NewClient creates a YouTube Data API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/youtube/v3",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(5, 5),
		retry:   resilience.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ChannelInfo(ctx context.Context, channelID string) (*Channel, error) {
	if channelID == "" {
		return nil, eris.New("youtube: empty channel id")
	}

	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("id", channelID)

	body, err := c.get(ctx, "/channels", q)
	if err != nil {
		return nil, err
	}

	var parsed channelListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "youtube: decode channels response")
	}
	if len(parsed.Items) == 0 {
		return nil, ErrNotFound
	}

	item := parsed.Items[0]
	ch := &Channel{
		ID:    item.ID,
		Title: item.Snippet.Title,
		Logo:  item.Snippet.Thumbnails.bestURL(),
	}
	if st := item.Statistics; st != nil {
		ch.HiddenSubscriberCount = st.HiddenSubscriberCount
		if !st.HiddenSubscriberCount {
			ch.SubscriberCount = parseCount(st.SubscriberCount)
		}
		ch.ViewCount = parseCount(st.ViewCount)
		ch.VideoCount = parseCount(st.VideoCount)
	}
	return ch, nil
}

func (c *httpClient) ResolveChannel(ctx context.Context, query string) (*ResolveResult, error) {
	if query == "" {
		return nil, eris.New("youtube: empty query")
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "channel")
	q.Set("maxResults", "1")
	q.Set("q", query)

	body, err := c.get(ctx, "/search", q)
	if err != nil {
		return nil, err
	}

	var parsed searchListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "youtube: decode search response")
	}
	if len(parsed.Items) == 0 {
		return nil, ErrNotFound
	}

	item := parsed.Items[0]
	channelID := item.ID.ChannelID
	if channelID == "" {
		channelID = item.Snippet.ChannelID
	}
	res := &ResolveResult{
		ChannelID: channelID,
		Title:     item.Snippet.Title,
		Logo:      item.Snippet.Thumbnails.bestURL(),
	}

	// Search results carry no statistics; fetch them when we got an ID so
	// callers resolving a handle can use the count directly.
	if channelID != "" {
		if ch, err := c.ChannelInfo(ctx, channelID); err == nil {
			res.SubscriberCount = ch.SubscriberCount
			res.HiddenSubscriberCount = ch.HiddenSubscriberCount
			if res.Logo == "" {
				res.Logo = ch.Logo
			}
		}
	}
	return res, nil
}

// get performs a rate-limited, retried GET against the API and returns the
// response body of a 200, or an error carrying the upstream status semantics.
func (c *httpClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "youtube: rate limiter")
	}

	q.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + q.Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "youtube: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "youtube: request failed")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "youtube: read response body")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("youtube: %s", apiErrorMessage(resp.StatusCode, body))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return body, nil
	})
}

func apiErrorMessage(status int, body []byte) string {
	var ae apiError
	if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	return "unexpected status " + strconv.Itoa(status)
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
