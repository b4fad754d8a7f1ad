package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemedia/creatordex/internal/model"
	"github.com/meeplemedia/creatordex/pkg/youtube"
)

type fakeYouTube struct {
	mu           sync.Mutex
	channelCalls int
	resolveCalls int
	channelFn    func(id string) (*youtube.Channel, error)
	resolveFn    func(q string) (*youtube.ResolveResult, error)
}

func (f *fakeYouTube) ChannelInfo(_ context.Context, id string) (*youtube.Channel, error) {
	f.mu.Lock()
	f.channelCalls++
	fn := f.channelFn
	f.mu.Unlock()
	if fn == nil {
		return nil, youtube.ErrNotFound
	}
	return fn(id)
}

func (f *fakeYouTube) ResolveChannel(_ context.Context, q string) (*youtube.ResolveResult, error) {
	f.mu.Lock()
	f.resolveCalls++
	fn := f.resolveFn
	f.mu.Unlock()
	if fn == nil {
		return nil, youtube.ErrNotFound
	}
	return fn(q)
}

type memStore struct {
	mu       sync.Mutex
	channels map[string]*model.ChannelInfo
	queries  map[string]*model.ResolvedChannel
}

func newMemStore() *memStore {
	return &memStore{
		channels: map[string]*model.ChannelInfo{},
		queries:  map[string]*model.ResolvedChannel{},
	}
}

func (m *memStore) GetChannel(_ context.Context, id string) (*model.ChannelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels[id], nil
}

func (m *memStore) SetChannel(_ context.Context, id string, info *model.ChannelInfo, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[id] = info
	return nil
}

func (m *memStore) GetQuery(_ context.Context, q string) (*model.ResolvedChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[q], nil
}

func (m *memStore) SetQuery(_ context.Context, q string, res *model.ResolvedChannel, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[q] = res
	return nil
}

func (m *memStore) DeleteExpired(context.Context) (int, error) { return 0, nil }
func (m *memStore) Migrate(context.Context) error              { return nil }
func (m *memStore) Close() error                               { return nil }

func newTestServer(t *testing.T, yt *fakeYouTube) (*httptest.Server, *memStore) {
	t.Helper()
	st := newMemStore()
	svc := NewChannelService(yt, st, time.Hour)
	srv := httptest.NewServer(Handler(svc, nil))
	t.Cleanup(srv.Close)
	return srv, st
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeYouTube{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestChannelEndpoint(t *testing.T) {
	yt := &fakeYouTube{
		channelFn: func(id string) (*youtube.Channel, error) {
			return &youtube.Channel{
				Title:           "Dice Tower",
				SubscriberCount: model.Int64(313000),
			}, nil
		},
	}
	srv, _ := newTestServer(t, yt)

	resp, err := http.Get(srv.URL + "/api/channel/UCuMKPcqZVfmbn9Ze8nvQq1Q")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info model.ChannelInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "Dice Tower", info.Title)
	require.NotNil(t, info.SubscriberCount)
	assert.Equal(t, int64(313000), *info.SubscriberCount)
}

func TestChannelEndpoint_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeYouTube{})

	resp, err := http.Get(srv.URL + "/api/channel/UCdoesnotexist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChannelEndpoint_CacheHitSkipsUpstream(t *testing.T) {
	yt := &fakeYouTube{
		channelFn: func(id string) (*youtube.Channel, error) {
			return &youtube.Channel{Title: "Once"}, nil
		},
	}
	srv, _ := newTestServer(t, yt)

	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/api/channel/UCcached")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	yt.mu.Lock()
	defer yt.mu.Unlock()
	assert.Equal(t, 1, yt.channelCalls)
}

func TestResolveEndpoint(t *testing.T) {
	yt := &fakeYouTube{
		resolveFn: func(q string) (*youtube.ResolveResult, error) {
			return &youtube.ResolveResult{ChannelID: "UCfound", Title: "Found " + q}, nil
		},
	}
	srv, _ := newTestServer(t, yt)

	resp, err := http.Get(srv.URL + "/api/resolve?q=dicetower")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.ResolvedChannel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "UCfound", res.ChannelID)
}

func TestResolveEndpoint_MissingQuery(t *testing.T) {
	srv, _ := newTestServer(t, &fakeYouTube{})

	resp, err := http.Get(srv.URL + "/api/resolve")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImageCache_Fetch(t *testing.T) {
	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte("fake-image-bytes"))
	}))
	defer upstream.Close()

	cache, err := NewImageCache(t.TempDir())
	require.NoError(t, err)

	local, err := cache.Fetch(context.Background(), "UCabc/../etc", upstream.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "/cache/UCabc____etc.png", local)

	again, err := cache.Fetch(context.Background(), "UCabc/../etc", upstream.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, local, again)
	assert.Equal(t, 1, hits)
}
