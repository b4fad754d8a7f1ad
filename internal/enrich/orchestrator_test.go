package enrich

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemedia/creatordex/internal/model"
)

type fakeClient struct {
	mu           sync.Mutex
	channelCalls int
	resolveCalls int

	channelFn func(id string) (*model.ChannelInfo, error)
	resolveFn func(q string) (*model.ResolvedChannel, error)

	// When set, Channel blocks until the channel is closed.
	gate chan struct{}
}

func (f *fakeClient) Channel(ctx context.Context, id string) (*model.ChannelInfo, error) {
	f.mu.Lock()
	f.channelCalls++
	gate := f.gate
	fn := f.channelFn
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		// Re-read in case the test swapped behavior while we were parked.
		f.mu.Lock()
		fn = f.channelFn
		f.mu.Unlock()
	}
	if fn == nil {
		return &model.ChannelInfo{Title: id, SubscriberCount: model.Int64(100)}, nil
	}
	return fn(id)
}

func (f *fakeClient) Resolve(ctx context.Context, q string) (*model.ResolvedChannel, error) {
	f.mu.Lock()
	f.resolveCalls++
	fn := f.resolveFn
	f.mu.Unlock()
	if fn == nil {
		return nil, eris.New("not found")
	}
	return fn(q)
}

func (f *fakeClient) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channelCalls, f.resolveCalls
}

func ytRow(name, link, platforms string) model.Row {
	return model.Row{
		model.KeyChannelName: name,
		model.KeyLink:        link,
		model.KeyPlatforms:   platforms,
	}
}

func TestRun_FetchesByExtractedID(t *testing.T) {
	client := &fakeClient{
		channelFn: func(id string) (*model.ChannelInfo, error) {
			assert.Equal(t, "UCabcdefghijklmnopqrstuv", id)
			return &model.ChannelInfo{SubscriberCount: model.Int64(2500)}, nil
		},
	}
	o := NewOrchestrator(client, 4)

	got, err := o.Run(context.Background(),
		[]model.Row{ytRow("Chan", "https://youtube.com/channel/UCabcdefghijklmnopqrstuv", "YouTube")})
	require.NoError(t, err)
	require.Contains(t, got, "chan")
	assert.Equal(t, int64(2500), *got["chan"].Count)
}

func TestRun_SkipsNonYouTubeRows(t *testing.T) {
	client := &fakeClient{}
	o := NewOrchestrator(client, 4)

	rows := []model.Row{
		ytRow("Blogger", "https://example.com/blog", "Blog; Website"),
		ytRow("", "https://youtube.com/@x", "YouTube"), // no identity
	}
	got, err := o.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Empty(t, got)

	channels, resolves := client.calls()
	assert.Zero(t, channels)
	assert.Zero(t, resolves)
}

func TestRun_NeverRefetchesWithinSession(t *testing.T) {
	client := &fakeClient{}
	o := NewOrchestrator(client, 4)
	rows := []model.Row{ytRow("Chan", "https://youtube.com/@chan", "YouTube")}

	_, err := o.Run(context.Background(), rows)
	require.NoError(t, err)
	got, err := o.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Empty(t, got)

	channels, _ := client.calls()
	assert.Equal(t, 1, channels)
}

func TestRun_HandleSearchWhenResolverFindsNothing(t *testing.T) {
	// The '@' sits inside a later path segment, so identifier extraction
	// yields nothing, but the raw link still carries a handle marker.
	client := &fakeClient{
		resolveFn: func(q string) (*model.ResolvedChannel, error) {
			assert.Equal(t, "handle", q)
			return &model.ResolvedChannel{SubscriberCount: model.Int64(7)}, nil
		},
	}
	o := NewOrchestrator(client, 1)

	got, err := o.Run(context.Background(),
		[]model.Row{ytRow("Chan", "https://www.youtube.com/user/old@handle", "YouTube")})
	require.NoError(t, err)
	require.Contains(t, got, "chan")
	assert.Equal(t, int64(7), *got["chan"].Count)

	channels, resolves := client.calls()
	assert.Zero(t, channels)
	assert.Equal(t, 1, resolves)
}

func TestRun_NameSearchLastResort(t *testing.T) {
	client := &fakeClient{
		resolveFn: func(q string) (*model.ResolvedChannel, error) {
			assert.Equal(t, "Dice Night", q)
			return &model.ResolvedChannel{ChannelID: "UCabcdefghijklmnopqrstuv"}, nil
		},
		channelFn: func(id string) (*model.ChannelInfo, error) {
			assert.Equal(t, "UCabcdefghijklmnopqrstuv", id)
			return &model.ChannelInfo{SubscriberCount: model.Int64(42)}, nil
		},
	}
	o := NewOrchestrator(client, 1)

	// No link at all, platform list says YouTube.
	got, err := o.Run(context.Background(), []model.Row{ytRow("Dice Night", "", "YouTube")})
	require.NoError(t, err)
	require.Contains(t, got, "dice night")
	assert.Equal(t, int64(42), *got["dice night"].Count)
}

func TestRun_HiddenCountStoredAsNil(t *testing.T) {
	client := &fakeClient{
		channelFn: func(id string) (*model.ChannelInfo, error) {
			return &model.ChannelInfo{
				SubscriberCount:       model.Int64(12345),
				HiddenSubscriberCount: true,
			}, nil
		},
	}
	o := NewOrchestrator(client, 1)

	got, err := o.Run(context.Background(),
		[]model.Row{ytRow("Hidden", "https://youtube.com/@hidden", "YouTube")})
	require.NoError(t, err)
	require.Contains(t, got, "hidden")
	assert.Nil(t, got["hidden"].Count)
}

func TestRun_FailureIsolatedPerRow(t *testing.T) {
	client := &fakeClient{
		channelFn: func(id string) (*model.ChannelInfo, error) {
			if id == "broken" {
				return nil, eris.New("proxy unavailable")
			}
			return &model.ChannelInfo{SubscriberCount: model.Int64(9)}, nil
		},
	}
	o := NewOrchestrator(client, 2)

	rows := []model.Row{
		ytRow("Bad", "https://youtube.com/@broken", "YouTube"),
		ytRow("Good", "https://youtube.com/@good", "YouTube"),
	}
	got, err := o.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got["bad"].Count)
	assert.Equal(t, int64(9), *got["good"].Count)
}

func TestRun_CancelledRunMergesNothing(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{gate: gate}
	o := NewOrchestrator(client, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := o.Run(ctx, []model.Row{ytRow("Chan", "https://youtube.com/@chan", "YouTube")})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(gate)

	err := <-done
	assert.Error(t, err)
	assert.Empty(t, o.Subscribers())
}

func TestRun_SupersededBatchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	slow := &fakeClient{
		gate: gate,
		channelFn: func(id string) (*model.ChannelInfo, error) {
			return &model.ChannelInfo{SubscriberCount: model.Int64(1)}, nil
		},
	}
	o := NewOrchestrator(slow, 1)
	rows := []model.Row{ytRow("Chan", "https://youtube.com/@chan", "YouTube")}

	oldDone := make(chan model.Subscribers, 1)
	go func() {
		got, _ := o.Run(context.Background(), rows)
		oldDone <- got
	}()
	time.Sleep(20 * time.Millisecond)

	// Newer run with a fast client wins even though it starts later.
	slow.mu.Lock()
	slow.gate = nil
	slow.channelFn = func(id string) (*model.ChannelInfo, error) {
		return &model.ChannelInfo{SubscriberCount: model.Int64(2)}, nil
	}
	slow.mu.Unlock()

	newGot, err := o.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Contains(t, newGot, "chan")
	assert.Equal(t, int64(2), *newGot["chan"].Count)

	close(gate) // let the stale batch finish
	oldGot := <-oldDone
	assert.Nil(t, oldGot)

	subs := o.Subscribers()
	assert.Equal(t, int64(2), *subs["chan"].Count)
}
