package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemedia/creatordex/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_ChannelRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info := &model.ChannelInfo{
		Logo:            "http://img.example/d.jpg",
		Title:           "Dice Tower",
		SubscriberCount: model.Int64(313000),
	}
	require.NoError(t, s.SetChannel(ctx, "UCx", info, time.Hour))

	got, err := s.GetChannel(ctx, "UCx")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dice Tower", got.Title)
	assert.Equal(t, int64(313000), *got.SubscriberCount)
}

func TestSQLite_MissReturnsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetChannel(context.Background(), "UCnothere")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_ExpiredReadsAsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetChannel(ctx, "UCx", &model.ChannelInfo{Title: "Old"}, -time.Hour))

	got, err := s.GetChannel(ctx, "UCx")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_QueryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := &model.ResolvedChannel{ChannelID: "UCy", Title: "Meeple Cafe"}
	require.NoError(t, s.SetQuery(ctx, "meeple cafe", res, time.Hour))

	got, err := s.GetQuery(ctx, "meeple cafe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "UCy", got.ChannelID)

	miss, err := s.GetQuery(ctx, "other query")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestSQLite_HiddenStateSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetChannel(ctx, "UCh",
		&model.ChannelInfo{Title: "Secretive", HiddenSubscriberCount: true}, time.Hour))

	got, err := s.GetChannel(ctx, "UCh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HiddenSubscriberCount)
	assert.Nil(t, got.SubscriberCount)
}

func TestSQLite_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetChannel(ctx, "UCdead", &model.ChannelInfo{}, -time.Hour))
	require.NoError(t, s.SetChannel(ctx, "UClive", &model.ChannelInfo{}, time.Hour))
	require.NoError(t, s.SetQuery(ctx, "stale", &model.ResolvedChannel{}, -time.Hour))

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	live, err := s.GetChannel(ctx, "UClive")
	require.NoError(t, err)
	assert.NotNil(t, live)
}
