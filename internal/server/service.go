// Package server implements the caching proxy in front of the YouTube Data
// API: channel metadata and handle resolution with a TTL cache, plus local
// logo caching.
package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meeplemedia/creatordex/internal/model"
	"github.com/meeplemedia/creatordex/internal/store"
	"github.com/meeplemedia/creatordex/pkg/youtube"
)

// ChannelService answers metadata lookups, reading through the store-backed
// TTL cache to the upstream API. Store failures degrade to uncached lookups;
// they are logged, never surfaced.
type ChannelService struct {
	yt    youtube.Client
	cache store.Store
	ttl   time.Duration
}

// NewChannelService creates a service with the given cache TTL.
func NewChannelService(yt youtube.Client, cache store.Store, ttl time.Duration) *ChannelService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ChannelService{yt: yt, cache: cache, ttl: ttl}
}

// Channel returns metadata for a channel ID, cached for the TTL once fetched.
func (s *ChannelService) Channel(ctx context.Context, channelID string) (*model.ChannelInfo, error) {
	if cached, err := s.cache.GetChannel(ctx, channelID); err != nil {
		zap.L().Warn("server: channel cache read failed", zap.String("channel_id", channelID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	ch, err := s.yt.ChannelInfo(ctx, channelID)
	if err != nil {
		return nil, err
	}

	info := &model.ChannelInfo{
		Logo:                  ch.Logo,
		Title:                 ch.Title,
		SubscriberCount:       ch.SubscriberCount,
		HiddenSubscriberCount: ch.HiddenSubscriberCount,
		ViewCount:             ch.ViewCount,
		VideoCount:            ch.VideoCount,
	}
	if err := s.cache.SetChannel(ctx, channelID, info, s.ttl); err != nil {
		zap.L().Warn("server: channel cache write failed", zap.String("channel_id", channelID), zap.Error(err))
	}
	return info, nil
}

// Resolve finds the best channel match for a handle or query, cached by the
// query text.
func (s *ChannelService) Resolve(ctx context.Context, query string) (*model.ResolvedChannel, error) {
	if cached, err := s.cache.GetQuery(ctx, query); err != nil {
		zap.L().Warn("server: query cache read failed", zap.String("query", query), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	r, err := s.yt.ResolveChannel(ctx, query)
	if err != nil {
		return nil, err
	}

	res := &model.ResolvedChannel{
		ChannelID:             r.ChannelID,
		Title:                 r.Title,
		Logo:                  r.Logo,
		SubscriberCount:       r.SubscriberCount,
		HiddenSubscriberCount: r.HiddenSubscriberCount,
	}
	if err := s.cache.SetQuery(ctx, query, res, s.ttl); err != nil {
		zap.L().Warn("server: query cache write failed", zap.String("query", query), zap.Error(err))
	}
	return res, nil
}
