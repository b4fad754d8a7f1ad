// Package store persists the proxy's metadata cache. Entries carry a TTL;
// expired entries read as misses and are reaped by DeleteExpired.
package store

import (
	"context"
	"time"

	"github.com/meeplemedia/creatordex/internal/model"
)

// Store is the persistence interface for the channel metadata cache.
// Get methods return (nil, nil) on a miss or an expired entry.
type Store interface {
	GetChannel(ctx context.Context, channelID string) (*model.ChannelInfo, error)
	SetChannel(ctx context.Context, channelID string, info *model.ChannelInfo, ttl time.Duration) error

	GetQuery(ctx context.Context, query string) (*model.ResolvedChannel, error)
	SetQuery(ctx context.Context, query string, res *model.ResolvedChannel, ttl time.Duration) error

	// DeleteExpired removes entries past their TTL and returns the count.
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
