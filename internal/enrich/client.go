// Package enrich attaches live channel metadata to dataset rows. Lookups run
// concurrently, tolerate individual failures, and merge as a single batch so
// consumers never observe partial results.
package enrich

import (
	"context"

	"github.com/meeplemedia/creatordex/internal/model"
)

// Client is the metadata lookup surface exposed by the caching proxy.
type Client interface {
	// Channel fetches metadata for a channel ID or handle.
	Channel(ctx context.Context, channelID string) (*model.ChannelInfo, error)

	// Resolve finds the best channel match for a free-text handle or query.
	Resolve(ctx context.Context, query string) (*model.ResolvedChannel, error)
}
