package enrich

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meeplemedia/creatordex/internal/canonical"
	"github.com/meeplemedia/creatordex/internal/channelid"
	"github.com/meeplemedia/creatordex/internal/model"
)

// Orchestrator populates the subscriber map for a dataset. It is safe to
// re-invoke; channels already looked up in this session are skipped, and a
// run superseded by a newer one discards its results instead of merging them.
type Orchestrator struct {
	client      Client
	concurrency int

	generation atomic.Uint64

	mu   sync.Mutex
	subs model.Subscribers
}

// NewOrchestrator creates an orchestrator with the given lookup concurrency.
func NewOrchestrator(client Client, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Orchestrator{
		client:      client,
		concurrency: concurrency,
		subs:        make(model.Subscribers),
	}
}

// Subscribers returns a snapshot of the accumulated map.
func (o *Orchestrator) Subscribers() model.Subscribers {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.subs.Clone()
}

// Run looks up subscriber counts for every row that plausibly lives on
// YouTube and has no entry yet, then merges all results in one batch. It
// returns the entries this run produced. Individual lookup failures yield a
// nil-count entry and never abort sibling lookups; a cancelled context or a
// superseded run merges nothing.
func (o *Orchestrator) Run(ctx context.Context, rows []model.Row) (model.Subscribers, error) {
	gen := o.generation.Add(1)

	o.mu.Lock()
	pending := make([]model.Row, 0, len(rows))
	queued := make(map[string]bool)
	for _, row := range rows {
		key := row.ChannelKey()
		if key == "" || queued[key] {
			continue
		}
		if _, done := o.subs[key]; done {
			continue
		}
		if !onYouTube(row) {
			continue
		}
		queued[key] = true
		pending = append(pending, row)
	}
	o.mu.Unlock()

	if len(pending) == 0 {
		return model.Subscribers{}, nil
	}

	var updMu sync.Mutex
	updates := make(model.Subscribers, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, row := range pending {
		g.Go(func() error {
			entry := o.lookup(gctx, row)
			updMu.Lock()
			updates[row.ChannelKey()] = entry
			updMu.Unlock()
			return nil // individual failures never fail the batch
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		// Torn down while lookups were in flight: discard, don't merge.
		return nil, ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation.Load() {
		// A newer run started while this one was in flight; its results win.
		zap.L().Debug("enrich: discarding superseded batch", zap.Uint64("generation", gen))
		return nil, nil
	}
	for k, v := range updates {
		o.subs[k] = v
	}
	return updates, nil
}

// onYouTube reports whether the row gives any evidence of a YouTube presence:
// its link mentions youtube, or its canonical platform list includes it.
func onYouTube(row model.Row) bool {
	if strings.Contains(strings.ToLower(row.Link()), "youtube") {
		return true
	}
	return canonical.PlatformKeySet(row.PlatformsRaw())["youtube"]
}

// lookup runs the resolution cascade for one row. The strategy order is
// load-bearing: identifier from the link, then from the channel name, then a
// handle search from the link, then a name search. The first success decides
// which external record gets attached.
func (o *Orchestrator) lookup(ctx context.Context, row model.Row) model.SubscriberEntry {
	link := row.Link()
	name := strings.TrimSpace(row.ChannelName())

	var count *int64
	hidden := false

	idOrHandle := channelid.Extract(link)
	if idOrHandle == "" {
		idOrHandle = channelid.Extract(name)
	}
	idOrHandle = strings.TrimPrefix(idOrHandle, "@")

	switch {
	case idOrHandle == "" && strings.Contains(link, "@"):
		handle := handleFromLink(link)
		resolved, err := o.client.Resolve(ctx, handle)
		if err != nil {
			o.logMiss(row, "resolve handle", err)
			break
		}
		count = resolved.SubscriberCount
		hidden = resolved.HiddenSubscriberCount

	case idOrHandle == "":
		// Last resort: the platform list says YouTube, search by name.
		resolved, err := o.client.Resolve(ctx, name)
		if err != nil {
			o.logMiss(row, "resolve name", err)
			break
		}
		if resolved.ChannelID == "" {
			break
		}
		info, err := o.client.Channel(ctx, resolved.ChannelID)
		if err != nil {
			o.logMiss(row, "fetch resolved channel", err)
			break
		}
		count = info.SubscriberCount
		hidden = info.HiddenSubscriberCount

	default:
		info, err := o.client.Channel(ctx, idOrHandle)
		if err != nil {
			o.logMiss(row, "fetch channel", err)
			break
		}
		count = info.SubscriberCount
		hidden = info.HiddenSubscriberCount
	}

	// Hidden counts are recorded as nil, never as a number.
	if hidden {
		return model.SubscriberEntry{}
	}
	return model.SubscriberEntry{Count: count}
}

func (o *Orchestrator) logMiss(row model.Row, stage string, err error) {
	zap.L().Debug("enrich: lookup failed",
		zap.String("channel", row.ChannelName()),
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// handleFromLink extracts the handle after the last '@', stopping at the next
// path, query, or fragment separator.
func handleFromLink(link string) string {
	idx := strings.LastIndex(link, "@")
	handle := link[idx+1:]
	if cut := strings.IndexAny(handle, "/?#"); cut >= 0 {
		handle = handle[:cut]
	}
	return handle
}
