package model

// ChannelInfo is the metadata record the proxy returns for a channel ID.
// SubscriberCount is nil when the platform reports no figure; a hidden count
// is a distinct state (HiddenSubscriberCount true) and must not be conflated
// with an unknown one.
type ChannelInfo struct {
	Logo                  string `json:"logo"`
	Title                 string `json:"title"`
	SubscriberCount       *int64 `json:"subscriberCount"`
	HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
	ViewCount             *int64 `json:"viewCount,omitempty"`
	VideoCount            *int64 `json:"videoCount,omitempty"`
}

// ResolvedChannel is the result of resolving a free-text handle or search
// query to a stable channel ID.
type ResolvedChannel struct {
	ChannelID             string `json:"channelId"`
	Title                 string `json:"title"`
	Logo                  string `json:"logo"`
	SubscriberCount       *int64 `json:"subscriberCount"`
	HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
}

// SubscriberEntry records the enrichment outcome for one channel. A nil count
// means the lookup failed, the channel hides its count, or no identifier could
// be derived; the subscriber sort treats all of those as zero.
type SubscriberEntry struct {
	Count *int64 `json:"count"`
}

// Subscribers maps the lowercased, trimmed channel name to its enrichment
// outcome. Entries are only ever added for the lifetime of a loaded dataset.
type Subscribers map[string]SubscriberEntry

// Clone returns a shallow copy of the map.
func (s Subscribers) Clone() Subscribers {
	out := make(Subscribers, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Int64 returns a pointer to v. Helper for building records and fixtures.
func Int64(v int64) *int64 {
	return &v
}
