package youtube

// Channel is the condensed channel record the client returns.
// Counts are nil when the API omits them; a hidden subscriber count is
// reported via HiddenSubscriberCount rather than a zero value.
type Channel struct {
	ID                    string
	Title                 string
	Logo                  string
	SubscriberCount       *int64
	HiddenSubscriberCount bool
	ViewCount             *int64
	VideoCount            *int64
}

// ResolveResult is the best channel match for a handle or search query.
type ResolveResult struct {
	ChannelID             string
	Title                 string
	Logo                  string
	SubscriberCount       *int64
	HiddenSubscriberCount bool
}

// Wire types for the Data API v3. Counts arrive as decimal strings.

type thumbnail struct {
	URL string `json:"url"`
}

type thumbnails struct {
	Default *thumbnail `json:"default"`
	Medium  *thumbnail `json:"medium"`
	High    *thumbnail `json:"high"`
}

// bestURL prefers the default thumbnail, then medium, then high.
func (t thumbnails) bestURL() string {
	for _, th := range []*thumbnail{t.Default, t.Medium, t.High} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return ""
}

type snippet struct {
	Title      string     `json:"title"`
	ChannelID  string     `json:"channelId"`
	Thumbnails thumbnails `json:"thumbnails"`
}

type statistics struct {
	SubscriberCount       string `json:"subscriberCount"`
	HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
	ViewCount             string `json:"viewCount"`
	VideoCount            string `json:"videoCount"`
}

type channelListResponse struct {
	Items []struct {
		ID         string      `json:"id"`
		Snippet    snippet     `json:"snippet"`
		Statistics *statistics `json:"statistics"`
	} `json:"items"`
}

type searchID struct {
	ChannelID string `json:"channelId"`
}

type searchListResponse struct {
	Items []struct {
		ID      searchID `json:"id"`
		Snippet snippet  `json:"snippet"`
	} `json:"items"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
