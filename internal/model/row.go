// Package model defines the core data types shared across the directory:
// survey rows, channel metadata, and the subscriber map consumed by sorting.
package model

import "strings"

// Survey question keys as they appear in the dataset header. The header text is
// the contract with the published form, typos included.
const (
	KeyTimestamp     = "Timestamp"
	KeySubmitterName = "What is your name?"
	KeyChannelName   = "What is the name of your channel?"
	KeyPlatforms     = "What platform is your channel on?"
	KeyCountry       = "What country are located in?"
	KeyLink          = "What is the link to your channel(s)? (If you have multiple channels, add them all using commas to separate them.)"
	KeyFavoriteGames = "What are your top 10 favorite games?"
	KeyContentType   = "What type of content do you prefer to cover?"
	KeyCharges       = "Do you charge for content?"
)

// Row is a single survey submission, keyed by question text. Rows are treated
// as immutable once loaded.
type Row map[string]string

// Get returns the raw value for a question key ("" when absent).
func (r Row) Get(key string) string {
	return r[key]
}

// SubmitterName returns the submitter's display name.
func (r Row) SubmitterName() string {
	return r[KeySubmitterName]
}

// ChannelName returns the channel name as submitted.
func (r Row) ChannelName() string {
	return r[KeyChannelName]
}

// ChannelKey returns the deduplication identity for the row: the
// case-insensitive, trimmed channel name. Empty means the row has no identity
// and is dropped during deduplication.
func (r Row) ChannelKey() string {
	return strings.ToLower(strings.TrimSpace(r[KeyChannelName]))
}

// PlatformsRaw returns the free-text platform field.
func (r Row) PlatformsRaw() string {
	return r[KeyPlatforms]
}

// CountryRaw returns the free-text country field.
func (r Row) CountryRaw() string {
	return r[KeyCountry]
}

// Link returns the first channel link. Submitters may list several links
// comma-separated; enrichment only ever inspects the first one.
func (r Row) Link() string {
	link, _, _ := strings.Cut(r[KeyLink], ",")
	return strings.TrimSpace(link)
}

// Charges returns the raw paid-content answer.
func (r Row) Charges() string {
	return r[KeyCharges]
}
