// Package canonical maps noisy free-text survey values (platform names,
// country names) onto curated display labels. All lookups are pure functions
// over static synonym tables; an optional YAML overlay can extend the tables
// at startup.
package canonical

import (
	"regexp"
	"strings"
	"unicode"
)

// platformLabels maps normalized platform tokens to their display label.
var platformLabels = map[string]string{
	"youtube":       "YouTube",
	"you tube":      "YouTube",
	"yt":            "YouTube",
	"instagram":     "Instagram",
	"ig":            "Instagram",
	"website":       "Website",
	"site":          "Website",
	"web site":      "Website",
	"web":           "Website",
	"www":           "Website",
	"blog":          "Blog",
	"blog/website":  "Website",
	"tiktok":        "TikTok",
	"tik tok":       "TikTok",
	"twitch":        "Twitch",
	"facebook":      "Facebook",
	"fb":            "Facebook",
	"twitter":       "X (Twitter)",
	"x":             "X (Twitter)",
	"x (twitter)":   "X (Twitter)",
	"twitter/x":     "X (Twitter)",
	"threads":       "Threads",
	"reddit":        "Reddit",
	"podcast":       "Podcast",
	"newsletter":    "Newsletter",
	"boardgamegeek": "BoardGameGeek",
	"board game geek": "BoardGameGeek",
	"bgg":           "BoardGameGeek",
}

// countryLabels maps normalized country tokens (see countryKey) to their
// display label.
var countryLabels = map[string]string{
	"us":                       "United States",
	"usa":                      "United States",
	"u s":                      "United States",
	"u s a":                    "United States",
	"united states":            "United States",
	"united states of america": "United States",
	"uk":             "United Kingdom",
	"u k":            "United Kingdom",
	"united kingdom": "United Kingdom",
	"great britain":  "United Kingdom",
	"gb":             "United Kingdom",
	"netherlands":     "Netherlands",
	"the netherlands": "Netherlands",
	"holland":         "Netherlands",
	"nl":              "Netherlands",
	"czech":          "Czechia",
	"czech republic": "Czechia",
	"czechia":        "Czechia",
	"south korea":       "South Korea",
	"republic of korea": "South Korea",
	"korea republic of": "South Korea",
	"uae":                  "United Arab Emirates",
	"u a e":                "United Arab Emirates",
	"united arab emirates": "United Arab Emirates",
	"viet nam":      "Vietnam",
	"cote d ivoire": "Côte d'Ivoire",
}

var (
	platformSeparators = regexp.MustCompile(`[;,&]`)
	countryPunct       = regexp.MustCompile(`[.()]`)
	countryNonLetters  = regexp.MustCompile(`[^a-z\s]`)
	whitespaceRuns     = regexp.MustCompile(`\s+`)
	wordRuns           = regexp.MustCompile(`\w\S*`)
)

// titleCase capitalizes the first letter of every word and lowercases the
// rest. Words are rewritten in place, so the input's spacing is preserved.
func titleCase(s string) string {
	return wordRuns.ReplaceAllStringFunc(s, func(w string) string {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

// Platform returns the canonical display label for a single platform token.
// Unrecognized tokens fall back to the title-cased input.
func Platform(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if label, ok := platformLabels[key]; ok {
		return label
	}
	return titleCase(raw)
}

// PlatformKey returns the case-insensitive identity of a platform token: two
// raw tokens name the same platform iff their keys are equal.
func PlatformKey(raw string) string {
	return strings.ToLower(Platform(raw))
}

// SplitPlatforms splits a multi-valued platform field on ';', ',' and '&',
// trimming each token and discarding empties. Tokens are returned raw, not
// canonicalized.
func SplitPlatforms(raw string) []string {
	var out []string
	for _, tok := range platformSeparators.Split(raw, -1) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Platforms splits a multi-valued platform field and canonicalizes each token,
// deduplicating case-insensitively while preserving the first-seen display
// form.
func Platforms(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range SplitPlatforms(raw) {
		label := Platform(tok)
		key := strings.ToLower(label)
		if !seen[key] {
			seen[key] = true
			out = append(out, label)
		}
	}
	return out
}

// PlatformKeySet returns the set of canonical platform keys in a multi-valued
// platform field.
func PlatformKeySet(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range SplitPlatforms(raw) {
		set[PlatformKey(tok)] = true
	}
	return set
}

// countryKey normalizes a country token for table lookup: lowercase, strip
// dots and parens, replace '&' with "and", drop non-letters, collapse
// whitespace.
func countryKey(raw string) string {
	s := strings.ToLower(raw)
	s = countryPunct.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", "and")
	s = countryNonLetters.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Country returns the canonical display label for a country token, or "" for
// blank input. Unrecognized tokens fall back to the title-cased input.
func Country(raw string) string {
	key := countryKey(raw)
	if key == "" {
		return ""
	}
	if label, ok := countryLabels[key]; ok {
		return label
	}
	return titleCase(strings.TrimSpace(raw))
}

// CountryKey returns the case-insensitive identity of a country token.
func CountryKey(raw string) string {
	return strings.ToLower(Country(raw))
}
