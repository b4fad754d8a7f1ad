// Package channelid derives a YouTube channel identifier, or a handle needing
// further resolution, from a creator-submitted URL or name. Pure string
// inspection; no I/O.
package channelid

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// Native channel IDs are "UC" plus 22 characters of [A-Za-z0-9_-].
	idPattern = regexp.MustCompile(`^UC[\w-]{22}$`)

	// Fallback scan for an @handle anywhere in free text.
	handlePattern = regexp.MustCompile(`@([\w-]+)`)
)

// IsID reports whether s is already a native channel ID.
func IsID(s string) bool {
	return idPattern.MatchString(s)
}

// Extract resolves free text to a channel ID or a handle (without its '@'
// prefix). It returns "" when nothing identifier-like can be derived. The
// caller must still resolve handles to a stable ID; only strings satisfying
// IsID are stable.
func Extract(text string) string {
	if text == "" {
		return ""
	}

	// Drop query parameters and surrounding whitespace.
	clean, _, _ := strings.Cut(text, "?")
	clean = strings.TrimSpace(clean)

	if IsID(clean) {
		return clean
	}

	if strings.HasPrefix(clean, "http") {
		u, err := url.Parse(clean)
		if err == nil {
			parts := splitPath(u.Path)
			if len(parts) >= 2 && parts[0] == "channel" {
				return parts[1]
			}
			if len(parts) >= 1 && strings.HasPrefix(parts[0], "@") {
				return parts[0][1:]
			}
			return ""
		}
		// Malformed URL: degrade to the handle scan below.
	} else if strings.HasPrefix(clean, "@") {
		return clean[1:]
	}

	if m := handlePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
