// Package flags maps country display names to flag emoji for terminal and
// JSON output.
package flags

import "strings"

var countryToCode = map[string]string{
	"united states":          "US",
	"united state":           "US",
	"usa":                    "US",
	"us":                     "US",
	"united kingdom":         "GB",
	"uk":                     "GB",
	"united kingdom-england": "GB",
	"scotland":               "GB",
	"canada":                 "CA",
	"australia":              "AU",
	"germany":                "DE",
	"france":                 "FR",
	"spain":                  "ES",
	"italy":                  "IT",
	"netherlands":            "NL",
	"sweden":                 "SE",
	"norway":                 "NO",
	"denmark":                "DK",
	"finland":                "FI",
	"japan":                  "JP",
	"south korea":            "KR",
	"korea":                  "KR",
	"china":                  "CN",
	"india":                  "IN",
	"brazil":                 "BR",
	"mexico":                 "MX",
}

// regionalIndicatorBase is the codepoint offset that turns an ASCII capital
// letter into its regional indicator symbol.
const regionalIndicatorBase = 0x1F1E6 - 'A'

// ForCountry returns the flag emoji for a country display name, or "" when
// the country is unknown. Matching is case-insensitive and ignores
// surrounding and repeated whitespace.
func ForCountry(name string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	code, ok := countryToCode[normalized]
	if !ok {
		return ""
	}
	return codeToEmoji(code)
}

func codeToEmoji(code string) string {
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(code) {
		b.WriteRune(regionalIndicatorBase + c)
	}
	return b.String()
}
