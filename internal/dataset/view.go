package dataset

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/meeplemedia/creatordex/internal/canonical"
	"github.com/meeplemedia/creatordex/internal/model"
)

// SortOption selects the ordering of the computed view.
type SortOption string

const (
	SortNameAsc         SortOption = "nameAsc"
	SortNameDesc        SortOption = "nameDesc"
	SortCountry         SortOption = "country"
	SortPlatformCount   SortOption = "platformCount"
	SortSubscribersDesc SortOption = "subscribersDesc"
)

// PaidFilter selects rows by their paid-content answer.
type PaidFilter string

const (
	PaidAll  PaidFilter = "all"
	PaidFree PaidFilter = "free"
	PaidOnly PaidFilter = "paid"
)

// Query holds the facet selections applied by Compute. Platform selection is
// conjunctive (a row must carry every selected platform); country selection is
// disjunctive (any selected country matches).
type Query struct {
	Search    string
	Platforms []string
	Countries []string
	Paid      PaidFilter
	Sort      SortOption
}

// collator gives locale-aware, case-insensitive string ordering for the name
// and country sorts.
var collator = collate.New(language.English, collate.IgnoreCase)

// Dedupe drops rows whose channel-name key repeats or is empty, keeping the
// first occurrence of each key.
func Dedupe(rows []model.Row) []model.Row {
	seen := make(map[string]bool, len(rows))
	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		key := row.ChannelKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

// PlatformOptions returns the sorted canonical platform labels present in the
// row set, deduplicated case-insensitively with the first-seen display form.
// Callers pass the deduplicated, unfiltered set so that applying a filter
// never hides other options.
func PlatformOptions(rows []model.Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		for _, label := range canonical.Platforms(row.PlatformsRaw()) {
			key := strings.ToLower(label)
			if !seen[key] {
				seen[key] = true
				out = append(out, label)
			}
		}
	}
	sort.Strings(out)
	return out
}

// CountryOptions returns the sorted canonical country labels present in the
// row set.
func CountryOptions(rows []model.Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		label := canonical.Country(row.CountryRaw())
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if !seen[key] {
			seen[key] = true
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

// Compute produces the ordered view: deduplicate, then apply text search,
// platform (AND), country (OR) and paid filters in that order, then sort
// stably. It is a pure function of its inputs.
func Compute(rows []model.Row, q Query, subs model.Subscribers) []model.Row {
	deduped := Dedupe(rows)

	search := strings.ToLower(strings.TrimSpace(q.Search))
	selectedPlatforms := make([]string, 0, len(q.Platforms))
	for _, p := range q.Platforms {
		selectedPlatforms = append(selectedPlatforms, canonical.PlatformKey(p))
	}
	selectedCountries := make([]string, 0, len(q.Countries))
	for _, c := range q.Countries {
		if c != "" {
			selectedCountries = append(selectedCountries, strings.ToLower(c))
		}
	}

	filtered := make([]model.Row, 0, len(deduped))
	for _, row := range deduped {
		if search != "" && !matchesSearch(row, search) {
			continue
		}

		if len(selectedPlatforms) > 0 {
			tokens := canonical.PlatformKeySet(row.PlatformsRaw())
			all := true
			for _, sel := range selectedPlatforms {
				if !tokens[sel] {
					all = false
					break
				}
			}
			if !all {
				continue
			}
		}

		if len(selectedCountries) > 0 {
			rowCountry := canonical.CountryKey(row.CountryRaw())
			any := false
			for _, sel := range selectedCountries {
				if sel == rowCountry {
					any = true
					break
				}
			}
			if !any {
				continue
			}
		}

		charges := strings.Contains(strings.ToLower(row.Charges()), "yes")
		if q.Paid == PaidFree && charges {
			continue
		}
		if q.Paid == PaidOnly && !charges {
			continue
		}

		filtered = append(filtered, row)
	}

	sortRows(filtered, q.Sort, subs)
	return filtered
}

// matchesSearch reports whether the query appears in the concatenation of the
// searchable fields.
func matchesSearch(row model.Row, query string) bool {
	hay := strings.ToLower(strings.Join([]string{
		row.SubmitterName(),
		row.ChannelName(),
		row.Get(model.KeyFavoriteGames),
		row.Get(model.KeyContentType),
	}, " "))
	return strings.Contains(hay, query)
}

func sortRows(rows []model.Row, opt SortOption, subs model.Subscribers) {
	switch opt {
	case SortNameAsc:
		sort.SliceStable(rows, func(i, j int) bool {
			return collator.CompareString(rows[i].ChannelName(), rows[j].ChannelName()) < 0
		})
	case SortNameDesc:
		sort.SliceStable(rows, func(i, j int) bool {
			return collator.CompareString(rows[j].ChannelName(), rows[i].ChannelName()) < 0
		})
	case SortCountry:
		sort.SliceStable(rows, func(i, j int) bool {
			return collator.CompareString(rows[i].CountryRaw(), rows[j].CountryRaw()) < 0
		})
	case SortPlatformCount:
		sort.SliceStable(rows, func(i, j int) bool {
			return platformCount(rows[i]) > platformCount(rows[j])
		})
	case SortSubscribersDesc:
		sort.SliceStable(rows, func(i, j int) bool {
			return subscriberCount(rows[i], subs) > subscriberCount(rows[j], subs)
		})
	}
}

func platformCount(row model.Row) int {
	return len(canonical.PlatformKeySet(row.PlatformsRaw()))
}

// subscriberCount treats rows with no enrichment entry, a failed lookup, or a
// hidden count as zero.
func subscriberCount(row model.Row, subs model.Subscribers) int64 {
	entry, ok := subs[row.ChannelKey()]
	if !ok || entry.Count == nil {
		return 0
	}
	return *entry.Count
}
