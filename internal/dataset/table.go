package dataset

import (
	"sort"
	"strings"

	"github.com/meeplemedia/creatordex/internal/model"
)

// SortByColumn stably sorts rows by a raw column value, case-insensitively.
// Missing values order first ascending, last descending, so sparse columns
// stay grouped. Used by the table view; the card grid uses Compute.
func SortByColumn(rows []model.Row, key string, asc bool) []model.Row {
	out := make([]model.Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i][key]
		b, bok := out[j][key]
		if !aok && !bok {
			return false
		}
		if !aok {
			return asc
		}
		if !bok {
			return !asc
		}
		cmp := strings.Compare(strings.ToLower(a), strings.ToLower(b))
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
	return out
}

// Paginate returns the page-th slice of size pageSize (page is zero-based).
func Paginate(rows []model.Row, page, pageSize int) []model.Row {
	if pageSize <= 0 || page < 0 {
		return nil
	}
	start := page * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
