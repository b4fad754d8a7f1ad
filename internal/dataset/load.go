// Package dataset loads the creator survey CSV and computes the deduplicated,
// filtered, sorted views consumed by the table and card-grid outputs.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/meeplemedia/creatordex/internal/model"
)

// Load reads header-keyed rows from a CSV stream. Field values are trimmed
// and fully-empty lines are skipped, matching how the dataset is published.
func Load(r io.Reader) ([]model.Row, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // survey exports have ragged trailing fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("dataset: empty csv")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []model.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "dataset: read row")
		}

		row := make(model.Row, len(header))
		empty := true
		for i, h := range header {
			if i >= len(record) {
				break
			}
			v := strings.TrimSpace(record[i])
			row[h] = v
			if v != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	return rows, header, nil
}

// LoadFile reads the dataset from disk.
func LoadFile(path string) ([]model.Row, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()
	return Load(f)
}
