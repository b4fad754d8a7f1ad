package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meeplemedia/creatordex/internal/channelid"
	"github.com/meeplemedia/creatordex/internal/dataset"
	"github.com/meeplemedia/creatordex/internal/model"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a survey export for rows the directory would drop or fail to enrich",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateFile == "" {
			if err := cfg.Validate("validate"); err != nil {
				return err
			}
			validateFile = cfg.Dataset.Path
		}

		rows, _, err := dataset.LoadFile(validateFile)
		if err != nil {
			return err
		}

		var unnamed, duplicates, unresolvable int
		seen := map[string]bool{}
		for i, row := range rows {
			key := row.ChannelKey()
			switch {
			case key == "":
				unnamed++
				fmt.Printf("row %d: no channel name, will be dropped\n", i+1)
				continue
			case seen[key]:
				duplicates++
				fmt.Printf("row %d: duplicate of %q, will be dropped\n", i+1, row.ChannelName())
				continue
			}
			seen[key] = true

			if noIdentifier(row) {
				unresolvable++
				fmt.Printf("row %d: %q has no extractable channel identifier, enrichment will fall back to a name search\n", i+1, row.ChannelName())
			}
		}

		fmt.Printf("%d rows: %d unnamed, %d duplicates, %d without identifiers\n",
			len(rows), unnamed, duplicates, unresolvable)
		return nil
	},
}

func noIdentifier(row model.Row) bool {
	return channelid.Extract(row.Link()) == "" && channelid.Extract(row.ChannelName()) == ""
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "survey CSV export (default from config)")
	rootCmd.AddCommand(validateCmd)
}
