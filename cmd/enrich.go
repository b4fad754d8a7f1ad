package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meeplemedia/creatordex/internal/dataset"
	"github.com/meeplemedia/creatordex/internal/enrich"
	"github.com/meeplemedia/creatordex/internal/proxyclient"
)

var enrichOpts struct {
	file        string
	out         string
	concurrency int
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch subscriber counts for every YouTube creator in the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		if enrichOpts.file == "" {
			if err := cfg.Validate("query"); err != nil {
				return err
			}
			enrichOpts.file = cfg.Dataset.Path
		}

		rows, _, err := dataset.LoadFile(enrichOpts.file)
		if err != nil {
			return err
		}
		rows = dataset.Dedupe(rows)

		concurrency := enrichOpts.concurrency
		if concurrency == 0 {
			concurrency = cfg.Enrich.Concurrency
		}

		client := proxyclient.New(cfg.Enrich.ProxyURL)
		orch := enrich.NewOrchestrator(client, concurrency)

		updates, err := orch.Run(cmd.Context(), rows)
		if err != nil {
			return eris.Wrap(err, "enrichment run")
		}
		zap.L().Info("enrichment complete",
			zap.Int("rows", len(rows)),
			zap.Int("fetched", len(updates)),
		)

		subs := orch.Subscribers()
		out := os.Stdout
		if enrichOpts.out != "" {
			f, err := os.Create(enrichOpts.out)
			if err != nil {
				return eris.Wrapf(err, "create %s", enrichOpts.out)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichOpts.file, "file", "f", "", "survey CSV export (default from config)")
	enrichCmd.Flags().StringVarP(&enrichOpts.out, "out", "o", "", "write the subscriber map to a file instead of stdout")
	enrichCmd.Flags().IntVar(&enrichOpts.concurrency, "concurrency", 0, "concurrent lookups (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
