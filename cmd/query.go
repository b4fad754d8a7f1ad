package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meeplemedia/creatordex/internal/canonical"
	"github.com/meeplemedia/creatordex/internal/dataset"
	"github.com/meeplemedia/creatordex/internal/enrich"
	"github.com/meeplemedia/creatordex/internal/flags"
	"github.com/meeplemedia/creatordex/internal/model"
	"github.com/meeplemedia/creatordex/internal/proxyclient"
)

var queryOpts struct {
	file       string
	search     string
	platforms  []string
	countries  []string
	paid       string
	sort       string
	sortColumn string
	desc       bool
	page       int
	pageSize   int
	jsonOut    bool
	facets     bool
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter and sort the creator directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryOpts.file == "" {
			if err := cfg.Validate("query"); err != nil {
				return err
			}
			queryOpts.file = cfg.Dataset.Path
		}

		rows, _, err := dataset.LoadFile(queryOpts.file)
		if err != nil {
			return err
		}

		if queryOpts.facets {
			return printFacets(rows)
		}

		q := dataset.Query{
			Search:    queryOpts.search,
			Platforms: queryOpts.platforms,
			Countries: queryOpts.countries,
			Paid:      dataset.PaidFilter(queryOpts.paid),
			Sort:      dataset.SortOption(queryOpts.sort),
		}

		var subs model.Subscribers
		if q.Sort == dataset.SortSubscribersDesc {
			subs = fetchSubscribers(cmd, rows)
		}

		result := dataset.Compute(rows, q, subs)

		if queryOpts.sortColumn != "" {
			result = dataset.SortByColumn(result, queryOpts.sortColumn, !queryOpts.desc)
		}
		if queryOpts.pageSize > 0 {
			result = dataset.Paginate(result, queryOpts.page, queryOpts.pageSize)
		}

		if queryOpts.jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printTable(result, subs)
		return nil
	},
}

// fetchSubscribers runs the enrichment fan-out against the proxy. A failure
// degrades to unsorted-by-zero rather than aborting the query.
func fetchSubscribers(cmd *cobra.Command, rows []model.Row) model.Subscribers {
	client := proxyclient.New(cfg.Enrich.ProxyURL)
	orch := enrich.NewOrchestrator(client, cfg.Enrich.Concurrency)
	if _, err := orch.Run(cmd.Context(), rows); err != nil {
		zap.L().Warn("subscriber enrichment failed, sorting with zero counts", zap.Error(err))
	}
	return orch.Subscribers()
}

type facetOptions struct {
	Platforms []string `json:"platforms"`
	Countries []string `json:"countries"`
}

// facetsFor derives the option lists from the deduplicated, unfiltered row
// set, so labels carried only by dropped rows never become options.
func facetsFor(rows []model.Row) facetOptions {
	deduped := dataset.Dedupe(rows)
	return facetOptions{
		Platforms: dataset.PlatformOptions(deduped),
		Countries: dataset.CountryOptions(deduped),
	}
}

func printFacets(rows []model.Row) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(facetsFor(rows))
}

func printTable(rows []model.Row, subs model.Subscribers) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tPLATFORMS\tCOUNTRY\tSUBSCRIBERS")
	for _, row := range rows {
		country := canonical.Country(row.CountryRaw())
		display := country
		if flag := flags.ForCountry(country); flag != "" {
			display = flag + " " + country
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			row.ChannelName(),
			strings.Join(canonical.Platforms(row.PlatformsRaw()), ", "),
			display,
			subscriberCell(row, subs),
		)
	}
	w.Flush()
	fmt.Printf("%d creators\n", len(rows))
}

func subscriberCell(row model.Row, subs model.Subscribers) string {
	entry, ok := subs[row.ChannelKey()]
	if !ok {
		return "-"
	}
	if entry.Count == nil {
		return "hidden"
	}
	return fmt.Sprintf("%d", *entry.Count)
}

func init() {
	queryCmd.Flags().StringVarP(&queryOpts.file, "file", "f", "", "survey CSV export (default from config)")
	queryCmd.Flags().StringVar(&queryOpts.search, "search", "", "free-text search across name, games and content type")
	queryCmd.Flags().StringSliceVar(&queryOpts.platforms, "platform", nil, "platform filter, repeatable; a row must carry all of them")
	queryCmd.Flags().StringSliceVar(&queryOpts.countries, "country", nil, "country filter, repeatable; any match qualifies")
	queryCmd.Flags().StringVar(&queryOpts.paid, "paid", "all", "paid filter: all, free or paid")
	queryCmd.Flags().StringVar(&queryOpts.sort, "sort", "nameAsc", "sort: nameAsc, nameDesc, country, platformCount or subscribersDesc")
	queryCmd.Flags().StringVar(&queryOpts.sortColumn, "sort-column", "", "raw column sort applied after the facet sort")
	queryCmd.Flags().BoolVar(&queryOpts.desc, "desc", false, "descending raw column sort")
	queryCmd.Flags().IntVar(&queryOpts.page, "page", 0, "zero-based page index")
	queryCmd.Flags().IntVar(&queryOpts.pageSize, "page-size", 0, "rows per page, 0 disables pagination")
	queryCmd.Flags().BoolVar(&queryOpts.jsonOut, "json", false, "emit JSON instead of a table")
	queryCmd.Flags().BoolVar(&queryOpts.facets, "facets", false, "print the platform and country facet options")
	rootCmd.AddCommand(queryCmd)
}
