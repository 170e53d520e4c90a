package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffersTech/daylog/internal/config"
	"github.com/coffersTech/daylog/internal/query"
	"github.com/coffersTech/daylog/internal/store"
)

var queryFlags struct {
	date         string
	levels       []string
	packages     []string
	executionIDs []string
	sessionIDs   []string
	references   []string
	search       string
	sortBy       string
	sortOrder    string
	page         int
	pageSize     int
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query one day's records and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		date := queryFlags.date
		if date == "" {
			date = store.Today()
		}

		engine := query.NewEngine(cfg.Log.Directory, cfg.Log.Prefix, cfg.Query.DefaultPageSize, cfg.Query.MaxResults)
		result, err := engine.Query(query.Params{
			Date: date,
			Filter: query.Filter{
				Levels:       queryFlags.levels,
				Packages:     queryFlags.packages,
				ExecutionIDs: queryFlags.executionIDs,
				SessionIDs:   queryFlags.sessionIDs,
				References:   queryFlags.references,
				Search:       queryFlags.search,
			},
			Sort: query.Sort{
				Key:        query.ParseSortKey(queryFlags.sortBy),
				Descending: queryFlags.sortOrder != "asc",
			},
			Page:     queryFlags.page,
			PageSize: queryFlags.pageSize,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryFlags.date, "date", "", "day to query (YYYY-MM-DD, default today UTC)")
	queryCmd.Flags().StringSliceVar(&queryFlags.levels, "level", nil, "levels to match")
	queryCmd.Flags().StringSliceVar(&queryFlags.packages, "package", nil, "packages to match")
	queryCmd.Flags().StringSliceVar(&queryFlags.executionIDs, "execution-id", nil, "execution ids to match")
	queryCmd.Flags().StringSliceVar(&queryFlags.sessionIDs, "session-id", nil, "session ids to match")
	queryCmd.Flags().StringSliceVar(&queryFlags.references, "reference", nil, "references to match")
	queryCmd.Flags().StringVar(&queryFlags.search, "search", "", "case-insensitive substring search")
	queryCmd.Flags().StringVar(&queryFlags.sortBy, "sort-by", "", "sort key (timestamp|level|package|executionId|sessionId|reference)")
	queryCmd.Flags().StringVar(&queryFlags.sortOrder, "sort-order", "desc", "asc or desc")
	queryCmd.Flags().IntVar(&queryFlags.page, "page", 1, "1-based page number")
	queryCmd.Flags().IntVar(&queryFlags.pageSize, "page-size", 0, "page size (default from config)")
	rootCmd.AddCommand(queryCmd)
}
