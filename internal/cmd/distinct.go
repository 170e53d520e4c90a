package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffersTech/daylog/internal/config"
	"github.com/coffersTech/daylog/internal/query"
	"github.com/coffersTech/daylog/internal/store"
)

var distinctDate string

var distinctCmd = &cobra.Command{
	Use:   "distinct <package|executionId|sessionId|reference>",
	Short: "List the distinct values of a field for one day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		date := distinctDate
		if date == "" {
			date = store.Today()
		}

		engine := query.NewEngine(cfg.Log.Directory, cfg.Log.Prefix, cfg.Query.DefaultPageSize, cfg.Query.MaxResults)
		values, err := engine.Distinct(date, args[0])
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	},
}

func init() {
	distinctCmd.Flags().StringVar(&distinctDate, "date", "", "day to inspect (YYYY-MM-DD, default today UTC)")
	rootCmd.AddCommand(distinctCmd)
}
