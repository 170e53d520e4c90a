package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffersTech/daylog/internal/config"
	"github.com/coffersTech/daylog/internal/store"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the dates that have log data, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dates, err := store.ListDates(cfg.Log.Directory, cfg.Log.Prefix)
		if err != nil {
			return err
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datesCmd)
}
