package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coffersTech/daylog/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "daylog",
	Short: "Per-day NDJSON log store and query engine",
	Long: `Daylog writes structured log records into one append-only NDJSON
file per UTC day and answers filtered, sorted, paginated queries over
them, either from the command line or through an HTTP API.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./daylog.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Defaults first, so everything works without a config file.
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("daylog")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/daylog")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DAYLOG")
	// DAYLOG_QUERY_MAX_RESULTS overrides query.max_results, and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config file is fine; defaults carry the day.
	_ = viper.ReadInConfig()
}
