// Package cmd defines the command-line interface for gapcheck.
package cmd

import (
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("time-column", contract.DefaultTimeColumn, "Name of the time column of the input series")
	rootCmd.PersistentFlags().String("value-column", contract.DefaultValueColumn, "Name of the value column of the input series")
	rootCmd.PersistentFlags().String("calendar", string(schema.StandardCalendar), "Calendar of the time axis: standard or julian or noleap or all_leap or 360_day")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("policy", string(schema.AnyPolicy), "Missing-data policy: any or wmo or pct or at_least_n")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("freq", "", "Resampling frequency such as MS, QS-DEC, Q-NOV or YS (empty = whole series)")
	checkCmd.Flags().String("nm", "", "wmo: null days that make a month missing")
	checkCmd.Flags().String("nc", "", "wmo: length of the null run that makes a month missing")
	checkCmd.Flags().String("tolerance", "", "pct: missing fraction at which a period is missing")
	checkCmd.Flags().String("n", "", "at_least_n: valid values a period needs")
	checkCmd.Flags().String("season", "", "Only keep these seasons (e.g. 'DJF,JJA')")
	checkCmd.Flags().String("months", "", "Only keep these months (e.g. '6,7,8')")
	checkCmd.Flags().String("doy-bounds", "", "Only keep this day-of-year range (e.g. '335:59')")
	checkCmd.Flags().String("date-bounds", "", "Only keep this MM-DD range (e.g. '06-01:08-31')")
	checkCmd.Flags().Bool("require-daily", false, "Fail when the series has gaps or duplicate days")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
