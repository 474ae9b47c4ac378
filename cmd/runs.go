package cmd

import (
	"fmt"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/internal/iocache"
	"github.com/huangsam/gapcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfig reads the run tracking backend and connection string.
func storeConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads the minimal configuration needed to inspect tracked runs.
func runsSetup() error {
	backend, connStr, err := storeConfig()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup is like runsSetup but leaves the store closed,
// so migrations can run against a fresh database.
func runsMigrateSetup() error {
	backend, connStr, err := storeConfig()
	if err != nil {
		return err
	}

	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetRunsDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for the migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd groups the run tracking commands.
//
// Note: runs subcommands skip sharedSetup. They only need the store settings
// and must work without an input series.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage tracked check runs and exports",
	Long: `Manage the history of check runs.

When a store backend is configured, every check stores:
- Run metadata (input, policy, frequency, options, duration)
- The outcome of every period

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet
  clear   - Remove all tracked runs
  migrate - Run database schema migrations

Examples:
  # Track runs in the local SQLite database
  gapcheck check tas.csv --freq MS --store-backend sqlite
  gapcheck runs status --store-backend sqlite

  # Export for analysis in pandas/DuckDB
  gapcheck runs export --store-backend sqlite --output-file runs-data`,
}

// runsClearCmd clears the tracked runs.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs",
	Long: `Delete all stored runs and period outcomes.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  gapcheck runs export --store-backend sqlite --output-file backup
  gapcheck runs clear --store-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.StoreBackend, iocache.GetRunsDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear runs", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show the backend, the number of stored runs and periods, and the first and
last run timestamps.

Examples:
  gapcheck runs status --store-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports tracked runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet",
	Long: `Export all stored runs and period outcomes to Parquet.

Writes two files named after the --output-file prefix:
- <prefix>.runs.parquet           - one row per check run
- <prefix>.period_results.parquet - one row per classified period

Requires: --output-file parameter

Examples:
  gapcheck runs export --store-backend sqlite --output-file runs-data
  duckdb -c "SELECT * FROM read_parquet('runs-data.period_results.parquet') WHERE missing"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  gapcheck runs migrate --store-backend sqlite

  # Rollback to initial state
  gapcheck runs migrate --store-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
