package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run tracking.
const (
	runsTable          = "gapcheck_runs"
	periodResultsTable = "gapcheck_period_results"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// openDB opens and pings the database behind backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetRunsDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		cfg, parseErr := mysql.ParseDSN(connStr)
		if parseErr != nil {
			return nil, "", fmt.Errorf("invalid MySQL connection string: %w. Check connection format: user:password@tcp(host:port)/dbname", parseErr)
		}
		// DATETIME columns are scanned into time.Time
		cfg.ParseTime = true
		db, err = sql.Open(driverName, cfg.FormatDSN())
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, driverName, nil
}

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createRunTables applies every embedded up migration of the backend.
// The statements are idempotent, so a migrated database is left untouched.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	dir := path.Join("migrations", migrationsDir(backend))
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return err
	}
	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	slices.Sort(ups)
	for _, name := range ups {
		query, err := fs.ReadFile(migrationsFS, path.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

// migrationsDir returns the embedded migrations directory of backend.
func migrationsDir(backend schema.DatabaseBackend) string {
	return string(backend)
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// validateTableName guards table names interpolated into SQL.
func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern)
	}
	return nil
}

// placeholders returns n bind parameters for the backend, starting at 1.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, inputPath string, policy schema.PolicyName, freq string, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	ph := placeholders(rs.backend, 5)
	query := fmt.Sprintf(`INSERT INTO %s (start_time, input_path, policy, freq, config_params) VALUES (%s)`,
		quotedTableName, strings.Join(ph, ", "))
	args := []any{formatTime(startTime, rs.backend), inputPath, string(policy), freq, string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		err = rs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordPeriods stores the per-period outcomes of a run in one transaction.
func (rs *RunStoreImpl) RecordPeriods(runID int64, periods []schema.PeriodOutcome) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil || len(periods) == 0 {
		return nil
	}

	quotedTableName := quoteTableName(periodResultsTable, rs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, period_label, period_start, period_end, observed,
		null_count, expected, missing_fraction, is_missing) VALUES (%s)`,
		quotedTableName, strings.Join(placeholders(rs.backend, 9), ", "))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare period insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range periods {
		if _, err := stmt.Exec(runID, p.Label, p.Start, p.End, p.Observed, p.Nulls, p.Expected, p.MissingFraction, p.Missing); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert period %s: %w", p.Label, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit periods: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalPeriods, missingPeriods int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, rs.backend)
	ph := placeholders(rs.backend, 5)
	row := rs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, ph[0]), runID)
	startTime, err := scanTime(row, rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_periods = %s, missing_periods = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4])
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalPeriods, missingPeriods, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		var err error
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if status.LastRunTime, err = scanTime(row, rs.backend); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		if status.OldestRunTime, err = scanTime(row, rs.backend); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_periods), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalPeriodsChecked); err != nil {
			return status, fmt.Errorf("failed to get total periods checked: %w", err)
		}
	}

	// Get table sizes
	for _, table := range []string{runsTable, periodResultsTable} {
		if err := validateTableName(table); err != nil {
			return status, err
		}
		var count int64
		row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, input_path, policy, freq,
		total_periods, missing_periods, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var durationMs sql.NullInt32
		var configParams sql.NullString

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr sql.NullString
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &durationMs, &record.InputPath, &record.Policy,
				&record.Freq, &record.TotalPeriods, &record.MissingPeriods, &configParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr.Valid {
				endTime, err := time.Parse(time.RFC3339Nano, endTimeStr.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store as native datetime
			var endTime sql.NullTime
			if err := rows.Scan(&record.RunID, &record.StartTime, &endTime, &durationMs, &record.InputPath, &record.Policy,
				&record.Freq, &record.TotalPeriods, &record.MissingPeriods, &configParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if endTime.Valid {
				record.EndTime = &endTime.Time
			}
		}
		if durationMs.Valid {
			record.RunDurationMs = &durationMs.Int32
		}
		if configParams.Valid {
			record.ConfigParams = &configParams.String
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllPeriods retrieves all period outcomes from the store.
func (rs *RunStoreImpl) GetAllPeriods() ([]schema.PeriodRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, period_label, period_start, period_end, observed, null_count, expected,
		missing_fraction, is_missing FROM %s ORDER BY run_id, period_start`, quoteTableName(periodResultsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PeriodRecord
	for rows.Next() {
		var r schema.PeriodRecord
		if err := rows.Scan(&r.RunID, &r.PeriodLabel, &r.PeriodStart, &r.PeriodEnd, &r.Observed, &r.Nulls,
			&r.Expected, &r.MissingFraction, &r.Missing); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating periods: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, stored as RFC3339 text in SQLite.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
