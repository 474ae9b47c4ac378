package contract

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gapcheck/schema"
)

// Default values for configuration.
const (
	DefaultTimeColumn  = "time"
	DefaultValueColumn = "value"
	DefaultPrecision   = 2
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a check.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string
	TimeColumn  string
	ValueColumn string
	Calendar    schema.CalendarName
	Freq        string
	Indexer     schema.Indexer

	// Policy is the active policy and PolicyOptions the options of every policy,
	// built from defaults, the config file and flag overrides in that order.
	Policy        schema.PolicyName
	PolicyOptions map[schema.PolicyName]map[string]any

	RequireDaily bool
	Precision    int
	Output       schema.OutputMode
	OutputFile   string
	Width        int // Terminal width override (0 = auto-detect)
	UseColors    bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	TimeColumn     string `mapstructure:"time-column"`
	ValueColumn    string `mapstructure:"value-column"`
	Calendar       string `mapstructure:"calendar"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Fields from checkCmd.Flags() ---
	Freq         string `mapstructure:"freq"`
	Policy       string `mapstructure:"policy"`
	NM           string `mapstructure:"nm"`
	NC           string `mapstructure:"nc"`
	Tolerance    string `mapstructure:"tolerance"`
	N            string `mapstructure:"n"`
	Months       string `mapstructure:"months"`
	Season       string `mapstructure:"season"`
	DOYBounds    string `mapstructure:"doy-bounds"`
	DateBounds   string `mapstructure:"date-bounds"`
	RequireDaily bool   `mapstructure:"require-daily"`

	// --- Per-policy options from config file ---
	Policies map[string]map[string]any `mapstructure:"policies"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Indexer = schema.Indexer{
		Seasons: slices.Clone(c.Indexer.Seasons),
		Months:  slices.Clone(c.Indexer.Months),
	}
	if c.Indexer.DOYBounds != nil {
		b := *c.Indexer.DOYBounds
		clone.Indexer.DOYBounds = &b
	}
	if c.Indexer.DateBounds != nil {
		b := *c.Indexer.DateBounds
		clone.Indexer.DateBounds = &b
	}
	if c.PolicyOptions != nil {
		clone.PolicyOptions = make(map[schema.PolicyName]map[string]any, len(c.PolicyOptions))
		for name, opts := range c.PolicyOptions {
			clone.PolicyOptions[name] = maps.Clone(opts)
		}
	}
	return &clone
}

// ConfigParams returns the run parameters recorded alongside a tracked run.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"input":    c.InputPath,
		"calendar": string(c.Calendar),
		"freq":     c.Freq,
		"policy":   string(c.Policy),
	}
	if opts := c.PolicyOptions[c.Policy]; len(opts) > 0 {
		params["options"] = maps.Clone(opts)
	}
	if !c.Indexer.IsEmpty() {
		params["indexer"] = c.Indexer.String()
	}
	return params
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPolicyOptions(cfg, input); err != nil {
		return err
	}
	indexer, err := ParseIndexer(input.Season, input.Months, input.DOYBounds, input.DateBounds)
	if err != nil {
		return err
	}
	cfg.Indexer = indexer
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the run tracking backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates all non-policy fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.RequireDaily = input.RequireDaily
	cfg.Freq = strings.TrimSpace(input.Freq)

	cfg.TimeColumn = cmp.Or(strings.TrimSpace(input.TimeColumn), DefaultTimeColumn)
	cfg.ValueColumn = cmp.Or(strings.TrimSpace(input.ValueColumn), DefaultValueColumn)
	if cfg.TimeColumn == cfg.ValueColumn {
		return fmt.Errorf("time and value columns must differ (both are %q)", cfg.TimeColumn)
	}

	// Parse color flag
	colors, err := ParseBoolString(cmp.Or(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Calendar ---
	cfg.Calendar = schema.CalendarName(strings.ToLower(strings.TrimSpace(input.Calendar)))
	if cfg.Calendar == "" {
		cfg.Calendar = schema.StandardCalendar
	}
	if _, ok := schema.ValidCalendars[cfg.Calendar]; !ok {
		return fmt.Errorf("invalid calendar '%s'", input.Calendar)
	}

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 3. Backend Validation ---
	return validateBackendConfig(cfg, input)
}

// processPolicyOptions resolves the active policy and the options of every builtin policy.
func processPolicyOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Policy = schema.PolicyName(strings.ToLower(strings.TrimSpace(input.Policy)))
	if cfg.Policy == "" {
		cfg.Policy = schema.AnyPolicy
	}
	if !slices.Contains(schema.BuiltinPolicies, cfg.Policy) {
		return fmt.Errorf("invalid policy '%s'. must be one of %v", input.Policy, schema.BuiltinPolicies)
	}

	cfg.PolicyOptions = make(map[schema.PolicyName]map[string]any, len(schema.BuiltinPolicies))
	for _, name := range schema.BuiltinPolicies {
		cfg.PolicyOptions[name] = schema.GetDefaultPolicyOptions(name)
	}
	for rawName, opts := range input.Policies {
		name := schema.PolicyName(strings.ToLower(rawName))
		if !slices.Contains(schema.BuiltinPolicies, name) {
			return fmt.Errorf("invalid policy '%s' in policies section", rawName)
		}
		maps.Copy(cfg.PolicyOptions[name], opts)
	}

	overrides := []struct {
		policy schema.PolicyName
		key    string
		raw    string
	}{
		{schema.WMOPolicy, "nm", input.NM},
		{schema.WMOPolicy, "nc", input.NC},
		{schema.PctPolicy, "tolerance", input.Tolerance},
		{schema.AtLeastNPolicy, "n", input.N},
	}
	for _, o := range overrides {
		raw := strings.TrimSpace(o.raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid --%s value %q: %w", o.key, o.raw, err)
		}
		cfg.PolicyOptions[o.policy][o.key] = v
	}
	return nil
}

// ParseIndexer builds an indexer from its command line forms:
// seasons "DJF,JJA", months "6,7,8", day-of-year bounds "100:200"
// and date bounds "06-01:08-31". Range checks are left to the engine.
func ParseIndexer(seasons, months, doyBounds, dateBounds string) (schema.Indexer, error) {
	var ix schema.Indexer
	for _, s := range SplitList(seasons) {
		ix.Seasons = append(ix.Seasons, schema.Season(strings.ToUpper(s)))
	}
	for _, m := range SplitList(months) {
		month, err := strconv.Atoi(m)
		if err != nil {
			return schema.Indexer{}, fmt.Errorf("invalid month %q: %w", m, err)
		}
		ix.Months = append(ix.Months, month)
	}
	if doyBounds = strings.TrimSpace(doyBounds); doyBounds != "" {
		start, end, err := splitBounds(doyBounds)
		if err != nil {
			return schema.Indexer{}, err
		}
		lo, err := strconv.Atoi(start)
		if err != nil {
			return schema.Indexer{}, fmt.Errorf("invalid day-of-year bounds %q: %w", doyBounds, err)
		}
		hi, err := strconv.Atoi(end)
		if err != nil {
			return schema.Indexer{}, fmt.Errorf("invalid day-of-year bounds %q: %w", doyBounds, err)
		}
		ix.DOYBounds = &schema.DOYBounds{Start: lo, End: hi}
	}
	if dateBounds = strings.TrimSpace(dateBounds); dateBounds != "" {
		start, end, err := splitBounds(dateBounds)
		if err != nil {
			return schema.Indexer{}, err
		}
		ix.DateBounds = &schema.DateBounds{Start: start, End: end}
	}
	if ix.SelectorCount() > 1 {
		return schema.Indexer{}, fmt.Errorf("only one of --season, --months, --doy-bounds or --date-bounds may be given")
	}
	return ix, nil
}

func splitBounds(s string) (string, string, error) {
	start, end, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid bounds %q: expected START:END", s)
	}
	return strings.TrimSpace(start), strings.TrimSpace(end), nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profilePrefix = strings.TrimSpace(profilePrefix)
	profile.Enabled = profilePrefix != ""
	profile.Prefix = profilePrefix
}
