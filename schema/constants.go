package schema

// Custom string types for type safety.
type (
	// PolicyName identifies a missingness policy.
	PolicyName string

	// CalendarName identifies a climate calendar.
	CalendarName string

	// Season is a three-month meteorological season code.
	Season string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All missingness policies shipped with gapcheck.
const (
	AnyPolicy      PolicyName = "any" // default
	WMOPolicy      PolicyName = "wmo"
	PctPolicy      PolicyName = "pct"
	AtLeastNPolicy PolicyName = "at_least_n"
)

// All calendars supported. Aliases are resolved by the cal package.
const (
	StandardCalendar           CalendarName = "standard" // default
	GregorianCalendar          CalendarName = "gregorian"
	ProlepticGregorianCalendar CalendarName = "proleptic_gregorian"
	JulianCalendar             CalendarName = "julian"
	NoLeapCalendar             CalendarName = "noleap"
	Day365Calendar             CalendarName = "365_day"
	AllLeapCalendar            CalendarName = "all_leap"
	Day366Calendar             CalendarName = "366_day"
	Day360Calendar             CalendarName = "360_day"
)

// Meteorological seasons.
const (
	WinterSeason Season = "DJF"
	SpringSeason Season = "MAM"
	SummerSeason Season = "JJA"
	AutumnSeason Season = "SON"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run tracking backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// BuiltinPolicies lists the policies registered at startup, in display order.
var BuiltinPolicies = []PolicyName{AnyPolicy, WMOPolicy, PctPolicy, AtLeastNPolicy}

// SeasonMonths maps each season to the months it covers.
var SeasonMonths = map[Season][]int{
	WinterSeason: {12, 1, 2},
	SpringSeason: {3, 4, 5},
	SummerSeason: {6, 7, 8},
	AutumnSeason: {9, 10, 11},
}

// ValidCalendars lists every accepted calendar name, aliases included.
var ValidCalendars = map[CalendarName]struct{}{
	StandardCalendar:           {},
	GregorianCalendar:          {},
	ProlepticGregorianCalendar: {},
	JulianCalendar:             {},
	NoLeapCalendar:             {},
	Day365Calendar:             {},
	AllLeapCalendar:            {},
	Day366Calendar:             {},
	Day360Calendar:             {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetDefaultPolicyOptions returns the default option map for a builtin policy.
// Policies without options return an empty map.
func GetDefaultPolicyOptions(name PolicyName) map[string]any {
	switch name {
	case WMOPolicy:
		return map[string]any{"nm": 11, "nc": 5}
	case PctPolicy:
		return map[string]any{"tolerance": 0.1}
	case AtLeastNPolicy:
		return map[string]any{"n": 20}
	default:
		return map[string]any{}
	}
}
