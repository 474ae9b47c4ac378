package core

import "errors"

// Errors surfaced by the classification engine. Callers match them with errors.Is.
var (
	// ErrEmptySelection means the indexer selects no timestamp of the series.
	ErrEmptySelection = errors.New("no data for selected period")

	// ErrInvalidFrequency means a frequency token cannot be parsed, or a policy
	// cannot work with the requested partitioning frequency.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidParameter means policy options failed validation.
	ErrInvalidParameter = errors.New("invalid arguments")

	// ErrInvalidIndexer means the indexer itself is malformed.
	ErrInvalidIndexer = errors.New("invalid indexer")

	// ErrInvalidSeries means the input series breaks the ordering or calendar invariants.
	ErrInvalidSeries = errors.New("invalid series")

	// ErrNotDaily means a series is not a gap-free, duplicate-free daily record.
	ErrNotDaily = errors.New("time series is not recognized as daily")

	// ErrUnknownPolicy means no policy is registered under the requested name.
	ErrUnknownPolicy = errors.New("unknown missing-data policy")
)
