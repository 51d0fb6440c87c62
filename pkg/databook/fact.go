// Package databook reads extracted financial facts from a local SQLite
// databook and resolves free-text value queries against them.
package databook

// Units recorded by the ingest pipeline.
const (
	UnitUSD     = "USD"
	UnitPercent = "%"
)

// Fact is one (row-label, column-label) observation extracted from a source
// workbook. Facts are written by ingestion and immutable afterwards.
type Fact struct {
	ID        int64
	File      string
	Sheet     string
	RowHeader string
	ColHeader string
	Unit      *string
	Value     *float64
	RawText   *string
}

// Annotation marks a fact as a curated instance of a canonical metric.
// At most one annotation exists per fact.
type Annotation struct {
	Canonical string
	Period    *string
}

// KnownFact is a fact together with its curation. Kept as a distinct type so
// the canonical and free-text query paths stay separate in the type system.
type KnownFact struct {
	Fact
	Annotation
}

// ResolvedRow is one shaped output row of a resolution batch. Period echoes
// the requested period (absent when none was given); PeriodLabel is the
// column header of the winning fact.
type ResolvedRow struct {
	QueryValue  string   `json:"queryValue"`
	Period      string   `json:"period,omitempty"`
	PeriodLabel string   `json:"periodLabel"`
	Value       *float64 `json:"value"`
}
