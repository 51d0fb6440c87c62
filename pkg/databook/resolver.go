package databook

import (
	"context"
	"log/slog"

	"github.com/quarrylabs/databook/pkg/metric"
)

// FactSource is the read contract of the databook. *Conn implements it;
// tests substitute recorders.
type FactSource interface {
	FetchByCanonical(ctx context.Context, canonical, period string) ([]KnownFact, error)
	FetchByFreeText(ctx context.Context, term, period, unit string) ([]Fact, error)
}

// Matcher resolves a free-text term to a canonical metric name.
type Matcher interface {
	Match(term string) metric.Match
}

// Request is one resolution batch. Source is accepted for future sheet
// scoping and currently ignored by resolution.
type Request struct {
	Values  []string
	Source  string
	Periods []string
	Unit    string
}

// Resolver runs the value-fetch pipeline: canonical match, store lookup with
// free-text fallback, then per-period dedup.
type Resolver struct {
	store   *Store
	matcher Matcher
	prio    FilePriority
	logger  *slog.Logger
}

// NewResolver wires a resolver. preferredFiles orders source workbooks for
// dedup, highest priority first; nil falls back to DefaultPreferredFiles.
func NewResolver(store *Store, matcher Matcher, preferredFiles []string, logger *slog.Logger) *Resolver {
	if preferredFiles == nil {
		preferredFiles = DefaultPreferredFiles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:   store,
		matcher: matcher,
		prio:    NewFilePriority(preferredFiles),
		logger:  logger,
	}
}

// ResolveBatch acquires a store connection for the whole batch and resolves
// it. An acquisition failure aborts the batch; the connection is always
// released. Empty Values short-circuits without touching the store.
func (r *Resolver) ResolveBatch(ctx context.Context, req Request) ([]ResolvedRow, error) {
	values := make([]string, 0, len(req.Values))
	for _, v := range req.Values {
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return []ResolvedRow{}, nil
	}

	conn, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return r.Resolve(ctx, conn, values, req.Periods, req.Unit), nil
}

// Resolve runs the (value, period) cross product sequentially against src,
// preserving enumeration order in the output. A failed lookup contributes
// nothing for its pair; it never fails the batch.
func (r *Resolver) Resolve(ctx context.Context, src FactSource, values, periods []string, unit string) []ResolvedRow {
	results := []ResolvedRow{}

	pairPeriods := periods
	if len(pairPeriods) == 0 {
		pairPeriods = []string{""}
	}

	for _, v := range values {
		for _, p := range pairPeriods {
			rows, err := r.resolveOne(ctx, src, v, p, unit)
			if err != nil {
				r.logger.Warn("value lookup failed", "value", v, "period", p, "error", err)
				continue
			}
			for _, f := range rows {
				results = append(results, ResolvedRow{
					QueryValue:  v,
					Period:      p,
					PeriodLabel: f.ColHeader,
					Value:       f.Value,
				})
			}
		}
	}
	return results
}

// resolveOne tries the curated path first, then falls back to free text.
// The fallback always uses the caller's literal phrasing, never the matched
// canonical name, so period and unit filters apply to what was asked.
func (r *Resolver) resolveOne(ctx context.Context, src FactSource, value, period, unit string) ([]Fact, error) {
	var rows []Fact

	if m := r.matcher.Match(value); m.Canonical != "" {
		known, err := src.FetchByCanonical(ctx, m.Canonical, period)
		if err != nil {
			return nil, err
		}
		for _, k := range known {
			rows = append(rows, k.Fact)
		}
	}

	if len(rows) == 0 {
		var err error
		rows, err = src.FetchByFreeText(ctx, value, period, unit)
		if err != nil {
			return nil, err
		}
	}

	return Dedupe(rows, r.prio), nil
}
