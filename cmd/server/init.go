package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quarrylabs/databook/pkg/databook"
)

type seedFact struct {
	databook.Fact
	canonical string
	period    *string
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "db/databook.sqlite", "path of the databook to create")
	force := fs.Bool("force", false, "overwrite an existing databook")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "databook already exists at %s (use -force to overwrite)\n", *dbPath)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create directory: %v\n", err)
		os.Exit(1)
	}
	os.Remove(*dbPath)

	ing, err := databook.Create(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer ing.Close()

	seeds := sampleFacts()
	for _, s := range seeds {
		id, err := ing.AddFact(s.Fact)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if s.canonical != "" {
			if err := ing.Annotate(id, s.canonical, s.period); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	}

	fmt.Printf("databook created at %s with %d facts\n", *dbPath, len(seeds))
}

// sampleFacts is a small dataset spanning two source files so the
// file-priority dedupe path is exercisable out of the box.
func sampleFacts() []seedFact {
	usd := databook.UnitUSD
	pct := databook.UnitPercent
	f := func(file, sheet, row, col string, unit string, value float64, canonical string, period string) seedFact {
		s := seedFact{
			Fact: databook.Fact{
				File: file, Sheet: sheet,
				RowHeader: row, ColHeader: col,
				Unit: &unit, Value: &value,
			},
			canonical: canonical,
		}
		if period != "" {
			p := period
			s.period = &p
		}
		return s
	}

	primary := "Databook_One_SANITIZED.xlsx"
	secondary := "Databook_Two_SANITIZED.xlsx"

	facts := []seedFact{
		f(primary, "P&L", "Net sales", "2022", usd, 48_200_000, "Net Sales", "2022"),
		f(primary, "P&L", "Net sales", "2023", usd, 52_500_000, "Net Sales", "2023"),
		f(primary, "P&L", "Net sales", "2024", usd, 57_900_000, "Net Sales", "2024"),
		f(primary, "P&L", "Gross profit", "2023", usd, 21_000_000, "Gross Profit", "2023"),
		f(primary, "P&L", "Gross profit", "2024", usd, 23_700_000, "Gross Profit", "2024"),
		f(primary, "P&L", "Reported EBITDA", "2023", usd, 9_450_000, "Reported EBITDA", "2023"),
		f(primary, "P&L", "Reported EBITDA", "2024", usd, 11_000_000, "Reported EBITDA", "2024"),
		f(primary, "P&L", "Reported EBITDA margin", "2023", pct, 18.0, "Reported EBITDA %", "2023"),
		f(primary, "P&L", "Reported EBITDA margin", "2024", pct, 19.0, "Reported EBITDA %", "2024"),
		f(primary, "Adjustments", "Adjusted EBITDA", "2024", usd, 12_300_000, "Adjusted EBITDA", "2024"),
		f(primary, "Adjustments", "Total adjustments", "2024", usd, 1_300_000, "Total Adjustments", "2024"),
		f(primary, "Balance", "Reported working capital", "2024-06-30", usd, 6_800_000, "Reported Working Capital", "2024-06-30"),
		f(primary, "Balance", "Adjusted working capital", "2024-06-30", usd, 7_100_000, "Adjusted Working Capital", "2024-06-30"),

		// The same metric from a lower-priority source, slightly restated.
		f(secondary, "Summary", "Net sales", "2024", usd, 57_850_000, "Net Sales", "2024"),
		f(secondary, "Summary", "Reported EBITDA", "2024", usd, 10_950_000, "Reported EBITDA", "2024"),
	}

	// Unannotated rows reachable only through the free-text fallback.
	raw := func(file, sheet, row, col, text string, unit string, value float64) seedFact {
		return seedFact{Fact: databook.Fact{
			File: file, Sheet: sheet,
			RowHeader: row, ColHeader: col,
			RawText: &text, Unit: &unit, Value: &value,
		}}
	}
	facts = append(facts,
		raw(primary, "Ops", "Headcount", "2024", "Average FTE headcount", usd, 412),
		raw(primary, "Ops", "Customer churn", "2024", "Annual customer churn rate", pct, 6.5),
	)
	return facts
}
