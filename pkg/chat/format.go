package chat

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/quarrylabs/databook/pkg/databook"
)

var printer = message.NewPrinter(language.English)

// FormatValue renders one numeric observation for a transcript, with digit
// grouping and the unit the caller asked in.
func FormatValue(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	switch unit {
	case databook.UnitUSD:
		return printer.Sprintf("$%.0f", *v)
	case databook.UnitPercent:
		return printer.Sprintf("%.1f%%", *v)
	default:
		return printer.Sprintf("%v", *v)
	}
}

// FormatRows summarizes a resolution batch as one line per row, the shape
// tool results take in the transcript.
func FormatRows(rows []databook.ResolvedRow, unit string) string {
	if len(rows) == 0 {
		return "No matching values found in the databook."
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r.QueryValue)
		if r.PeriodLabel != "" {
			b.WriteString(" [")
			b.WriteString(r.PeriodLabel)
			b.WriteString("]")
		}
		b.WriteString(": ")
		b.WriteString(FormatValue(r.Value, unit))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
