package metric

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"EBITDA Margin", "ebitda margin"},
		{"Adj. EBITDA %", "adj ebitda %"},
		{"EBITDA-margin", "ebitda margin"},
		{"  Net   Sales  ", "net sales"},
		{"Gross Profit (2023)", "gross profit 2023"},
		{"%", "%"},
		{"---", ""},
		{"", ""},
		{"Opex as % of Sales!!!", "opex as % of sales"},
	}
	for _, tt := range tests {
		got := Normalize(tt.input)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"EBITDA Margin", "Adj. EBITDA %", "  spaced   out  ", "", "Ünïcode — dashes",
		"net sales", "100% of $1,000.50",
	}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Adjusted EBITDA % (FY2023)")
	want := []string{"adjusted", "ebitda", "%", "fy2023"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}

	if toks := Tokens("  ...  "); len(toks) != 0 {
		t.Errorf("Tokens of punctuation = %v, want empty", toks)
	}
}
