package databook

import (
	"math"
	"testing"
)

func TestFilePriority(t *testing.T) {
	p := NewFilePriority([]string{"a.xlsx", "b.xlsx"})

	if r := p.Rank("a.xlsx"); r != 0 {
		t.Errorf("Rank(a) = %d, want 0", r)
	}
	if r := p.Rank("b.xlsx"); r != 1 {
		t.Errorf("Rank(b) = %d, want 1", r)
	}
	if r := p.Rank("unlisted.xlsx"); r != math.MaxInt {
		t.Errorf("Rank(unlisted) = %d, want MaxInt sentinel", r)
	}
}

func TestDedupe_PreferredFileWins(t *testing.T) {
	prio := NewFilePriority([]string{"preferred.xlsx"})
	preferred := Fact{File: "preferred.xlsx", ColHeader: "2023", Value: ptr(1.0)}
	other := Fact{File: "other.xlsx", ColHeader: "2023", Value: ptr(2.0)}

	// The preferred-file row wins regardless of input order.
	for _, rows := range [][]Fact{{preferred, other}, {other, preferred}} {
		out := Dedupe(rows, prio)
		if len(out) != 1 {
			t.Fatalf("len = %d, want 1", len(out))
		}
		if out[0].File != "preferred.xlsx" {
			t.Errorf("kept %q, want preferred.xlsx", out[0].File)
		}
	}
}

func TestDedupe_TieKeepsFirstSeen(t *testing.T) {
	prio := NewFilePriority(nil)
	first := Fact{File: "x.xlsx", ColHeader: "2023", Value: ptr(1.0)}
	second := Fact{File: "y.xlsx", ColHeader: "2023", Value: ptr(2.0)}

	out := Dedupe([]Fact{first, second}, prio)
	if len(out) != 1 || out[0].File != "x.xlsx" {
		t.Errorf("kept %+v, want first-seen row from x.xlsx", out)
	}
}

func TestDedupe_PreservesFirstEncounterOrder(t *testing.T) {
	prio := NewFilePriority([]string{"a.xlsx"})
	rows := []Fact{
		{File: "b.xlsx", ColHeader: "2024"},
		{File: "b.xlsx", ColHeader: "2022"},
		{File: "a.xlsx", ColHeader: "2024"},
		{File: "b.xlsx", ColHeader: "2023"},
	}

	out := Dedupe(rows, prio)
	labels := []string{"2024", "2022", "2023"}
	if len(out) != len(labels) {
		t.Fatalf("len = %d, want %d", len(out), len(labels))
	}
	for i, want := range labels {
		if out[i].ColHeader != want {
			t.Errorf("out[%d].ColHeader = %q, want %q", i, out[i].ColHeader, want)
		}
	}
	// 2024 was replaced in place by the higher-priority file.
	if out[0].File != "a.xlsx" {
		t.Errorf("out[0].File = %q, want a.xlsx", out[0].File)
	}
}

func TestDedupe_EmptyLabelIsItsOwnGroup(t *testing.T) {
	prio := NewFilePriority(nil)
	rows := []Fact{
		{File: "a.xlsx", ColHeader: ""},
		{File: "a.xlsx", ColHeader: "2023"},
		{File: "b.xlsx", ColHeader: ""},
	}

	out := Dedupe(rows, prio)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (empty label deduped separately)", len(out))
	}
}

func TestDedupe_Empty(t *testing.T) {
	if out := Dedupe(nil, NewFilePriority(nil)); len(out) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty", out)
	}
}
