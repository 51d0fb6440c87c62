package databook

import "math"

// DefaultPreferredFiles orders source workbooks by trust, highest first.
var DefaultPreferredFiles = []string{"Databook_One_SANITIZED.xlsx"}

// FilePriority maps source filenames to a rank. Lower rank wins; files not in
// the list get the lowest possible priority.
type FilePriority struct {
	rank map[string]int
}

// NewFilePriority builds a priority table from an ordered filename list,
// earliest = highest priority.
func NewFilePriority(files []string) FilePriority {
	rank := make(map[string]int, len(files))
	for i, f := range files {
		if _, ok := rank[f]; !ok {
			rank[f] = i
		}
	}
	return FilePriority{rank: rank}
}

// Rank returns the priority rank of a file, or the sentinel lowest priority
// when the file is unlisted.
func (p FilePriority) Rank(file string) int {
	if r, ok := p.rank[file]; ok {
		return r
	}
	return math.MaxInt
}

// Dedupe collapses rows to at most one per distinct column header (the empty
// label is its own group). A stored row is replaced only by a strictly
// higher-priority file; ties keep the first-seen row. Output preserves the
// order in which distinct labels were first encountered.
func Dedupe(rows []Fact, prio FilePriority) []Fact {
	seen := make(map[string]int, len(rows))
	out := make([]Fact, 0, len(rows))
	for _, r := range rows {
		i, ok := seen[r.ColHeader]
		if !ok {
			seen[r.ColHeader] = len(out)
			out = append(out, r)
			continue
		}
		if prio.Rank(r.File) < prio.Rank(out[i].File) {
			out[i] = r
		}
	}
	return out
}
