package metric

import "strings"

// Match is the outcome of canonical resolution for one term.
// Canonical is empty when the best score fell below the threshold; Score is
// reported either way so callers can distinguish "scored low" from "nothing
// configured".
type Match struct {
	Canonical string  `json:"canonical,omitempty"`
	Score     float64 `json:"score"`
}

// Match resolves a free-text term to a canonical metric name.
//
// Every metric contributes its name plus each alias as candidates, in
// declaration order. A candidate scores the Jaccard similarity of the two
// normalized token sets, +0.2 when either normalized string contains the
// other, +0.05 when both agree on containing '%'. Scores are deliberately
// not capped at 1.0. Strictly-greater comparison keeps the first-found
// candidate on ties.
func (c *Catalog) Match(term string) Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tnorm := Normalize(term)
	best := Match{}

	for _, m := range c.metrics {
		for _, cand := range append([]string{m.Name}, m.Aliases...) {
			cnorm := Normalize(cand)
			s := jaccard(tnorm, cnorm)
			if strings.Contains(tnorm, cnorm) || strings.Contains(cnorm, tnorm) {
				s += 0.2
			}
			if strings.Contains(cnorm, "%") == strings.Contains(tnorm, "%") {
				s += 0.05
			}
			if s > best.Score {
				best = Match{Canonical: m.Name, Score: s}
			}
		}
	}

	if best.Score < c.threshold {
		return Match{Score: best.Score}
	}
	return best
}

// jaccard computes token-set Jaccard similarity of two already-normalized
// strings. Either side empty scores 0.
func jaccard(a, b string) float64 {
	at := strings.Fields(a)
	bt := strings.Fields(b)
	if len(at) == 0 || len(bt) == 0 {
		return 0
	}
	aset := make(map[string]struct{}, len(at))
	for _, t := range at {
		aset[t] = struct{}{}
	}
	bset := make(map[string]struct{}, len(bt))
	for _, t := range bt {
		bset[t] = struct{}{}
	}
	inter := 0
	for t := range aset {
		if _, ok := bset[t]; ok {
			inter++
		}
	}
	union := len(aset) + len(bset) - inter
	return float64(inter) / float64(union)
}
