package match

import "sort"

// DefaultMinScore is the good-match count a candidate must exceed to be accepted.
const DefaultMinScore = 15

// Candidate is an enrolled template scored against a probe.
type Candidate struct {
	ID     string  // Template identifier
	Result *Result // Filtered correspondences between probe and template
}

// Score returns the number of good matches, or 0 when there is no result.
func (c Candidate) Score() int {
	if c.Result == nil {
		return 0
	}
	return c.Result.Count
}

// Rank returns candidates sorted by score in descending order.
// Equal scores keep their original order.
func Rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	return ranked
}

// Best returns the highest scoring candidate if its score is strictly greater than
// minScore. On ties the earliest candidate wins.
func Best(candidates []Candidate, minScore int) (Candidate, bool) {
	best := -1
	maxScore := minScore
	for i, c := range candidates {
		if c.Score() > maxScore {
			maxScore = c.Score()
			best = i
		}
	}
	if best < 0 {
		return Candidate{}, false
	}
	return candidates[best], true
}
