package executor

import (
	"sort"

	"github.com/antzucaro/matchr"
)

// resolver maps a spoken name onto an existing one. Recognition often drops
// or swaps a character, so an exact miss is scored against every known name
// with Jaro-Winkler. Callers decide whether a close match may stand in for
// the name or is only offered back as a suggestion.
type resolver struct {
	threshold float64
}

type resolution struct {
	Name  string
	Exact bool
	// Tied lists the candidates sharing the best score when no unique match
	// exists.
	Tied []string
}

// Suggestions returns the close names worth offering after a miss.
func (r resolution) Suggestions() []string {
	if len(r.Tied) > 0 {
		return r.Tied
	}
	if r.Name != "" && !r.Exact {
		return []string{r.Name}
	}
	return nil
}

// resolve reports ok only for an exact match or a unique close match.
func (r resolver) resolve(target string, names []string) (resolution, bool) {
	for _, n := range names {
		if n == target {
			return resolution{Name: n, Exact: true}, true
		}
	}
	if r.threshold <= 0 || target == "" {
		return resolution{}, false
	}

	best := -1.0
	var tied []string
	for _, n := range names {
		score := matchr.JaroWinkler(target, n, false)
		switch {
		case score > best:
			best = score
			tied = append(tied[:0], n)
		case score == best:
			tied = append(tied, n)
		}
	}
	if best < r.threshold {
		return resolution{}, false
	}
	if len(tied) > 1 {
		sort.Strings(tied)
		return resolution{Tied: tied}, false
	}
	return resolution{Name: tied[0]}, true
}
