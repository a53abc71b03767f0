// Package fuzzy scores approximate string matches against a candidate vocabulary.
//
// Matching is a pure function of its inputs: identical query/candidate/threshold
// triples always yield identical ranked results. Ties are broken by shorter
// normalized label, then by candidate position, so ranking never depends on map
// iteration or timing.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum score a candidate must reach to be returned.
const DefaultThreshold = 0.6

// Scored is one candidate that cleared the threshold, with its similarity score.
type Scored struct {
	Label string
	Index int
	Score float64
}

// Normalize lowercases, strips punctuation to spaces, and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the distinct normalized word tokens of s, preserving first-seen order.
func Tokens(s string) []string {
	fields := strings.Fields(Normalize(s))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Score computes similarity between two strings in [0,1].
//
// Exact normalized equality scores 1.0. Otherwise the score is the maximum of
// a normalized edit-distance ratio (catches close spellings) and a token-overlap
// ratio (catches reordered or partial phrases).
func Score(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		if na == nb {
			return 1.0
		}
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	ratio := editRatio(na, nb)
	overlap := tokenOverlap(na, nb)
	if overlap > ratio {
		return overlap
	}
	return ratio
}

// Match scores every candidate label against query and returns those at or
// above threshold, sorted by score descending with deterministic tie-breaks.
func Match(query string, labels []string, threshold float64) []Scored {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	results := make([]Scored, 0, len(labels))
	for i, label := range labels {
		score := Score(query, label)
		if score < threshold {
			continue
		}
		results = append(results, Scored{Label: label, Index: i, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		li := len(Normalize(results[i].Label))
		lj := len(Normalize(results[j].Label))
		if li != lj {
			return li < lj
		}
		return results[i].Index < results[j].Index
	})

	return results
}

// editRatio maps Levenshtein distance into [0,1) for unequal strings.
func editRatio(a, b string) float64 {
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	ratio := 1.0 - float64(distance)/float64(maxLen)
	if ratio < 0 {
		return 0.0
	}
	return ratio
}

// tokenOverlap is shared distinct tokens over total distinct tokens.
func tokenOverlap(a, b string) float64 {
	ta := Tokens(a)
	tb := Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	inA := make(map[string]struct{}, len(ta))
	for _, tok := range ta {
		inA[tok] = struct{}{}
	}

	shared := 0
	union := len(ta)
	for _, tok := range tb {
		if _, ok := inA[tok]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}
