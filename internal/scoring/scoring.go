// Package scoring grades practice attempts: a character-level similarity
// ratio for translations and a word-overlap score for pronunciation.
package scoring

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the sequence-matcher ratio of reference and candidate
// after lower-casing both. The ratio is 2*M/T where M is the number of
// characters in matching blocks and T the combined length, so it always lies
// in [0, 1]. Punctuation and whitespace count like any other character.
func Similarity(reference, candidate string) float64 {
	a := characters(strings.ToLower(reference))
	b := characters(strings.ToLower(candidate))
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	return difflib.NewMatcher(a, b).Ratio()
}

// characters splits s into one element per code point, the unit the
// matcher compares.
func characters(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Overlap is the outcome of comparing an expected word sequence with the
// words that were actually spoken.
type Overlap struct {
	Expected []string
	Actual   []string
	Matched  []string
	Missed   []string
	Extra    []string
	Score    float64
}

// WordOverlap splits both strings on whitespace and compares the words
// case-insensitively. Reported words keep their original casing.
//
// Membership is tested against sets, not multisets: an expected word that
// occurs twice counts as matched twice as long as it was spoken at least once.
func WordOverlap(expected, actual string) Overlap {
	expectedWords := strings.Fields(expected)
	actualWords := strings.Fields(actual)

	expectedSet := lowerSet(expectedWords)
	actualSet := lowerSet(actualWords)

	o := Overlap{
		Expected: expectedWords,
		Actual:   actualWords,
		Matched:  []string{},
		Missed:   []string{},
		Extra:    []string{},
	}

	for _, w := range expectedWords {
		if _, ok := actualSet[strings.ToLower(w)]; ok {
			o.Matched = append(o.Matched, w)
		} else {
			o.Missed = append(o.Missed, w)
		}
	}

	for _, w := range actualWords {
		if _, ok := expectedSet[strings.ToLower(w)]; !ok {
			o.Extra = append(o.Extra, w)
		}
	}

	if len(expectedWords) > 0 {
		o.Score = float64(len(o.Matched)) / float64(len(expectedWords))
	}

	return o
}

func lowerSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
