package scoring

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// nearMissThreshold is the minimum Jaro-Winkler similarity for two words
// without a shared phonetic code to be reported as a near miss.
const nearMissThreshold = 0.85

// NearMiss pairs an expected word that was not recognised with the spoken
// word that most likely stood in for it.
type NearMiss struct {
	Expected string  `json:"expected"`
	Heard    string  `json:"heard"`
	Score    float64 `json:"score"`
}

// NearMisses looks for missed words that were probably said but transcribed
// differently by the speech recogniser ("there" heard as "their"). A
// candidate qualifies when its Double Metaphone codes overlap with the
// missed word's, or when its Jaro-Winkler similarity reaches
// nearMissThreshold. Each extra word is used at most once.
//
// The result is informational; it does not feed into Overlap.Score.
func NearMisses(o Overlap) []NearMiss {
	out := []NearMiss{}
	used := make([]bool, len(o.Extra))

	for _, missed := range o.Missed {
		m := strings.ToLower(missed)
		mp, ms := matchr.DoubleMetaphone(m)

		best := -1
		bestScore := 0.0
		for i, extra := range o.Extra {
			if used[i] {
				continue
			}

			e := strings.ToLower(extra)
			score := matchr.JaroWinkler(m, e, false)
			if score < nearMissThreshold {
				ep, es := matchr.DoubleMetaphone(e)
				if !codesOverlap(mp, ms, ep, es) {
					continue
				}
			}

			if best < 0 || score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best >= 0 {
			used[best] = true
			out = append(out, NearMiss{Expected: missed, Heard: o.Extra[best], Score: bestScore})
		}
	}

	return out
}

func codesOverlap(ap, as, bp, bs string) bool {
	for _, a := range []string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || a == bs {
			return true
		}
	}
	return false
}
