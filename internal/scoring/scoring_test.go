package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		candidate string
		want      float64
	}{
		{name: "identical", reference: "The house is big.", candidate: "The house is big.", want: 1.0},
		{name: "case insensitive", reference: "Hello World", candidate: "hello world", want: 1.0},
		{name: "disjoint characters", reference: "aaaa", candidate: "bbbb", want: 0.0},
		{name: "both empty", reference: "", candidate: "", want: 1.0},
		{name: "one empty", reference: "abc", candidate: "", want: 0.0},
		// difflib.SequenceMatcher(None, "abcd", "bcde").ratio() == 0.75
		{name: "partial", reference: "abcd", candidate: "bcde", want: 0.75},
		// punctuation is not normalised away: 2*5/11
		{name: "punctuation counts", reference: "hello", candidate: "hello!", want: 10.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.reference, tt.candidate), 1e-9)
		})
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"I went to the market yesterday.", "Yesterday I went to market"},
		{"مرحبا بالعالم", "hello world"},
		{"a", "aaaaaaaaaaaaaaaaaaaa"},
		{"The quick brown fox", "jumps over the lazy dog"},
	}

	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestSimilarity_MultibyteCountsCodePoints(t *testing.T) {
	// one of two code points match: 2*1/(2+2)
	assert.InDelta(t, 0.5, Similarity("بي", "بت"), 1e-9)
}

func TestWordOverlap(t *testing.T) {
	o := WordOverlap("hello there world", "hello world")

	assert.Equal(t, []string{"hello", "there", "world"}, o.Expected)
	assert.Equal(t, []string{"hello", "world"}, o.Actual)
	assert.Equal(t, []string{"hello", "world"}, o.Matched)
	assert.Equal(t, []string{"there"}, o.Missed)
	assert.Empty(t, o.Extra)
	assert.InDelta(t, 2.0/3.0, o.Score, 1e-9)
}

func TestWordOverlap_PreservesCasing(t *testing.T) {
	o := WordOverlap("Hello World", "hello WORLD again")

	assert.Equal(t, []string{"Hello", "World"}, o.Matched)
	assert.Equal(t, []string{"again"}, o.Extra)
	assert.Equal(t, 1.0, o.Score)
}

func TestWordOverlap_DuplicatesUseSetMembership(t *testing.T) {
	o := WordOverlap("the cat and the dog", "the cat")

	assert.Equal(t, []string{"the", "cat", "the"}, o.Matched)
	assert.Equal(t, []string{"and", "dog"}, o.Missed)
	assert.InDelta(t, 3.0/5.0, o.Score, 1e-9)
}

func TestWordOverlap_EmptyExpected(t *testing.T) {
	o := WordOverlap("   ", "something said")

	assert.Equal(t, 0.0, o.Score)
	assert.Empty(t, o.Matched)
	assert.Empty(t, o.Missed)
	assert.Equal(t, []string{"something", "said"}, o.Extra)
}

func TestWordOverlap_MatchedAndMissedPartitionExpected(t *testing.T) {
	cases := [][2]string{
		{"one two three four", "two four five"},
		{"A a b B", "a"},
		{"x", ""},
		{"", ""},
	}

	for _, c := range cases {
		o := WordOverlap(c[0], c[1])
		require.Len(t, o.Matched, len(o.Expected)-len(o.Missed))

		missed := map[string]bool{}
		for _, w := range o.Missed {
			missed[w] = true
		}
		for _, w := range o.Matched {
			assert.False(t, missed[w], "word %q both matched and missed", w)
		}

		if len(o.Expected) > 0 {
			assert.InDelta(t, float64(len(o.Matched))/float64(len(o.Expected)), o.Score, 1e-9)
		} else {
			assert.Equal(t, 0.0, o.Score)
		}
	}
}

func TestNearMisses(t *testing.T) {
	o := WordOverlap("I see their house", "I sea there house")

	got := NearMisses(o)
	require.Len(t, got, 2)
	assert.Equal(t, "see", got[0].Expected)
	assert.Equal(t, "sea", got[0].Heard)
	assert.Equal(t, "their", got[1].Expected)
	assert.Equal(t, "there", got[1].Heard)
}

func TestNearMisses_UnrelatedWordsIgnored(t *testing.T) {
	o := WordOverlap("the library", "the xylophone")

	assert.Empty(t, NearMisses(o))
}
