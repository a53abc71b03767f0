package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Play My WORKOUT Playlist ", "play my workout playlist"},
		{"don't-stop!", "don t stop"},
		{"Bohemian   Rhapsody", "bohemian rhapsody"},
		{"...", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestScoreExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, Score("Workout", "workout"))
	assert.Equal(t, 1.0, Score("  lo-fi beats ", "Lo Fi Beats"))
}

func TestScoreMisspelling(t *testing.T) {
	// Close spelling should clear the default threshold via edit distance.
	score := Score("bohemian rapsdy", "Bohemian Rhapsody")
	assert.GreaterOrEqual(t, score, 0.6)
	assert.Less(t, score, 1.0)
}

func TestScoreTokenOverlap(t *testing.T) {
	// Reordered/partial phrases should clear the threshold via token overlap.
	score := Score("my workout", "workout playlist")
	assert.Greater(t, score, 0.0)

	score = Score("workout playlist", "playlist workout")
	assert.Equal(t, 1.0, score)
}

func TestScoreUnrelated(t *testing.T) {
	assert.Less(t, Score("jazz classics", "heavy metal"), 0.5)
}

func TestMatchFiltersAndRanks(t *testing.T) {
	labels := []string{"Workout", "Work Stuff", "Chill Vibes"}
	results := Match("workout", labels, 0.6)

	require.NotEmpty(t, results)
	assert.Equal(t, "Workout", results[0].Label)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1.0, results[0].Score)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.6)
	}
}

func TestMatchBohemianMisspelling(t *testing.T) {
	results := Match("bohemian rapsdy", []string{"Bohemian Rhapsody"}, 0.6)
	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Score, 0.6)
}

func TestMatchTieBreaksAreDeterministic(t *testing.T) {
	// Two identical labels tie on score and length; lower index wins.
	labels := []string{"Focus", "Focus"}
	for i := 0; i < 100; i++ {
		results := Match("focus", labels, 0.6)
		require.Len(t, results, 2)
		require.Equal(t, 0, results[0].Index)
		require.Equal(t, 1, results[1].Index)
	}
}

func TestMatchShorterLabelWinsOnEqualScore(t *testing.T) {
	// Both labels share the full distinct token set with the query, so both
	// score 1.0 on token overlap; the shorter normalized label ranks first.
	labels := []string{"beta alpha beta", "beta alpha"}
	results := Match("alpha beta", labels, 0.5)
	require.Len(t, results, 2)
	assert.Equal(t, "beta alpha", results[0].Label)
	assert.Equal(t, "beta alpha beta", results[1].Label)
}

func TestMatchEmptyQuery(t *testing.T) {
	assert.Empty(t, Match("", []string{"Workout"}, 0.6))
}
