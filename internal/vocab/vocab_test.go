package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdersAliasesByName(t *testing.T) {
	snap, err := Build(map[string]string{
		"Workout":     "spotify:playlist:w1",
		"Chill Vibes": "spotify:playlist:c1",
		"Jazz":        "spotify:playlist:j1",
	}, 0.6, 0.1)
	require.NoError(t, err)

	labels := snap.AliasLabels()
	assert.Equal(t, []string{"Chill Vibes", "Jazz", "Workout"}, labels)

	aliases := snap.Aliases()
	require.Len(t, aliases, 3)
	assert.Equal(t, "chill vibes", aliases[0].Normalized)
	assert.Equal(t, "spotify:playlist:c1", aliases[0].URI)
}

func TestBuildRejectsNormalizedCollision(t *testing.T) {
	_, err := Build(map[string]string{
		"Work-Out": "spotify:playlist:a",
		"work out": "spotify:playlist:b",
	}, 0.6, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide")
}

func TestBuildRejectsEmptyAlias(t *testing.T) {
	_, err := Build(map[string]string{"!!!": "spotify:playlist:a"}, 0.6, 0.1)
	require.Error(t, err)
}

func TestBuildRejectsOutOfRangeParameters(t *testing.T) {
	_, err := Build(nil, 0, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")

	_, err = Build(nil, 1.5, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")

	_, err = Build(nil, 0.6, -0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "margin")

	_, err = Build(nil, 0.6, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "margin")
}

func TestLookupVerbSynonyms(t *testing.T) {
	snap, err := Build(nil, 0.6, 0.1)
	require.NoError(t, err)

	tests := []struct {
		phrase string
		want   Verb
	}{
		{"play", VerbPlay},
		{"resume", VerbPlay},
		{"pause", VerbPause},
		{"stop", VerbPause},
		{"next", VerbNext},
		{"skip", VerbNext},
		{"previous", VerbPrevious},
		{"prev", VerbPrevious},
		{"back", VerbPrevious},
		{"volume up", VerbVolumeUp},
		{"louder", VerbVolumeUp},
		{"turn it up", VerbVolumeUp},
		{"volume down", VerbVolumeDown},
		{"quieter", VerbVolumeDown},
		{"open spotify", VerbOpenApp},
		{"launch spotify", VerbOpenApp},
	}
	for _, tc := range tests {
		verb, ok := snap.LookupVerb(tc.phrase)
		require.True(t, ok, "phrase %q", tc.phrase)
		assert.Equal(t, tc.want, verb, "phrase %q", tc.phrase)
	}

	_, ok := snap.LookupVerb("play my workout playlist")
	assert.False(t, ok)
}
