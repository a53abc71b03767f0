// Package vocab holds the closed command-verb set and user playlist aliases.
//
// A Snapshot is built once from a configuration snapshot and is immutable
// afterwards; resolution always reads a single Snapshot for its whole cycle.
package vocab

import (
	"fmt"
	"sort"

	"github.com/croonhq/croon/internal/fuzzy"
)

// Verb is one canonical media-control command identifier.
type Verb string

const (
	VerbPlay       Verb = "PLAY"
	VerbPause      Verb = "PAUSE"
	VerbNext       Verb = "NEXT"
	VerbPrevious   Verb = "PREVIOUS"
	VerbVolumeUp   Verb = "VOLUME_UP"
	VerbVolumeDown Verb = "VOLUME_DOWN"
	VerbOpenApp    Verb = "OPEN_APP"
)

// verbPhrases maps normalized spoken phrases to canonical verbs. The phrase
// set is closed: playlist aliases never shadow these because the resolver
// checks verbs first.
var verbPhrases = map[string]Verb{
	"play":   VerbPlay,
	"resume": VerbPlay,

	"pause": VerbPause,
	"stop":  VerbPause,

	"next": VerbNext,
	"skip": VerbNext,

	"previous": VerbPrevious,
	"prev":     VerbPrevious,
	"back":     VerbPrevious,

	"volume up":  VerbVolumeUp,
	"vol up":     VerbVolumeUp,
	"louder":     VerbVolumeUp,
	"turn it up": VerbVolumeUp,

	"volume down":  VerbVolumeDown,
	"vol down":     VerbVolumeDown,
	"quieter":      VerbVolumeDown,
	"turn it down": VerbVolumeDown,

	"open spotify":     VerbOpenApp,
	"launch spotify":   VerbOpenApp,
	"open the spotify": VerbOpenApp,
}

// Alias is one user-defined playlist name mapped to an opaque target URI.
type Alias struct {
	Name       string
	Normalized string
	URI        string
}

// Snapshot is an immutable vocabulary view used for one or more resolutions.
type Snapshot struct {
	aliases   []Alias
	threshold float64
	margin    float64
}

// Build constructs a Snapshot from the configured alias map and thresholds.
//
// Aliases are ordered by name so candidate order (and therefore fuzzy
// tie-breaking) is stable regardless of map iteration. Two aliases that
// collide after normalization, or matching parameters outside their valid
// ranges, are a configuration error.
func Build(playlists map[string]string, threshold float64, margin float64) (*Snapshot, error) {
	names := make([]string, 0, len(playlists))
	for name := range playlists {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	aliases := make([]Alias, 0, len(names))
	for _, name := range names {
		normalized := fuzzy.Normalize(name)
		if normalized == "" {
			return nil, fmt.Errorf("playlist alias %q is empty after normalization", name)
		}
		if prior, ok := seen[normalized]; ok {
			return nil, fmt.Errorf("playlist aliases %q and %q collide as %q", prior, name, normalized)
		}
		seen[normalized] = name
		aliases = append(aliases, Alias{
			Name:       name,
			Normalized: normalized,
			URI:        playlists[name],
		})
	}

	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("matching threshold %v is outside (0,1]", threshold)
	}
	if margin < 0 || margin >= 1 {
		return nil, fmt.Errorf("matching margin %v is outside [0,1)", margin)
	}

	return &Snapshot{aliases: aliases, threshold: threshold, margin: margin}, nil
}

// LookupVerb resolves an already-normalized phrase against the fixed verb set.
func (s *Snapshot) LookupVerb(normalized string) (Verb, bool) {
	verb, ok := verbPhrases[normalized]
	return verb, ok
}

// Aliases returns the ordered playlist alias set.
func (s *Snapshot) Aliases() []Alias {
	return s.aliases
}

// AliasLabels returns alias names in snapshot order, for fuzzy matching.
func (s *Snapshot) AliasLabels() []string {
	labels := make([]string, len(s.aliases))
	for i, alias := range s.aliases {
		labels[i] = alias.Name
	}
	return labels
}

// Threshold is the minimum fuzzy score for accepting a playlist alias.
func (s *Snapshot) Threshold() float64 {
	return s.threshold
}

// Margin is the minimum score gap required over the runner-up alias.
func (s *Snapshot) Margin() float64 {
	return s.margin
}
