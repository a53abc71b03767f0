// Package intent maps free-text transcripts to structured playback commands.
package intent

import (
	"fmt"

	"github.com/croonhq/croon/internal/vocab"
)

// Utterance is one transcribed voice input, consumed by a single Resolve call.
type Utterance struct {
	Text          string
	Confidence    float64
	HasConfidence bool
}

// Kind tags the resolved command variant.
type Kind int

const (
	KindUnresolved Kind = iota
	KindMediaControl
	KindPlayPlaylist
	KindSearchPlay
	KindOpenApp
)

func (k Kind) String() string {
	switch k {
	case KindMediaControl:
		return "media_control"
	case KindPlayPlaylist:
		return "play_playlist"
	case KindSearchPlay:
		return "search_play"
	case KindOpenApp:
		return "open_app"
	default:
		return "unresolved"
	}
}

// Command is the single resolved outcome of one utterance. Exactly one field
// beyond Kind is meaningful per variant.
type Command struct {
	Kind  Kind
	Verb  vocab.Verb
	URI   string
	Query string
}

func (c Command) String() string {
	switch c.Kind {
	case KindMediaControl:
		return fmt.Sprintf("media_control(%s)", c.Verb)
	case KindPlayPlaylist:
		return fmt.Sprintf("play_playlist(%s)", c.URI)
	case KindSearchPlay:
		return fmt.Sprintf("search_play(%q)", c.Query)
	case KindOpenApp:
		return "open_app"
	default:
		return "unresolved"
	}
}
