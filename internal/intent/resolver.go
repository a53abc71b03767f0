package intent

import (
	"regexp"
	"strings"

	"github.com/croonhq/croon/internal/fuzzy"
	"github.com/croonhq/croon/internal/vocab"
)

// Trigger patterns run against the normalized transcript. The explicit
// "... playlist" form is tried before the bare form so the word "playlist"
// never leaks into the extracted span.
var (
	playlistPattern = regexp.MustCompile(`^play (?:my |the )?(.+?) playlist$`)
	playPattern     = regexp.MustCompile(`^play (?:my |the )?(.+)$`)
)

// Resolve maps one utterance to exactly one command using strictly ordered
// tiers: exact verb, playlist alias, free-text search, unresolved.
//
// The ordering is load-bearing: an exact verb is never hijacked by a fuzzy
// alias (a playlist named "play" cannot shadow the play command), and an
// ambiguous alias tie falls through to search rather than silently picking
// an arbitrary winner. Resolve is deterministic for a fixed utterance and
// snapshot.
func Resolve(utt Utterance, snap *vocab.Snapshot) Command {
	normalized := fuzzy.Normalize(utt.Text)
	if normalized == "" {
		return Command{Kind: KindUnresolved}
	}

	// Tier 1: exact verb lookup, O(1) regardless of alias count.
	if verb, ok := snap.LookupVerb(normalized); ok {
		if verb == vocab.VerbOpenApp {
			return Command{Kind: KindOpenApp}
		}
		return Command{Kind: KindMediaControl, Verb: verb}
	}

	span, ok := extractPlaySpan(normalized)
	if !ok {
		return Command{Kind: KindUnresolved}
	}

	// Tier 2: fuzzy alias match with threshold and runner-up margin.
	if alias, ok := matchAlias(span, snap); ok {
		return Command{Kind: KindPlayPlaylist, URI: alias.URI}
	}

	// Tier 3: free-text search fallback, delegated to Spotify's own search.
	return Command{Kind: KindSearchPlay, Query: span}
}

// extractPlaySpan pulls the free-text span out of a "play ..." trigger phrase.
// The "... playlist" form is matched first so the trailing word never leaks
// into the span.
func extractPlaySpan(normalized string) (string, bool) {
	if m := playlistPattern.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := playPattern.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// matchAlias accepts the top fuzzy alias only when it clears the snapshot
// threshold and beats the runner-up by the configured margin.
func matchAlias(span string, snap *vocab.Snapshot) (vocab.Alias, bool) {
	aliases := snap.Aliases()
	if len(aliases) == 0 {
		return vocab.Alias{}, false
	}

	results := fuzzy.Match(span, snap.AliasLabels(), snap.Threshold())
	if len(results) == 0 {
		return vocab.Alias{}, false
	}
	if len(results) > 1 && results[0].Score-results[1].Score < snap.Margin() {
		return vocab.Alias{}, false
	}
	return aliases[results[0].Index], true
}
