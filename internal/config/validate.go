package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/croonhq/croon/internal/fuzzy"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.ASR.Model) == "" {
		return nil, fmt.Errorf("asr.model must not be empty")
	}
	if strings.TrimSpace(cfg.ASR.Language) == "" {
		return nil, fmt.Errorf("asr.language must not be empty")
	}

	if cfg.Recording.MinDurationMS < 0 {
		return nil, fmt.Errorf("recording.min_duration_ms must be >= 0")
	}
	if cfg.Recording.MaxDurationMS <= 0 {
		return nil, fmt.Errorf("recording.max_duration_ms must be > 0")
	}
	if cfg.Recording.MinDurationMS >= cfg.Recording.MaxDurationMS {
		return nil, fmt.Errorf("recording.min_duration_ms must be < recording.max_duration_ms")
	}

	if cfg.Matching.Threshold <= 0 || cfg.Matching.Threshold > 1 {
		return nil, fmt.Errorf("matching.threshold must be in (0,1]")
	}
	if cfg.Matching.Margin < 0 || cfg.Matching.Margin >= 1 {
		return nil, fmt.Errorf("matching.margin must be in [0,1)")
	}

	if cfg.Spotify.VolumeStep <= 0 || cfg.Spotify.VolumeStep > 100 {
		return nil, fmt.Errorf("spotify.volume_step must be in (0,100]")
	}

	if len(cfg.OpenCmd.Argv) == 0 {
		return nil, fmt.Errorf("open_cmd must not be empty")
	}

	if cfg.Feedback.Enable && strings.TrimSpace(cfg.Feedback.AppName) == "" {
		return nil, fmt.Errorf("feedback.app_name must not be empty when feedback is enabled")
	}
	if cfg.Feedback.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("feedback.error_timeout_ms must be >= 0")
	}

	warnings = append(warnings, validatePlaylists(cfg.Playlists)...)

	if len(cfg.Playlists) == 0 {
		warnings = append(warnings, Warning{Message: "no playlists configured; playlist commands will fall back to search"})
	}

	return warnings, nil
}

// validatePlaylists surfaces aliases that collide with a fixed command verb.
// These are warnings, not errors: the verb tier always wins, so the alias is
// merely unreachable by exact phrasing.
func validatePlaylists(playlists map[string]string) []Warning {
	names := make([]string, 0, len(playlists))
	for name := range playlists {
		names = append(names, name)
	}
	sort.Strings(names)

	warnings := make([]Warning, 0)
	for _, name := range names {
		normalized := fuzzy.Normalize(name)
		switch normalized {
		case "play", "pause", "stop", "next", "skip", "previous", "prev", "back",
			"resume", "volume up", "volume down", "louder", "quieter", "open spotify":
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("playlist alias %q collides with a command verb and is only reachable via 'play my %s playlist'", name, normalized),
			})
		}
	}
	return warnings
}
