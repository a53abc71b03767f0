// Package doctor runs runtime readiness diagnostics for config, credentials, and audio.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/croonhq/croon/internal/audio"
	"github.com/croonhq/croon/internal/config"
	"github.com/croonhq/croon/internal/spotify"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("no file at %q, using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkPlaylists(cfg.Config))

	checks = append(checks, checkEnv("OPENAI_API_KEY", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "transcription API key is set", "OPENAI_API_KEY is empty"))

	checks = append(checks, checkSpotifyCredentials(cfg.Config.Spotify))
	checks = append(checks, checkSpotifyToken(cfg.Config.Spotify))

	checks = append(checks, checkCommand(cfg.Config.OpenCmd.Argv, "open_cmd"))
	if cfg.Config.Feedback.Enable {
		checks = append(checks, checkBinary("busctl", "desktop feedback requires busctl"))
	}

	checks = append(checks, checkAudioSelection(cfg.Config))

	return Report{Checks: checks}
}

// checkPlaylists reports the alias inventory the resolver can match against.
func checkPlaylists(cfg config.Config) Check {
	if len(cfg.Playlists) == 0 {
		return Check{
			Name:    "playlists",
			Pass:    true,
			Message: "none configured; playlist commands fall back to track search",
		}
	}
	return Check{
		Name:    "playlists",
		Pass:    true,
		Message: fmt.Sprintf("%d aliases configured", len(cfg.Playlists)),
	}
}

// checkSpotifyCredentials validates the OAuth application settings.
func checkSpotifyCredentials(cfg config.SpotifyConfig) Check {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return Check{
			Name:    "spotify.credentials",
			Pass:    false,
			Message: "client_id or client_secret missing; set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET",
		}
	}
	return Check{Name: "spotify.credentials", Pass: true, Message: "client credentials configured"}
}

// checkSpotifyToken validates that an OAuth token has been cached.
func checkSpotifyToken(cfg config.SpotifyConfig) Check {
	path, err := spotify.TokenCachePath(cfg)
	if err != nil {
		return Check{Name: "spotify.token", Pass: false, Message: err.Error()}
	}
	if _, err := spotify.LoadToken(path); err != nil {
		return Check{Name: "spotify.token", Pass: false, Message: err.Error()}
	}
	return Check{Name: "spotify.token", Pass: true, Message: fmt.Sprintf("cached at %q", path)}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
