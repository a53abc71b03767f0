package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/croonhq/croon/internal/config"
	"github.com/croonhq/croon/internal/spotify"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "value")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.TrimSpace(v) != "" },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "open_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-open")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-open", "spotify:"}, "open_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "open_cmd command is available")
}

func TestCheckPlaylists(t *testing.T) {
	cfg := config.Default()
	check := checkPlaylists(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "none configured")

	cfg.Playlists = map[string]string{"workout": "spotify:playlist:a", "chill": "spotify:playlist:b"}
	check = checkPlaylists(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "2 aliases")
}

func TestCheckSpotifyCredentials(t *testing.T) {
	check := checkSpotifyCredentials(config.SpotifyConfig{})
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "SPOTIFY_CLIENT_ID")

	check = checkSpotifyCredentials(config.SpotifyConfig{ClientID: "id", ClientSecret: "secret"})
	require.True(t, check.Pass)
}

func TestCheckSpotifyTokenMissing(t *testing.T) {
	cfg := config.SpotifyConfig{TokenCache: filepath.Join(t.TempDir(), "absent.json")}
	check := checkSpotifyToken(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "croon auth")
}

func TestCheckSpotifyTokenPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, spotify.SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))

	check := checkSpotifyToken(config.SpotifyConfig{TokenCache: path})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "cached at")
}

func TestCheckAudioSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioSelection(config.Default())
	require.False(t, check.Pass)
	require.Contains(t, check.Name, "audio.device")
}

func TestRunReportsDefaultsWhenConfigMissing(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: config.Default(), Exists: false})
	require.NotEmpty(t, report.Checks)

	var sawConfig, sawBusctl bool
	for _, check := range report.Checks {
		if check.Name == "config" {
			sawConfig = true
			require.Contains(t, check.Message, "using defaults")
		}
		if check.Name == "busctl" {
			sawBusctl = true
		}
	}
	require.True(t, sawConfig)
	// Default config enables desktop feedback, so busctl is checked.
	require.True(t, sawBusctl)
}

func TestRunSkipsBusctlWhenFeedbackDisabled(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Feedback.Enable = false

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg, Exists: true})
	for _, check := range report.Checks {
		require.NotEqual(t, "busctl", check.Name)
	}
}
