package config

// defaultASRPrompt biases Whisper toward the command grammar, mirroring the
// closed phrase set the resolver understands.
const defaultASRPrompt = "Voice commands for Spotify. Common phrases: play, pause, resume, " +
	"next, previous, volume up, volume down, open spotify, " +
	"play my <playlist> playlist, play <song> by <artist>."

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	openCmd := "xdg-open spotify:"

	return Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8807/callback",
			VolumeStep:  10,
		},
		ASR: ASRConfig{
			Model:    "whisper-1",
			Language: "en",
			Prompt:   defaultASRPrompt,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Recording: RecordingConfig{
			MinDurationMS: 150,
			MaxDurationMS: 15000,
		},
		Matching: MatchingConfig{
			Threshold: 0.6,
			Margin:    0.1,
		},
		Playlists: map[string]string{},
		OpenCmd:   CommandConfig{Raw: openCmd, Argv: mustParseArgv(openCmd)},
		Feedback: FeedbackConfig{
			Enable:         true,
			AppName:        "croon",
			ErrorTimeoutMS: 1600,
		},
	}
}
