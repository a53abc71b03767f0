// Package config resolves, parses, validates, and defaults croon configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by croon.
type Config struct {
	Spotify   SpotifyConfig
	ASR       ASRConfig
	Audio     AudioConfig
	Recording RecordingConfig
	Matching  MatchingConfig
	Playlists map[string]string
	OpenCmd   CommandConfig
	Feedback  FeedbackConfig
}

// SpotifyConfig controls the Web API client used by the dispatcher.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	DeviceName   string
	TokenCache   string
	VolumeStep   int
}

// ASRConfig controls the Whisper transcription request.
type ASRConfig struct {
	Model    string
	Language string
	Prompt   string
	BaseURL  string
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// RecordingConfig bounds push-to-talk recording length.
type RecordingConfig struct {
	MinDurationMS int
	MaxDurationMS int
}

// MinDuration is the accidental-tap cutoff below which a press is discarded.
func (r RecordingConfig) MinDuration() time.Duration {
	return time.Duration(r.MinDurationMS) * time.Millisecond
}

// MaxDuration is the forced-stop bound on one recording.
func (r RecordingConfig) MaxDuration() time.Duration {
	return time.Duration(r.MaxDurationMS) * time.Millisecond
}

// MatchingConfig holds the fuzzy acceptance threshold and runner-up margin.
type MatchingConfig struct {
	Threshold float64
	Margin    float64
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// FeedbackConfig controls desktop notification feedback.
type FeedbackConfig struct {
	Enable         bool
	AppName        string
	ErrorTimeoutMS int
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
