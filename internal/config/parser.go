package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Spotify   *jsoncSpotify     `json:"spotify"`
	ASR       *jsoncASR         `json:"asr"`
	Audio     *jsoncAudio       `json:"audio"`
	Recording *jsoncRecording   `json:"recording"`
	Matching  *jsoncMatching    `json:"matching"`
	Playlists map[string]string `json:"playlists"`
	OpenCmd   *string           `json:"open_cmd"`
	Feedback  *jsoncFeedback    `json:"feedback"`
}

type jsoncSpotify struct {
	ClientID     *string `json:"client_id"`
	ClientSecret *string `json:"client_secret"`
	RedirectURI  *string `json:"redirect_uri"`
	DeviceName   *string `json:"device_name"`
	TokenCache   *string `json:"token_cache"`
	VolumeStep   *int    `json:"volume_step"`
}

type jsoncASR struct {
	Model    *string `json:"model"`
	Language *string `json:"language"`
	Prompt   *string `json:"prompt"`
	BaseURL  *string `json:"base_url"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncRecording struct {
	MinDurationMS *int `json:"min_duration_ms"`
	MaxDurationMS *int `json:"max_duration_ms"`
}

type jsoncMatching struct {
	Threshold *float64 `json:"threshold"`
	Margin    *float64 `json:"margin"`
}

type jsoncFeedback struct {
	Enable         *bool   `json:"enable"`
	AppName        *string `json:"app_name"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms"`
}

// Parse reads configuration content as JSONC layered over base defaults.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return Config{}, nil, errors.New("config must be a JSONC object")
	}

	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Spotify != nil {
		if payload.Spotify.ClientID != nil {
			cfg.Spotify.ClientID = strings.TrimSpace(*payload.Spotify.ClientID)
		}
		if payload.Spotify.ClientSecret != nil {
			cfg.Spotify.ClientSecret = strings.TrimSpace(*payload.Spotify.ClientSecret)
		}
		if payload.Spotify.RedirectURI != nil {
			cfg.Spotify.RedirectURI = strings.TrimSpace(*payload.Spotify.RedirectURI)
		}
		if payload.Spotify.DeviceName != nil {
			cfg.Spotify.DeviceName = strings.TrimSpace(*payload.Spotify.DeviceName)
		}
		if payload.Spotify.TokenCache != nil {
			cfg.Spotify.TokenCache = strings.TrimSpace(*payload.Spotify.TokenCache)
		}
		if payload.Spotify.VolumeStep != nil {
			cfg.Spotify.VolumeStep = *payload.Spotify.VolumeStep
		}
	}

	if payload.ASR != nil {
		if payload.ASR.Model != nil {
			cfg.ASR.Model = strings.TrimSpace(*payload.ASR.Model)
		}
		if payload.ASR.Language != nil {
			cfg.ASR.Language = strings.TrimSpace(*payload.ASR.Language)
		}
		if payload.ASR.Prompt != nil {
			cfg.ASR.Prompt = *payload.ASR.Prompt
		}
		if payload.ASR.BaseURL != nil {
			cfg.ASR.BaseURL = strings.TrimSpace(*payload.ASR.BaseURL)
		}
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
	}

	if payload.Recording != nil {
		if payload.Recording.MinDurationMS != nil {
			cfg.Recording.MinDurationMS = *payload.Recording.MinDurationMS
		}
		if payload.Recording.MaxDurationMS != nil {
			cfg.Recording.MaxDurationMS = *payload.Recording.MaxDurationMS
		}
	}

	if payload.Matching != nil {
		if payload.Matching.Threshold != nil {
			cfg.Matching.Threshold = *payload.Matching.Threshold
		}
		if payload.Matching.Margin != nil {
			cfg.Matching.Margin = *payload.Matching.Margin
		}
	}

	if payload.Playlists != nil {
		playlists := make(map[string]string, len(payload.Playlists))
		for name, uri := range payload.Playlists {
			name = strings.TrimSpace(name)
			uri = strings.TrimSpace(uri)
			if name == "" || uri == "" {
				return fmt.Errorf("playlists entries require non-empty alias and URI")
			}
			playlists[name] = uri
		}
		cfg.Playlists = playlists
	}

	if payload.OpenCmd != nil {
		raw := strings.TrimSpace(*payload.OpenCmd)
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("open_cmd: %w", err)
		}
		cfg.OpenCmd = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.Feedback != nil {
		if payload.Feedback.Enable != nil {
			cfg.Feedback.Enable = *payload.Feedback.Enable
		}
		if payload.Feedback.AppName != nil {
			cfg.Feedback.AppName = strings.TrimSpace(*payload.Feedback.AppName)
		}
		if payload.Feedback.ErrorTimeoutMS != nil {
			cfg.Feedback.ErrorTimeoutMS = *payload.Feedback.ErrorTimeoutMS
		}
	}

	return nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
