package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
//
// Secrets never live in the config file: Spotify client credentials are read
// from the environment (a .env file next to the process is honored) and
// layered over whatever the file provides.
func Load(explicitPath string) (Loaded, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := base
			applyEnvOverrides(&cfg)
			warnings, verr := Validate(cfg)
			if verr != nil {
				return Loaded{}, verr
			}
			warnings = append([]Warning{{
				Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
			}}, warnings...)
			return Loaded{Path: resolvedPath, Config: cfg, Warnings: warnings, Exists: false}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}
	applyEnvOverrides(&cfg)

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// applyEnvOverrides layers credential environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID")); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET")); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_REDIRECT_URI")); v != "" {
		cfg.Spotify.RedirectURI = v
	}
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_DEVICE_NAME")); v != "" {
		cfg.Spotify.DeviceName = v
	}
}
