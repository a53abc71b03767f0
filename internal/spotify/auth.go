package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	webapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/croonhq/croon/internal/config"
)

// ErrNotAuthorized means no cached token exists yet.
var ErrNotAuthorized = errors.New("no cached spotify token; run 'croon auth' first")

// Authenticator builds the OAuth authenticator for the playback scopes croon needs.
func Authenticator(cfg config.SpotifyConfig) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
		),
	)
}

// TokenCachePath resolves where the OAuth token is persisted.
func TokenCachePath(cfg config.SpotifyConfig) (string, error) {
	if path := strings.TrimSpace(cfg.TokenCache); path != "" {
		return path, nil
	}

	stateDir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for token cache: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "croon", "spotify-token.json"), nil
}

// LoadToken reads a cached OAuth token. A missing file maps to ErrNotAuthorized.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("read token cache %q: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token cache %q: %w", path, err)
	}
	return &token, nil
}

// SaveToken persists an OAuth token with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token cache dir: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token cache %q: %w", path, err)
	}
	return nil
}

// NewPlayerFromCache builds an authenticated player from the cached token.
// Refresh happens transparently inside the OAuth transport.
func NewPlayerFromCache(ctx context.Context, prefs func() config.SpotifyConfig, logger *slog.Logger) (*Player, error) {
	cfg := prefs()
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("spotify client_id and client_secret are not configured")
	}

	path, err := TokenCachePath(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(path)
	if err != nil {
		return nil, err
	}

	httpClient := Authenticator(cfg).Client(ctx, token)
	httpClient.Timeout = 15 * time.Second
	return NewPlayer(webapi.New(httpClient), prefs, logger), nil
}

// Authorize runs the one-time browser OAuth flow and caches the resulting token.
func Authorize(ctx context.Context, cfg config.SpotifyConfig, stdout io.Writer) error {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return errors.New("spotify client_id and client_secret are required; set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	}

	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil {
		return fmt.Errorf("parse redirect_uri %q: %w", cfg.RedirectURI, err)
	}
	if redirect.Host == "" {
		return fmt.Errorf("redirect_uri %q has no host", cfg.RedirectURI)
	}

	auth := Authenticator(cfg)
	state, err := randomState()
	if err != nil {
		return err
	}

	type authResult struct {
		token *oauth2.Token
		err   error
	}
	results := make(chan authResult, 1)

	mux := http.NewServeMux()
	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		token, terr := auth.Token(r.Context(), state, r)
		if terr != nil {
			http.Error(w, "Authorization failed. You can close this tab.", http.StatusForbidden)
			results <- authResult{err: terr}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		results <- authResult{token: token}
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Fprintln(stdout, "Open this URL in your browser to authorize croon:")
	fmt.Fprintln(stdout, auth.AuthURL(state))

	var token *oauth2.Token
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-serveErr:
		return fmt.Errorf("callback server: %w", err)
	case result := <-results:
		if result.err != nil {
			return fmt.Errorf("exchange authorization code: %w", result.err)
		}
		token = result.token
	}

	path, err := TokenCachePath(cfg)
	if err != nil {
		return err
	}
	if err := SaveToken(path, token); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Token saved to %s\n", path)
	return nil
}

// randomState generates the CSRF state parameter for the OAuth roundtrip.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
