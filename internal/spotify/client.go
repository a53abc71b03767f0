// Package spotify drives playback through the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	webapi "github.com/zmb3/spotify/v2"

	"github.com/croonhq/croon/internal/config"
)

// Player wraps the Web API client behind the dispatcher's playback surface.
// Device name and volume step are re-read per call so a config reload applies
// without restarting the daemon.
type Player struct {
	api    *webapi.Client
	prefs  func() config.SpotifyConfig
	logger *slog.Logger

	mu       sync.Mutex
	deviceID *webapi.ID
}

// NewPlayer wraps an authenticated Web API client.
func NewPlayer(api *webapi.Client, prefs func() config.SpotifyConfig, logger *slog.Logger) *Player {
	return &Player{api: api, prefs: prefs, logger: logger}
}

// Play resumes playback on the configured device.
func (p *Player) Play(ctx context.Context) error {
	opts, err := p.playOptions(ctx, nil, "")
	if err != nil {
		return err
	}
	if opts == nil {
		return p.api.Play(ctx)
	}
	return p.api.PlayOpt(ctx, opts)
}

// Pause stops playback.
func (p *Player) Pause(ctx context.Context) error {
	return p.api.Pause(ctx)
}

// Next skips to the next track.
func (p *Player) Next(ctx context.Context) error {
	return p.api.Next(ctx)
}

// Previous returns to the previous track.
func (p *Player) Previous(ctx context.Context) error {
	return p.api.Previous(ctx)
}

// VolumeUp raises the active device volume by the configured step.
func (p *Player) VolumeUp(ctx context.Context) error {
	return p.adjustVolume(ctx, p.prefs().VolumeStep)
}

// VolumeDown lowers the active device volume by the configured step.
func (p *Player) VolumeDown(ctx context.Context) error {
	return p.adjustVolume(ctx, -p.prefs().VolumeStep)
}

// PlayContext starts playback of a playlist or album context URI.
func (p *Player) PlayContext(ctx context.Context, uri string) error {
	contextURI := webapi.URI(uri)
	opts, err := p.playOptions(ctx, nil, contextURI)
	if err != nil {
		return err
	}
	return p.api.PlayOpt(ctx, opts)
}

// SearchAndPlay finds the best track for a free-text query and starts it.
// The description of what started playing is returned for user feedback.
func (p *Player) SearchAndPlay(ctx context.Context, query string) (string, error) {
	results, err := p.api.Search(ctx, query, webapi.SearchTypeTrack, webapi.Limit(1))
	if err != nil {
		return "", fmt.Errorf("search tracks: %w", err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return "", fmt.Errorf("no tracks found for %q", query)
	}

	track := results.Tracks.Tracks[0]
	opts, err := p.playOptions(ctx, []webapi.URI{track.URI}, "")
	if err != nil {
		return "", err
	}
	if err := p.api.PlayOpt(ctx, opts); err != nil {
		return "", fmt.Errorf("start track: %w", err)
	}
	return describeTrack(track), nil
}

// adjustVolume reads the active device volume and applies a clamped delta.
func (p *Player) adjustVolume(ctx context.Context, delta int) error {
	state, err := p.api.PlayerState(ctx)
	if err != nil {
		return fmt.Errorf("read player state: %w", err)
	}

	volume := int(state.Device.Volume) + delta
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	if err := p.api.Volume(ctx, volume); err != nil {
		return fmt.Errorf("set volume to %d: %w", volume, err)
	}
	return nil
}

// playOptions builds PlayOptions targeting the configured device, when one is
// named and found. Nil means no options are needed at all.
func (p *Player) playOptions(ctx context.Context, uris []webapi.URI, contextURI webapi.URI) (*webapi.PlayOptions, error) {
	deviceID, err := p.resolveDevice(ctx)
	if err != nil {
		return nil, err
	}

	if deviceID == nil && len(uris) == 0 && contextURI == "" {
		return nil, nil
	}

	opts := &webapi.PlayOptions{DeviceID: deviceID}
	if len(uris) > 0 {
		opts.URIs = uris
	}
	if contextURI != "" {
		opts.PlaybackContext = &contextURI
	}
	return opts, nil
}

// resolveDevice finds the configured device by name, caching the lookup.
func (p *Player) resolveDevice(ctx context.Context) (*webapi.ID, error) {
	name := strings.TrimSpace(p.prefs().DeviceName)
	if name == "" {
		return nil, nil
	}

	p.mu.Lock()
	cached := p.deviceID
	p.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	devices, err := p.api.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playback devices: %w", err)
	}

	for _, device := range devices {
		if strings.EqualFold(device.Name, name) {
			id := device.ID
			p.mu.Lock()
			p.deviceID = &id
			p.mu.Unlock()
			if p.logger != nil {
				p.logger.Debug("resolved playback device", "name", device.Name, "id", string(id))
			}
			return &id, nil
		}
	}
	return nil, fmt.Errorf("playback device %q not found", name)
}

// describeTrack formats one track for user-facing feedback.
func describeTrack(track webapi.FullTrack) string {
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	if len(names) == 0 {
		return track.Name
	}
	return fmt.Sprintf("%s by %s", track.Name, strings.Join(names, ", "))
}
