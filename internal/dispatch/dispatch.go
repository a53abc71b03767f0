// Package dispatch maps resolved commands onto the external automation target.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/croonhq/croon/internal/intent"
	"github.com/croonhq/croon/internal/vocab"
)

// Status classifies the outcome of one dispatch attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusNotApplicable
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "not_applicable"
	}
}

// Outcome is the user-facing result of one dispatch attempt.
type Outcome struct {
	Status Status
	Reason string
	Detail string
}

// Player is the playback-control surface of the automation target.
type Player interface {
	Play(context.Context) error
	Pause(context.Context) error
	Next(context.Context) error
	Previous(context.Context) error
	VolumeUp(context.Context) error
	VolumeDown(context.Context) error
	PlayContext(ctx context.Context, uri string) error
	SearchAndPlay(ctx context.Context, query string) (string, error)
}

const dispatchTimeout = 10 * time.Second

// Dispatcher performs exactly one collaborator call per resolved command.
// There is no retry: a flaky target reports failure upward as feedback and
// the pipeline carries on.
type Dispatcher struct {
	player   Player
	openArgv []string
	logger   *slog.Logger
}

// New constructs a dispatcher. player may be nil when Spotify credentials are
// absent; playback commands then fail with a configuration hint instead of
// crashing.
func New(player Player, openArgv []string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{player: player, openArgv: openArgv, logger: logger}
}

// Dispatch executes one resolved command against the automation target.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd intent.Command) Outcome {
	if cmd.Kind == intent.KindUnresolved {
		return Outcome{Status: StatusNotApplicable, Reason: "command not understood"}
	}

	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	switch cmd.Kind {
	case intent.KindOpenApp:
		if err := d.openApp(ctx); err != nil {
			return d.failed("open spotify", err)
		}
		return Outcome{Status: StatusSuccess, Detail: "opened spotify"}
	case intent.KindMediaControl:
		return d.mediaControl(ctx, cmd.Verb)
	case intent.KindPlayPlaylist:
		if d.player == nil {
			return d.unconfigured()
		}
		if err := d.player.PlayContext(ctx, cmd.URI); err != nil {
			return d.failed("start playlist", err)
		}
		return Outcome{Status: StatusSuccess, Detail: "playing playlist"}
	case intent.KindSearchPlay:
		if d.player == nil {
			return d.unconfigured()
		}
		played, err := d.player.SearchAndPlay(ctx, cmd.Query)
		if err != nil {
			return d.failed(fmt.Sprintf("search %q", cmd.Query), err)
		}
		return Outcome{Status: StatusSuccess, Detail: "playing " + played}
	default:
		return Outcome{Status: StatusNotApplicable, Reason: fmt.Sprintf("unknown command kind %d", cmd.Kind)}
	}
}

// mediaControl routes one transport verb to its player call.
func (d *Dispatcher) mediaControl(ctx context.Context, verb vocab.Verb) Outcome {
	if d.player == nil {
		return d.unconfigured()
	}

	var err error
	switch verb {
	case vocab.VerbPlay:
		err = d.player.Play(ctx)
	case vocab.VerbPause:
		err = d.player.Pause(ctx)
	case vocab.VerbNext:
		err = d.player.Next(ctx)
	case vocab.VerbPrevious:
		err = d.player.Previous(ctx)
	case vocab.VerbVolumeUp:
		err = d.player.VolumeUp(ctx)
	case vocab.VerbVolumeDown:
		err = d.player.VolumeDown(ctx)
	default:
		return Outcome{Status: StatusNotApplicable, Reason: fmt.Sprintf("unsupported verb %s", verb)}
	}

	if err != nil {
		return d.failed(strings.ToLower(string(verb)), err)
	}
	return Outcome{Status: StatusSuccess, Detail: strings.ToLower(string(verb))}
}

// openApp launches the desktop client via the configured argv.
func (d *Dispatcher) openApp(ctx context.Context) error {
	if len(d.openArgv) == 0 {
		return fmt.Errorf("open command is not configured")
	}

	cmd := exec.CommandContext(ctx, d.openArgv[0], d.openArgv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return fmt.Errorf("run %s: %w", d.openArgv[0], err)
		}
		return fmt.Errorf("run %s: %w (%s)", d.openArgv[0], err, trimmed)
	}
	return nil
}

func (d *Dispatcher) failed(action string, err error) Outcome {
	if d.logger != nil {
		d.logger.Error("dispatch failed", "action", action, "error", err.Error())
	}
	return Outcome{Status: StatusFailed, Reason: fmt.Sprintf("%s: %v", action, err)}
}

func (d *Dispatcher) unconfigured() Outcome {
	return Outcome{
		Status: StatusFailed,
		Reason: "spotify is not configured; run 'croon auth' first",
	}
}
