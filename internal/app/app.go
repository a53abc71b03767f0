package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/croonhq/croon/internal/asr"
	"github.com/croonhq/croon/internal/audio"
	"github.com/croonhq/croon/internal/cli"
	"github.com/croonhq/croon/internal/config"
	"github.com/croonhq/croon/internal/dispatch"
	"github.com/croonhq/croon/internal/doctor"
	"github.com/croonhq/croon/internal/feedback"
	"github.com/croonhq/croon/internal/intent"
	"github.com/croonhq/croon/internal/ipc"
	"github.com/croonhq/croon/internal/logging"
	"github.com/croonhq/croon/internal/session"
	"github.com/croonhq/croon/internal/spotify"
	"github.com/croonhq/croon/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("croon"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("croon"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	// Hotkey forwards run on every press/release; skip config and log setup
	// so they stay cheap.
	switch parsed.Command {
	case cli.CommandDown:
		return r.forwardOrFail(ctx, "down")
	case cli.CommandUp:
		return r.forwardOrFail(ctx, "up")
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, "cancel")
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandAuth:
		if err := spotify.Authorize(ctx, cfgLoaded.Config.Spotify, r.Stdout); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	case cli.CommandResolve:
		return r.commandResolve(parsed.Text, cfgLoaded.Config)
	case cli.CommandListen:
		return r.commandListen(ctx, cfgLoaded, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandResolve runs the matching tiers against literal text and prints the
// resulting command without dispatching anything.
func (r Runner) commandResolve(text string, cfg config.Config) int {
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(r.Stderr, "error: resolve requires text, e.g. croon resolve play my workout playlist")
		return 2
	}

	snap, err := config.NewSnapshot(cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	cmd := intent.Resolve(intent.Utterance{Text: text}, snap.Vocab)
	fmt.Fprintln(r.Stdout, cmd.String())
	if cmd.Kind == intent.KindUnresolved {
		return 1
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: croon daemon is not running; start it with 'croon listen'\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandListen runs the daemon: socket ownership, config watching, and the
// session loop, until the context is cancelled.
func (r Runner) commandListen(ctx context.Context, cfgLoaded config.Loaded, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	snap, err := config.NewSnapshot(cfgLoaded.Config)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	store := config.NewStore(snap)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := config.Watch(runCtx, cfgLoaded.Path, store, logger); err != nil {
			logger.Warn("config watch unavailable", "error", err.Error())
		}
	}()

	recorder := audio.NewRecorder(logger, func() config.AudioConfig {
		return store.Snapshot().Config.Audio
	})

	transcriber := asr.New(
		os.Getenv("OPENAI_API_KEY"),
		cfgLoaded.Config.ASR.BaseURL,
		func() config.ASRConfig { return store.Snapshot().Config.ASR },
		logger,
	)

	var player dispatch.Player
	if p, perr := spotify.NewPlayerFromCache(runCtx, func() config.SpotifyConfig {
		return store.Snapshot().Config.Spotify
	}, logger); perr != nil {
		fmt.Fprintf(r.Stderr, "warning: spotify unavailable: %v\n", perr)
		logger.Warn("spotify unavailable; playback commands will fail", "error", perr.Error())
	} else {
		player = p
	}

	// The dispatcher is rebuilt per command so open_cmd edits apply on reload.
	dispatcher := session.DispatchFunc(func(dctx context.Context, cmd intent.Command) dispatch.Outcome {
		argv := store.Snapshot().Config.OpenCmd.Argv
		return dispatch.New(player, argv, logger).Dispatch(dctx, cmd)
	})

	fb := cfgLoaded.Config.Feedback
	notifier := feedback.NewDesktop(fb.AppName, fb.ErrorTimeoutMS, fb.Enable, logger)

	controller := session.NewController(logger, store, recorder, transcriber, dispatcher, notifier)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(runCtx, listener, controller)
	}()

	logger.Info("daemon listening", "socket", socketPath, "playlists", len(cfgLoaded.Config.Playlists))
	fmt.Fprintf(r.Stdout, "listening on %s\n", socketPath)

	runErr := controller.Run(runCtx)
	cancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
