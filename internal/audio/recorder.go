package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/croonhq/croon/internal/config"
	"github.com/croonhq/croon/internal/session"
)

// Recorder adapts Pulse capture to the session lifecycle: one clip per
// Start/Stop pair, device preferences re-read on every Start so a config
// reload takes effect on the next press.
type Recorder struct {
	logger *slog.Logger
	prefs  func() config.AudioConfig

	mu      sync.Mutex
	capture *Capture
}

// NewRecorder constructs a Pulse-backed recorder. prefs is consulted on every
// Start to pick up reloaded device preferences.
func NewRecorder(logger *slog.Logger, prefs func() config.AudioConfig) *Recorder {
	return &Recorder{logger: logger, prefs: prefs}
}

// Start resolves the input device and opens a capture stream.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capture != nil {
		return errors.New("capture already in progress")
	}

	audioCfg := r.prefs()
	selection, err := SelectDevice(ctx, audioCfg.Input, audioCfg.Fallback)
	if err != nil {
		return err
	}
	if selection.Warning != "" && r.logger != nil {
		r.logger.Warn(selection.Warning)
	}

	capture, err := StartCapture(ctx, selection.Device)
	if err != nil {
		return err
	}
	r.capture = capture
	return nil
}

// Stop ends the capture and hands the buffered clip back.
func (r *Recorder) Stop(_ context.Context) (session.Capture, error) {
	r.mu.Lock()
	capture := r.capture
	r.capture = nil
	r.mu.Unlock()

	if capture == nil {
		return session.Capture{}, session.ErrPipelineUnavailable
	}

	if err := capture.Stop(); err != nil {
		return session.Capture{}, fmt.Errorf("stop pulse stream: %w", err)
	}

	return session.Capture{
		PCM:    capture.RawPCM(),
		Device: capture.Device().Describe(),
		Bytes:  capture.BytesCaptured(),
	}, nil
}

// Abort ends the capture and discards the clip.
func (r *Recorder) Abort(_ context.Context) error {
	r.mu.Lock()
	capture := r.capture
	r.capture = nil
	r.mu.Unlock()

	if capture == nil {
		return nil
	}
	return capture.Stop()
}
