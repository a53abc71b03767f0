// Package session coordinates the push-to-talk lifecycle: capture,
// transcription, intent resolution, and dispatch, one cycle at a time.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/croonhq/croon/internal/config"
	"github.com/croonhq/croon/internal/dispatch"
	"github.com/croonhq/croon/internal/fsm"
	"github.com/croonhq/croon/internal/intent"
	"github.com/croonhq/croon/internal/ipc"
)

// SnapshotSource provides the immutable config/vocabulary view for one cycle.
type SnapshotSource interface {
	Snapshot() *config.Snapshot
}

// Result is the complete lifecycle output of one push-to-talk cycle.
type Result struct {
	CycleID        string
	State          fsm.State
	Transcript     string
	Command        intent.Command
	Outcome        dispatch.Outcome
	Discarded      bool
	Cancelled      bool
	TranscribeFail bool
	Err            error
	Device         string
	BytesCaptured  int64
	HeldFor        time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Controller enforces the single-in-flight-command invariant: exactly one
// cycle runs at a time, one further press may queue behind it, and any press
// beyond that is dropped.
type Controller struct {
	logger      *slog.Logger
	snapshots   SnapshotSource
	recorder    Recorder
	transcriber Transcriber
	dispatcher  Dispatcher
	notifier    Notifier

	mu            sync.RWMutex
	state         fsm.State
	releasedEarly bool // queued press released before its cycle started

	downs   chan struct{} // pending press queue, depth 1
	ups     chan struct{}
	cancels chan struct{}
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	snapshots SnapshotSource,
	recorder Recorder,
	transcriber Transcriber,
	dispatcher Dispatcher,
	notifier Notifier,
) *Controller {
	if recorder == nil {
		recorder = placeholderRecorder{}
	}
	if transcriber == nil {
		transcriber = TranscribeFunc(func(context.Context, []byte) (intent.Utterance, error) {
			return intent.Utterance{}, ErrPipelineUnavailable
		})
	}
	if dispatcher == nil {
		dispatcher = DispatchFunc(func(context.Context, intent.Command) dispatch.Outcome {
			return dispatch.Outcome{Status: dispatch.StatusFailed, Reason: "dispatcher not wired"}
		})
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &Controller{
		logger:      logger,
		snapshots:   snapshots,
		recorder:    recorder,
		transcriber: transcriber,
		dispatcher:  dispatcher,
		notifier:    notifier,
		state:       fsm.StateIdle,
		downs:       make(chan struct{}, 1),
		ups:         make(chan struct{}, 1),
		cancels:     make(chan struct{}, 1),
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// failToIdle forces the state machine back to idle after a cycle failure.
func (c *Controller) failToIdle() {
	_ = c.transition(fsm.EventFail)
}

// Run serves press cycles until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.downs:
			result := c.cycle(ctx)
			c.logResult(result)
		}
	}
}

// cycle executes one full press-to-dispatch lifecycle and always leaves the
// controller idle.
func (c *Controller) cycle(ctx context.Context) Result {
	result := Result{CycleID: uuid.NewString(), StartedAt: time.Now()}
	finish := func() Result {
		result.State = c.State()
		result.FinishedAt = time.Now()
		return result
	}

	snap := c.snapshots.Snapshot()
	cfg := snap.Config

	// Stale release/cancel events from an earlier cycle must not leak in.
	c.drainPhaseEvents()

	// A press released while it sat behind the previous cycle is already
	// over; recording ambient audio after the fact would dispatch noise.
	if c.takeEarlyRelease() {
		result.Discarded = true
		return finish()
	}

	if err := c.transition(fsm.EventDown); err != nil {
		result.Err = err
		return finish()
	}
	c.notifier.Recording(ctx)

	if err := c.recorder.Start(ctx); err != nil {
		c.notifier.Error(ctx, "Microphone unavailable")
		c.failToIdle()
		result.Err = fmt.Errorf("start capture: %w", err)
		return finish()
	}

	pressedAt := time.Now()
	maxTimer := time.NewTimer(cfg.Recording.MaxDuration())
	defer maxTimer.Stop()

	var stopEvent fsm.Event
	select {
	case <-ctx.Done():
		_ = c.recorder.Abort(context.Background())
		c.notifier.Hide(context.Background())
		c.failToIdle()
		result.Err = ctx.Err()
		return finish()
	case <-c.cancels:
		_ = c.recorder.Abort(ctx)
		_ = c.transition(fsm.EventDiscard)
		c.notifier.Hide(ctx)
		result.Cancelled = true
		return finish()
	case <-c.ups:
		result.HeldFor = time.Since(pressedAt)
		if result.HeldFor < cfg.Recording.MinDuration() {
			// Key bounce: discard without ever touching the transcriber.
			_ = c.recorder.Abort(ctx)
			_ = c.transition(fsm.EventDiscard)
			c.notifier.Hide(ctx)
			result.Discarded = true
			return finish()
		}
		stopEvent = fsm.EventUp
	case <-maxTimer.C:
		result.HeldFor = time.Since(pressedAt)
		stopEvent = fsm.EventTimeout
	}

	if err := c.transition(stopEvent); err != nil {
		c.failToIdle()
		result.Err = err
		return finish()
	}
	c.notifier.Transcribing(ctx)

	capture, err := c.recorder.Stop(ctx)
	result.Device = capture.Device
	result.BytesCaptured = capture.Bytes
	if err != nil {
		c.notifier.Error(ctx, "Audio capture failed")
		c.failToIdle()
		result.Err = fmt.Errorf("stop capture: %w", err)
		return finish()
	}

	// Transcription failure degrades to an empty transcript; the cycle
	// continues so the user still gets a distinguishable feedback event.
	var utt intent.Utterance
	if len(capture.PCM) > 0 {
		transcribed, terr := c.transcriber.Transcribe(ctx, capture.PCM)
		if terr != nil {
			result.TranscribeFail = true
			result.Err = terr
		} else {
			utt = transcribed
		}
	}
	result.Transcript = utt.Text

	if err := c.transition(fsm.EventTranscript); err != nil {
		c.failToIdle()
		result.Err = err
		return finish()
	}

	cmd := intent.Resolve(utt, snap.Vocab)
	result.Command = cmd

	outcome := c.dispatcher.Dispatch(ctx, cmd)
	result.Outcome = outcome

	switch {
	case result.TranscribeFail:
		c.notifier.Error(ctx, "Speech recognition failed")
	case outcome.Status == dispatch.StatusSuccess:
		c.notifier.Result(ctx, outcome.Detail)
	case outcome.Status == dispatch.StatusNotApplicable:
		c.notifier.Error(ctx, "Didn't catch that")
	default:
		c.notifier.Error(ctx, outcome.Reason)
	}

	if err := c.transition(fsm.EventComplete); err != nil {
		c.failToIdle()
		if result.Err == nil {
			result.Err = err
		}
	}
	return finish()
}

// takeEarlyRelease reports whether the press about to start was released
// while still queued, clearing the mark.
func (c *Controller) takeEarlyRelease() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	released := c.releasedEarly
	c.releasedEarly = false
	return released
}

// markEarlyRelease records that the queued press has already been released.
func (c *Controller) markEarlyRelease() {
	c.mu.Lock()
	c.releasedEarly = true
	c.mu.Unlock()
}

// drainPhaseEvents clears stale up/cancel events before a new cycle starts.
func (c *Controller) drainPhaseEvents() {
	for {
		select {
		case <-c.ups:
		case <-c.cancels:
		default:
			return
		}
	}
}

// Handle serves IPC commands for the running daemon.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: string(c.State()), Message: "status"}
	case "down":
		return c.requestDown()
	case "up":
		return c.requestUp()
	case "cancel":
		return c.requestCancel()
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// requestDown enqueues a press; one press may wait behind the active cycle,
// anything beyond that is dropped.
func (c *Controller) requestDown() ipc.Response {
	state := c.State()
	select {
	case c.downs <- struct{}{}:
		if state == fsm.StateIdle {
			return ipc.Response{OK: true, State: string(state), Message: "recording"}
		}
		return ipc.Response{OK: true, State: string(state), Message: "press queued"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "press dropped"}
	}
}

// requestUp signals hotkey release for the active recording. A release for a
// press still waiting in the queue marks it so the queued cycle is discarded
// instead of recording until the duration cap.
func (c *Controller) requestUp() ipc.Response {
	state := c.State()
	if state == fsm.StateRecording {
		select {
		case c.ups <- struct{}{}:
			return ipc.Response{OK: true, State: string(state), Message: "stop requested"}
		default:
			return ipc.Response{OK: true, State: string(state), Message: "stop already requested"}
		}
	}

	if len(c.downs) > 0 {
		c.markEarlyRelease()
		return ipc.Response{OK: true, State: string(state), Message: "queued press released"}
	}

	return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot stop from state %s", state)}
}

// requestCancel discards the active recording without transcription. A cancel
// aimed at a queued press discards that press the same way.
func (c *Controller) requestCancel() ipc.Response {
	state := c.State()
	if state == fsm.StateRecording {
		select {
		case c.cancels <- struct{}{}:
			return ipc.Response{OK: true, State: string(state), Message: "cancel requested"}
		default:
			return ipc.Response{OK: true, State: string(state), Message: "cancel already requested"}
		}
	}

	if len(c.downs) > 0 {
		c.markEarlyRelease()
		return ipc.Response{OK: true, State: string(state), Message: "queued press cancelled"}
	}

	return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot cancel from state %s", state)}
}

// logResult records one cycle outcome in structured form.
func (c *Controller) logResult(result Result) {
	if c.logger == nil {
		return
	}
	fields := []any{
		"cycle_id", result.CycleID,
		"state", result.State,
		"discarded", result.Discarded,
		"cancelled", result.Cancelled,
		"held_ms", result.HeldFor.Milliseconds(),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"device", result.Device,
		"bytes_captured", result.BytesCaptured,
		"transcript_length", len(result.Transcript),
		"command", result.Command.String(),
		"outcome", result.Outcome.Status.String(),
	}

	if result.Err != nil {
		c.logger.Error("cycle failed", append(fields, "error", result.Err.Error())...)
		return
	}
	c.logger.Info("cycle complete", fields...)
}
