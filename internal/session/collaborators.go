package session

import (
	"context"
	"errors"

	"github.com/croonhq/croon/internal/dispatch"
	"github.com/croonhq/croon/internal/intent"
)

// ErrPipelineUnavailable indicates runtime capture/ASR wiring is missing.
var ErrPipelineUnavailable = errors.New("audio capture and transcription pipeline not wired")

// Capture is the raw audio produced by one recording phase.
type Capture struct {
	PCM    []byte
	Device string
	Bytes  int64
}

// Recorder abstracts the audio capture collaborator.
type Recorder interface {
	Start(context.Context) error
	Stop(context.Context) (Capture, error)
	Abort(context.Context) error
}

// Transcriber abstracts the speech-to-text collaborator. Implementations
// report errors; the session recovers them as an empty transcript.
type Transcriber interface {
	Transcribe(context.Context, []byte) (intent.Utterance, error)
}

// TranscribeFunc adapts a function to the Transcriber interface.
type TranscribeFunc func(context.Context, []byte) (intent.Utterance, error)

func (f TranscribeFunc) Transcribe(ctx context.Context, pcm []byte) (intent.Utterance, error) {
	return f(ctx, pcm)
}

// Dispatcher abstracts the automation-target collaborator.
type Dispatcher interface {
	Dispatch(context.Context, intent.Command) dispatch.Outcome
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(context.Context, intent.Command) dispatch.Outcome

func (f DispatchFunc) Dispatch(ctx context.Context, cmd intent.Command) dispatch.Outcome {
	return f(ctx, cmd)
}

// placeholderRecorder preserves session flow when no capture backend is wired.
type placeholderRecorder struct{}

func (placeholderRecorder) Start(context.Context) error { return nil }

func (placeholderRecorder) Stop(context.Context) (Capture, error) {
	return Capture{}, ErrPipelineUnavailable
}

func (placeholderRecorder) Abort(context.Context) error { return nil }
