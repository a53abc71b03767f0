// Package fsm defines the push-to-talk capture lifecycle state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateDispatching  State = "dispatching"
)

const (
	EventDown       Event = "down"
	EventUp         Event = "up"
	EventTimeout    Event = "timeout"
	EventDiscard    Event = "discard"
	EventTranscript Event = "transcript"
	EventComplete   Event = "complete"
	EventFail       Event = "fail"
)

// Transition applies one event to the current state and returns the next.
// EventFail always lands back in StateIdle so no single-cycle failure can
// strand the pipeline outside of idle.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventDown:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventUp, EventTimeout:
			return StateTranscribing, nil
		case EventDiscard:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscript:
			return StateDispatching, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDispatching:
		switch event {
		case EventComplete:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
