package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StateIdle

	next, err := Transition(s, EventDown)
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventUp)
	require.NoError(t, err)
	require.Equal(t, StateTranscribing, next)

	next, err = Transition(next, EventTranscript)
	require.NoError(t, err)
	require.Equal(t, StateDispatching, next)

	next, err = Transition(next, EventComplete)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionTimeoutForcesTranscribing(t *testing.T) {
	next, err := Transition(StateRecording, EventTimeout)
	require.NoError(t, err)
	require.Equal(t, StateTranscribing, next)
}

func TestTransitionDiscardReturnsIdle(t *testing.T) {
	next, err := Transition(StateRecording, EventDiscard)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionFailFromAnyStateReturnsIdle(t *testing.T) {
	states := []State{StateIdle, StateRecording, StateTranscribing, StateDispatching}
	for _, state := range states {
		next, err := Transition(state, EventFail)
		require.NoError(t, err)
		require.Equal(t, StateIdle, next)
	}
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "idle up invalid", state: StateIdle, event: EventUp, want: StateIdle, wantErr: true},
		{name: "idle discard invalid", state: StateIdle, event: EventDiscard, want: StateIdle, wantErr: true},
		{name: "idle complete invalid", state: StateIdle, event: EventComplete, want: StateIdle, wantErr: true},
		{name: "recording down invalid", state: StateRecording, event: EventDown, want: StateRecording, wantErr: true},
		{name: "recording transcript invalid", state: StateRecording, event: EventTranscript, want: StateRecording, wantErr: true},
		{name: "transcribing down invalid", state: StateTranscribing, event: EventDown, want: StateTranscribing, wantErr: true},
		{name: "transcribing up invalid", state: StateTranscribing, event: EventUp, want: StateTranscribing, wantErr: true},
		{name: "dispatching down invalid", state: StateDispatching, event: EventDown, want: StateDispatching, wantErr: true},
		{name: "dispatching transcript invalid", state: StateDispatching, event: EventTranscript, want: StateDispatching, wantErr: true},
		{name: "dispatching complete valid", state: StateDispatching, event: EventComplete, want: StateIdle, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventDown)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}
