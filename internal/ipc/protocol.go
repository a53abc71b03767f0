// Package ipc carries hotkey and control events to the listening daemon over
// a unix socket, one JSON line per request.
package ipc

// Request is one command sent to the daemon.
type Request struct {
	Command string `json:"command"`
}

// Response reports command handling plus the daemon's current state.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
