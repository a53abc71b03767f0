package session

import "context"

// Notifier is the session-facing subset of user feedback behavior.
type Notifier interface {
	Recording(context.Context)
	Transcribing(context.Context)
	Result(context.Context, string)
	Error(context.Context, string)
	Hide(context.Context)
}

// noopNotifier preserves session flow when no feedback backend is wired.
type noopNotifier struct{}

func (noopNotifier) Recording(context.Context)      {}
func (noopNotifier) Transcribing(context.Context)   {}
func (noopNotifier) Result(context.Context, string) {}
func (noopNotifier) Error(context.Context, string)  {}
func (noopNotifier) Hide(context.Context)           {}
