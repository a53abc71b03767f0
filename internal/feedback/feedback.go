// Package feedback surfaces cycle state to the user via desktop notifications.
package feedback

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// stickyTimeoutMS keeps in-progress states visible until replaced.
	stickyTimeoutMS = 300000
	// resultTimeoutMS auto-dismisses success results quickly.
	resultTimeoutMS = 2500

	opTimeout = 400 * time.Millisecond
)

// Desktop sends replaceable freedesktop notifications for each cycle phase.
// One notification ID is reused for the whole cycle so the popup updates in
// place instead of stacking.
type Desktop struct {
	appName        string
	errorTimeoutMS int
	enabled        bool
	logger         *slog.Logger

	mu        sync.Mutex
	replaceID uint32
}

// NewDesktop builds a notifier. When enabled is false every call is a no-op.
func NewDesktop(appName string, errorTimeoutMS int, enabled bool, logger *slog.Logger) *Desktop {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = "croon"
	}
	if errorTimeoutMS <= 0 {
		errorTimeoutMS = 1600
	}
	return &Desktop{
		appName:        appName,
		errorTimeoutMS: errorTimeoutMS,
		enabled:        enabled,
		logger:         logger,
	}
}

// Recording shows the listening indicator.
func (d *Desktop) Recording(ctx context.Context) {
	d.show(ctx, "Listening...", stickyTimeoutMS)
}

// Transcribing shows the thinking indicator after the key is released.
func (d *Desktop) Transcribing(ctx context.Context) {
	d.show(ctx, "Thinking...", stickyTimeoutMS)
}

// Result shows a short-lived success message.
func (d *Desktop) Result(ctx context.Context, detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "Done"
	}
	d.show(ctx, detail, resultTimeoutMS)
}

// Error shows a failure message with the configured timeout.
func (d *Desktop) Error(ctx context.Context, message string) {
	if strings.TrimSpace(message) == "" {
		message = "Something went wrong"
	}
	d.show(ctx, message, d.errorTimeoutMS)
}

// Hide dismisses the current notification, if any.
func (d *Desktop) Hide(ctx context.Context) {
	if !d.enabled {
		return
	}

	d.mu.Lock()
	id := d.replaceID
	d.replaceID = 0
	d.mu.Unlock()

	if id == 0 {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := desktopDismiss(runCtx, id); err != nil {
		d.log("feedback dismiss failed", err)
	}
}

// show sends one replaceable notification and remembers its server ID.
func (d *Desktop) show(ctx context.Context, text string, timeoutMS int) {
	if !d.enabled {
		return
	}

	d.mu.Lock()
	replaceID := d.replaceID
	d.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	id, err := desktopNotify(runCtx, d.appName, replaceID, text, timeoutMS)
	if err != nil {
		d.log("feedback notify failed", err)
		return
	}

	d.mu.Lock()
	d.replaceID = id
	d.mu.Unlock()
}

// log emits debug-only feedback failures; a dead notification daemon must
// never break a command cycle.
func (d *Desktop) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
