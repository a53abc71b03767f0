package ipc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croon.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener, err := Acquire(ctx, path, 100*time.Millisecond, 2)
	require.NoError(t, err)

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			return Response{OK: true, State: "idle", Message: "got " + req.Command}
		}))
	}()

	resp, err := Send(ctx, path, Request{Command: "status"}, 500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "idle", resp.State)
	assert.Equal(t, "got status", resp.Message)

	cancel()
	require.NoError(t, <-serveDone)
}

func TestProbeWithNoListener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croon.sock")
	alive, err := Probe(context.Background(), path, 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestAcquireRejectsLiveOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croon.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener, err := Acquire(ctx, path, 100*time.Millisecond, 2)
	require.NoError(t, err)

	go func() {
		_ = Serve(ctx, listener, HandlerFunc(func(context.Context, Request) Response {
			return Response{OK: true, State: "idle"}
		}))
	}()

	// Give the server a moment to start accepting.
	time.Sleep(20 * time.Millisecond)

	_, err = Acquire(ctx, path, 200*time.Millisecond, 1)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquireReclaimsStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croon.sock")

	ctx := context.Background()

	first, err := Acquire(ctx, path, 100*time.Millisecond, 2)
	require.NoError(t, err)
	// Close without removing the socket file: simulates a crashed daemon.
	require.NoError(t, first.Close())

	second, err := Acquire(ctx, path, 100*time.Millisecond, 2)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}
