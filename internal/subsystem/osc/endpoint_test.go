package osc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klauern/pdparty/internal/logging"
)

func newEndpoint(t *testing.T) *Endpoint {
	t.Helper()
	e, err := New(context.Background(), "127.0.0.1:0", logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func TestSendReceive(t *testing.T) {
	a := newEndpoint(t)
	b := newEndpoint(t)

	require.NoError(t, a.Send([]byte("/tempo 120"), b.Addr()))

	buf := make([]byte, 64)
	done := make(chan struct{})
	var n int
	var from net.Addr
	var err error
	go func() {
		defer close(done)
		n, from, err = b.Receive(buf)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for packet")
	}
	require.NoError(t, err)
	assert.Equal(t, "/tempo 120", string(buf[:n]))
	assert.Equal(t, a.Addr(), from.String())
}

func TestSuspendResume_KeepsAddress(t *testing.T) {
	ctx := context.Background()
	e := newEndpoint(t)
	addr := e.Addr()

	require.NoError(t, e.Suspend(ctx))
	assert.False(t, e.Listening())
	assert.ErrorIs(t, e.Send([]byte("x"), addr), ErrSuspended)
	_, _, err := e.Receive(make([]byte, 1))
	assert.ErrorIs(t, err, ErrSuspended)

	require.NoError(t, e.Suspend(ctx), "second suspend is a no-op")

	require.NoError(t, e.Resume(ctx))
	assert.True(t, e.Listening())
	assert.Equal(t, addr, e.Addr())
	require.NoError(t, e.Resume(ctx), "resume while listening is a no-op")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	e := newEndpoint(t)

	require.NoError(t, e.Close(ctx))
	require.NoError(t, e.Close(ctx))
	assert.False(t, e.Listening())
	assert.ErrorIs(t, e.Send([]byte("x"), "127.0.0.1:9"), ErrClosed)
	assert.ErrorIs(t, e.Suspend(ctx), ErrClosed)
	assert.ErrorIs(t, e.Resume(ctx), ErrClosed)
}

func TestNew_BindFailure(t *testing.T) {
	_, err := New(context.Background(), "256.0.0.1:0", logging.Discard())
	require.Error(t, err)
	assert.ErrorContains(t, err, "bind osc")
}

func TestFactory(t *testing.T) {
	sub, err := Factory("127.0.0.1:0", logging.Discard())(context.Background())
	require.NoError(t, err)
	ep, ok := sub.(*Endpoint)
	require.True(t, ok)
	assert.True(t, ep.Listening())
	require.NoError(t, sub.Close(context.Background()))
}
