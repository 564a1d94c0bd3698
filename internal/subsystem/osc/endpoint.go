// Package osc owns the UDP socket used for OSC I/O. Message encoding is
// out of scope; the endpoint moves raw packets.
package osc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/registry"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:9000"

var (
	ErrSuspended = errors.New("osc endpoint suspended")
	ErrClosed    = errors.New("osc endpoint closed")
)

// Endpoint is the OSC I/O subsystem.
type Endpoint struct {
	logger *slog.Logger

	mu     sync.Mutex
	addr   string // resolved listen address, reused on resume
	conn   net.PacketConn
	closed bool
}

// New binds a UDP socket on addr.
func New(ctx context.Context, addr string, logger *slog.Logger) (*Endpoint, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = logging.Default()
	}

	conn, err := listen(ctx, addr)
	if err != nil {
		return nil, err
	}
	e := &Endpoint{logger: logger, addr: conn.LocalAddr().String(), conn: conn}
	logger.Debug("osc endpoint bound", logging.Subsystem(string(registry.OSC)), slog.String("addr", e.addr))
	return e, nil
}

// Factory returns a registry factory for an endpoint on addr.
func Factory(addr string, logger *slog.Logger) registry.Factory {
	return func(ctx context.Context) (registry.Subsystem, error) {
		return New(ctx, addr, logger)
	}
}

func listen(ctx context.Context, addr string) (net.PacketConn, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind osc %s: %w", addr, err)
	}
	return conn, nil
}

// Addr returns the bound address.
func (e *Endpoint) Addr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addr
}

// Listening reports whether the socket is bound.
func (e *Endpoint) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn != nil
}

// Send writes one packet to the destination address.
func (e *Endpoint) Send(p []byte, to string) error {
	e.mu.Lock()
	conn, closed := e.conn, e.closed
	e.mu.Unlock()

	switch {
	case closed:
		return ErrClosed
	case conn == nil:
		return ErrSuspended
	}

	dst, err := net.ResolveUDPAddr("udp", to)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", to, err)
	}
	if _, err := conn.WriteTo(p, dst); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}

// Receive reads one packet into p.
func (e *Endpoint) Receive(p []byte) (int, net.Addr, error) {
	e.mu.Lock()
	conn, closed := e.conn, e.closed
	e.mu.Unlock()

	switch {
	case closed:
		return 0, nil, ErrClosed
	case conn == nil:
		return 0, nil, ErrSuspended
	}
	return conn.ReadFrom(p)
}

// Suspend releases the socket. Pending reads return an error.
func (e *Endpoint) Suspend(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

// Resume rebinds the socket on the same address.
func (e *Endpoint) Resume(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.conn != nil {
		return nil
	}
	conn, err := listen(ctx, e.addr)
	if err != nil {
		return err
	}
	e.conn = conn
	return nil
}

// Close releases the socket for good.
func (e *Endpoint) Close(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}
