// Package nexstarserial implements nexstar.Transport over a real serial
// port to the Celestron hand controller: a half-duplex, one-in-flight
// command/response exchange over a raw 8N1 line.
package nexstarserial

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// Transport opens a serial line to the hand controller: raw 8N1, no flow
// control, VMIN=0/VTIME=5 (500ms inter-byte timeout), one in-flight
// transaction at a time (guarded by mu, matching the half-duplex wire).
type Transport struct {
	port   serial.Port
	logger *zap.Logger
	mu     chan struct{} // 1-buffered channel used as a non-reentrant lock
}

// Open configures and opens the serial port at path with the given baud
// rate (default 9600 per the bridge's CLI).
func Open(path string, baud int, logger *zap.Logger) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("nexstarserial: open %s: %w", path, err)
	}

	// VMIN=0, VTIME=5 (500ms): return as soon as any data is available, or
	// after 500ms of silence, whichever comes first.
	if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("nexstarserial: set read timeout: %w", err)
	}

	t := &Transport{port: port, logger: logger.With(zap.String("component", "nexstarserial")), mu: make(chan struct{}, 1)}
	t.mu <- struct{}{}
	return t, nil
}

func (t *Transport) lock(ctx context.Context) error {
	select {
	case <-t.mu:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) unlock() {
	t.mu <- struct{}{}
}

// Exchange writes req in full, then reads until respLen bytes have been
// accumulated or a read returns zero bytes.
func (t *Transport) Exchange(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	if err := t.lock(ctx); err != nil {
		return nil, err
	}
	defer t.unlock()

	if _, err := t.port.Write(req); err != nil {
		return nil, fmt.Errorf("nexstarserial: write: %w", err)
	}

	resp := make([]byte, 0, respLen)
	buf := make([]byte, respLen)
	for len(resp) < respLen {
		n, err := t.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("nexstarserial: read: %w", err)
		}
		if n == 0 {
			t.logger.Warn("short read from hand controller",
				zap.Int("want", respLen), zap.Int("got", len(resp)))
			return resp, fmt.Errorf("nexstarserial: short read: got %d of %d bytes", len(resp), respLen)
		}
		resp = append(resp, buf[:n]...)
	}
	return resp, nil
}

// Close releases the serial port.
func (t *Transport) Close() error {
	return t.port.Close()
}
