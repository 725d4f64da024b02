// Package sink delivers serialized frames to LED hardware.
package sink

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned when sending to a closed sink.
var ErrClosed = errors.New("sink closed")

// Sink is the interface for types that can output a frame of pixels.
type Sink interface {
	// Send outputs pix, three bytes per LED in wire order. offset is the
	// 0-based byte position in the output where pix starts. The sink must not
	// retain pix after Send returns.
	Send(offset int, pix []byte) error
	// Close releases the underlying device.
	Close() error
}

// Discard is a sink that drops every frame.
type Discard struct{}

var _ Sink = Discard{}

func (Discard) Send(int, []byte) error { return nil }
func (Discard) Close() error           { return nil }

type frame struct {
	offset int
	pix    []byte
}

// Async wraps a sink so that Send never blocks. Frames are handed to a
// background goroutine through a single slot; a frame sent while the slot is
// still full is dropped.
type Async struct {
	sink   Sink
	logger *slog.Logger

	frames chan frame
	pool   sync.Pool
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

var _ Sink = (*Async)(nil)

// NewAsync starts the goroutine that drains frames into s.
func NewAsync(s Sink, logger *slog.Logger) *Async {
	a := &Async{
		sink:   s,
		logger: logger,
		frames: make(chan frame, 1),
		done:   make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Async) loop() {
	defer close(a.done)

	for f := range a.frames {
		if err := a.sink.Send(f.offset, f.pix); err != nil {
			a.logger.Warn(
				"failed to send frame",
				"error", err)
		}
		a.pool.Put(f.pix[:0])
	}
}

// Send queues a copy of pix. It returns ErrClosed after Close.
func (a *Async) Send(offset int, pix []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	buf, _ := a.pool.Get().([]byte)
	f := frame{
		offset: offset,
		pix:    append(buf[:0], pix...),
	}

	select {
	case a.frames <- f:
	default:
		a.pool.Put(f.pix[:0])
		a.dropped++
		if a.dropped&(a.dropped-1) == 0 {
			a.logger.Debug(
				"output busy, dropping frames",
				"dropped", a.dropped)
		}
	}

	return nil
}

// Dropped returns the number of frames dropped so far.
func (a *Async) Dropped() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Close waits for the queued frame to be sent, then closes the wrapped sink.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.closed = true
	close(a.frames)
	a.mu.Unlock()

	<-a.done
	return a.sink.Close()
}
