package progress

import (
	"errors"
	"sync"
)

const defaultBufferSize = 64

// ErrConnectionClosed is returned by Send after Close.
var ErrConnectionClosed = errors.New("connection closed")

// ChanConnection is an in-process Connection backed by a buffered channel.
// Send never blocks: when the buffer is full the event is dropped, since
// a slow consumer must not stall the publisher.
type ChanConnection struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// NewChanConnection creates a connection with the given buffer size.
// A size <= 0 falls back to the default (64).
func NewChanConnection(size int) *ChanConnection {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &ChanConnection{ch: make(chan Event, size)}
}

// Send enqueues the event, dropping it when the buffer is full.
func (c *ChanConnection) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.ch <- event:
	default:
		// Buffer full - drop to prevent blocking
	}
	return nil
}

// Events returns the receive side of the connection.
func (c *ChanConnection) Events() <-chan Event {
	return c.ch
}

// Close shuts down the connection. Pending events remain readable.
func (c *ChanConnection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
