package sink

import (
	"roomchat/domain/event"
	"sync"
)

// ConnectionSink buffers outbound frames for one connection until its
// writer drains them. It never blocks the sender: a full buffer drops the
// frame, a closed sink refuses it.
type ConnectionSink struct {
	mu     sync.Mutex
	out    chan event.Outbound
	closed bool
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ConnectionSink{out: make(chan event.Outbound, bufferSize)}
}

func (c *ConnectionSink) Send(out event.Outbound) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- out:
		return true
	default:
		return false
	}
}

// Close is idempotent. Frames already buffered stay readable.
func (c *ConnectionSink) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

// Out is drained by the connection writer. It is closed after Close.
func (c *ConnectionSink) Out() <-chan event.Outbound {
	return c.out
}
