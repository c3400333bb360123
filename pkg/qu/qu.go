package qu

import (
	"sync"
	"sync/atomic"
)

// C is your basic empty struct signalling channel, wrapped so that closing
// is idempotent and closed-ness can be observed without stealing a pending
// signal off the channel.
type C struct {
	c      chan struct{}
	o      *sync.Once
	closed *atomic.Bool
}

// T creates an unbuffered chan struct{} for trigger and quit signalling
// (momentary and breaker switches)
func T() C {
	return C{
		c:      make(chan struct{}),
		o:      new(sync.Once),
		closed: new(atomic.Bool),
	}
}

// Ts creates a buffered chan struct{} which is specifically intended for
// signalling without blocking, generally one is the size of buffer to be
// used, though there might be conceivable cases where the channel should
// accept more signals without blocking the caller
func Ts(n int) C {
	return C{
		c:      make(chan struct{}, n),
		o:      new(sync.Once),
		closed: new(atomic.Bool),
	}
}

// Q closes the channel, which makes it emit a nil every time it is selected.
// Closing more than once is harmless.
func (c C) Q() {
	if c.c == nil {
		return
	}
	c.o.Do(func() {
		c.closed.Store(true)
		close(c.c)
	})
}

// Signal sends struct{}{} on the channel which functions as a momentary
// switch, useful in pairs for stop/start
func (c C) Signal() {
	if c.IsClosed() {
		return
	}
	c.c <- struct{}{}
}

// Wait should be placed with a `<-` in a select case in addition to the
// channel variable name. The zero C carries a nil channel, which blocks
// forever in a select.
func (c C) Wait() <-chan struct{} { return c.c }

// IsClosed reports whether Q has been called. It never reads from the
// channel, so buffered signals stay where they are.
func (c C) IsClosed() bool {
	return c.c == nil || c.closed.Load()
}
