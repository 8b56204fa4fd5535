// Package relay moves encoded frames from the network goroutine to the
// render loop.
//
// A Relay has exactly one producer and one consumer. Send never blocks.
// Frames come out in the order they went in. In unbounded mode (capacity 0)
// nothing is ever dropped; with a positive capacity only the newest frames
// are kept and older ones are discarded, since the overlay only ever shows
// the latest image.
package relay

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Send after the consumer has gone away, and by
// Recv once the relay is closed and drained.
var ErrClosed = errors.New("relay: closed")

// Frame is one encoded still image. Data must not be modified after Send.
type Frame struct {
	Data       []byte
	Seq        uint64
	ReceivedAt time.Time
}

// Stats is a snapshot of relay counters.
type Stats struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
	Queued   int
}

// Relay is a FIFO handoff between one producer and one consumer.
type Relay struct {
	mu       sync.Mutex
	queue    []Frame
	capacity int
	closed   bool
	seq      uint64
	received uint64
	dropped  uint64

	// ready holds a token while the queue may be non-empty.
	ready chan struct{}
	done  chan struct{}
}

// New creates a relay. capacity <= 0 means unbounded.
func New(capacity int) *Relay {
	if capacity < 0 {
		capacity = 0
	}
	return &Relay{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Send enqueues a frame. It returns ErrClosed if the consumer is gone.
func (r *Relay) Send(data []byte) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.seq++
	if r.capacity > 0 && len(r.queue) >= r.capacity {
		n := len(r.queue) - r.capacity + 1
		clear(r.queue[:n])
		r.queue = r.queue[n:]
		r.dropped += uint64(n)
	}
	r.queue = append(r.queue, Frame{Data: data, Seq: r.seq, ReceivedAt: time.Now()})
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
	return nil
}

// TryRecv pops the oldest queued frame without blocking.
func (r *Relay) TryRecv() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pop()
}

// Recv blocks until a frame is available, the relay is closed, or ctx is done.
func (r *Relay) Recv(ctx context.Context) (Frame, error) {
	for {
		r.mu.Lock()
		f, ok := r.pop()
		closed := r.closed
		r.mu.Unlock()
		if ok {
			return f, nil
		}
		if closed {
			return Frame{}, ErrClosed
		}

		select {
		case <-r.ready:
		case <-r.done:
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}
}

// pop must be called with mu held.
func (r *Relay) pop() (Frame, bool) {
	if len(r.queue) == 0 {
		return Frame{}, false
	}
	f := r.queue[0]
	r.queue[0] = Frame{}
	r.queue = r.queue[1:]
	r.received++
	if len(r.queue) > 0 {
		select {
		case r.ready <- struct{}{}:
		default:
		}
	}
	return f, true
}

// Close drops the consumer side. Pending frames are discarded and later
// Sends fail with ErrClosed. Close is idempotent.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.dropped += uint64(len(r.queue))
	r.queue = nil
	close(r.done)
}

// Stats returns current counters.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Sent:     r.seq,
		Received: r.received,
		Dropped:  r.dropped,
		Queued:   len(r.queue),
	}
}
