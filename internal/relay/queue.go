package relay

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Sink is the write side of a non-blocking descriptor.
//
// Write follows io.Writer semantics except that a short count with a
// would-block error is normal.
type Sink interface {
	Write(p []byte) (int, error)
}

// OutboundQueue is an ordered, non-blocking write buffer for one descriptor.
//
// Chunks are copied on Enqueue and written strictly in order. A chunk is
// dropped only once fully written; a partial write leaves its unwritten
// suffix at the front. The queue is not safe for concurrent use; it belongs
// to the event loop.
type OutboundQueue struct {
	sink     Sink
	onFail   func(error)
	chunks   [][]byte
	buffered int
	written  uint64
	err      error
}

// NewOutboundQueue returns an empty queue writing to sink. onFail is called
// once with the cause of the first non-transient write error.
func NewOutboundQueue(sink Sink, onFail func(error)) *OutboundQueue {
	if onFail == nil {
		onFail = func(error) {}
	}
	return &OutboundQueue{sink: sink, onFail: onFail}
}

// Enqueue appends a copy of b and attempts an immediate flush.
// It never blocks. Empty input is ignored.
func (q *OutboundQueue) Enqueue(b []byte) error {
	if q.err != nil {
		return ErrQueueBroken
	}
	if len(b) == 0 {
		return nil
	}
	chunk := make([]byte, len(b))
	copy(chunk, b)
	q.chunks = append(q.chunks, chunk)
	q.buffered += len(chunk)
	q.TryFlush()
	return nil
}

// TryFlush writes as much as the sink accepts without blocking.
// It returns true when the queue is empty afterwards.
func (q *OutboundQueue) TryFlush() bool {
	if q.err != nil {
		return false
	}
	for len(q.chunks) > 0 {
		front := q.chunks[0]
		n, err := q.sink.Write(front)
		if n < 0 {
			n = 0
		}
		if n > len(front) {
			n = len(front)
		}
		if n > 0 {
			q.buffered -= n
			q.written += uint64(n)
			if n < len(front) {
				q.chunks[0] = front[n:]
				return false
			}
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]
		}
		if err != nil {
			if WouldBlock(err) {
				return false
			}
			q.err = err
			q.onFail(err)
			return false
		}
		if n == 0 {
			// Zero progress without an error; wait for the next writable event.
			return false
		}
	}
	q.chunks = nil
	return true
}

// Empty reports whether nothing is waiting to be written.
func (q *OutboundQueue) Empty() bool {
	return len(q.chunks) == 0
}

// Len returns the number of pending chunks.
func (q *OutboundQueue) Len() int {
	return len(q.chunks)
}

// Buffered returns the number of pending bytes.
func (q *OutboundQueue) Buffered() int {
	return q.buffered
}

// Written returns the total number of bytes accepted by the sink.
func (q *OutboundQueue) Written() uint64 {
	return q.written
}

// Err returns the write error that broke the queue, if any.
func (q *OutboundQueue) Err() error {
	return q.err
}

// WouldBlock reports whether err from a non-blocking read or write means
// "try again on the next readiness event" rather than failure.
func WouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINTR)
}
