// Package bus carries normalized events from the ingestion pipeline to the
// connection's sender.
package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/autobot-dev/autobot/internal/onebot"
)

// ErrClosed is returned by Push and Pop once the queue has been closed.
var ErrClosed = errors.New("event queue closed")

// Queue is an unbounded FIFO of events with a single producer and a single
// consumer. Push never blocks; Pop suspends until an event is available.
type Queue struct {
	mu     sync.Mutex
	items  []onebot.Event
	ready  chan struct{}
	done   chan struct{}
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Push appends e to the tail of the queue.
func (q *Queue) Push(e onebot.Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes and returns the head of the queue, waiting until one is
// pushed, the queue is closed, or ctx is done.
func (q *Queue) Pop(ctx context.Context) (onebot.Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}

		select {
		case <-q.ready:
		case <-q.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further pushes. Events already queued can still be popped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}
