package msgqueue

import (
	"sync"
	"sync/atomic"
)

// Queue is an unbounded FIFO connecting many producers to one consumer.
// In never blocks; Out yields values in insertion order. Close discards
// anything still pending and turns further In calls into no-ops.
type Queue[T any] struct {
	mu  sync.Mutex
	buf []T

	out    chan T
	wake   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	q := &Queue[T]{
		buf:  make([]T, 0, capacity),
		out:  make(chan T),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.pump()
	return q
}

// In appends v to the queue. Returns false once the queue is closed.
func (q *Queue[T]) In(v T) bool {
	if q.closed.Load() {
		return false
	}
	q.mu.Lock()
	q.buf = append(q.buf, v)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Out is the consumer side; closed after Close once the pump exits.
func (q *Queue[T]) Out() <-chan T { return q.out }

func (q *Queue[T]) Close() {
	if !q.closed.CompareAndSwap(false, true) {
		return
	}
	q.mu.Lock()
	q.buf = nil
	q.mu.Unlock()
	close(q.done)
}

func (q *Queue[T]) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.buf) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		v := q.buf[0]
		q.buf = q.buf[1:]
		q.mu.Unlock()

		select {
		case q.out <- v:
		case <-q.done:
			return
		}
	}
}
