// Package queue provides the path queue between the crawler and the workers.
//
// The queue is split into two capability handles: a Producer held by the
// single crawler and a Consumer shared by the workers. Pop blocks until a
// path arrives or the producer closes and the queue drains, so a worker
// never has to poll a separate "finished" flag.
package queue

import (
	"context"
	"errors"
	"sync"
)

// DefaultCapacity is the buffer size used when New is given a non-positive one.
const DefaultCapacity = 1024

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("queue closed")

// Queue is a FIFO of pending paths.
type Queue struct {
	ch chan string

	mu     sync.RWMutex // guards closed against in-flight pushes
	closed bool
}

// New creates a queue buffering up to capacity paths.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan string, capacity)}
}

// Producer returns the write end.
func (q *Queue) Producer() *Producer {
	return &Producer{q: q}
}

// Consumer returns the read end.
func (q *Queue) Consumer() *Consumer {
	return &Consumer{q: q}
}

// Producer is the write end of a Queue.
type Producer struct {
	q *Queue
}

// Push appends path, blocking while the buffer is full.
// It returns ctx.Err() if ctx ends first and ErrClosed after Close.
func (p *Producer) Push(ctx context.Context, path string) error {
	p.q.mu.RLock()
	defer p.q.mu.RUnlock()

	if p.q.closed {
		return ErrClosed
	}

	select {
	case p.q.ch <- path:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals that no more paths will be pushed.
// It waits for in-flight pushes and is safe to call more than once.
func (p *Producer) Close() {
	p.q.mu.Lock()
	defer p.q.mu.Unlock()

	if p.q.closed {
		return
	}
	p.q.closed = true
	close(p.q.ch)
}

// Consumer is the read end of a Queue. It is safe for concurrent use.
type Consumer struct {
	q *Queue
}

// Pop returns the next path. ok is false once the producer has closed and
// every buffered path has been taken, or when ctx ends.
func (c *Consumer) Pop(ctx context.Context) (path string, ok bool) {
	select {
	case path, ok = <-c.q.ch:
		return path, ok
	case <-ctx.Done():
		return "", false
	}
}
