// Package ringbuffer provides a bounded FIFO between one real-time producer
// and a blocking consumer.
package ringbuffer

import "sync"

// RingBuffer is a concurrent-safe ring buffer. Writes never block: when the
// buffer is full the oldest samples are overwritten. Reads block until enough
// data is available or the buffer is closed.
type RingBuffer[T any] struct {
	buf     []T
	start   int // index of the oldest element
	count   int
	dropped int64
	closed  bool
	mu      sync.Mutex
	cond    *sync.Cond
}

// New creates a RingBuffer holding up to size elements.
func New[T any](size int) *RingBuffer[T] {
	rb := &RingBuffer[T]{buf: make([]T, size)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Len returns the number of buffered elements.
func (rb *RingBuffer[T]) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Dropped returns how many elements were overwritten before being read.
func (rb *RingBuffer[T]) Dropped() int64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.dropped
}

// Write appends data, overwriting the oldest elements if it does not fit.
// Writing to a closed buffer is a programming error and panics.
func (rb *RingBuffer[T]) Write(data []T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		panic("ringbuffer: write to closed buffer")
	}
	size := len(rb.buf)
	if size == 0 {
		return
	}
	if len(data) > size {
		rb.dropped += int64(len(data) - size)
		data = data[len(data)-size:]
	}
	if over := rb.count + len(data) - size; over > 0 {
		rb.start = (rb.start + over) % size
		rb.count -= over
		rb.dropped += int64(over)
	}

	end := (rb.start + rb.count) % size
	n := copy(rb.buf[end:], data)
	copy(rb.buf, data[n:])
	rb.count += len(data)
	rb.cond.Broadcast()
}

// Read returns up to n elements, blocking until n are available. After Close
// it returns whatever is left, and nil once the buffer is empty.
func (rb *RingBuffer[T]) Read(n int) []T {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for !rb.closed && rb.count < n {
		rb.cond.Wait()
	}
	return rb.take(n)
}

// TryRead returns up to n elements without blocking, or nil if empty.
func (rb *RingBuffer[T]) TryRead(n int) []T {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.take(n)
}

func (rb *RingBuffer[T]) take(n int) []T {
	n = min(n, rb.count)
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	k := copy(out, rb.buf[rb.start:min(rb.start+n, len(rb.buf))])
	copy(out[k:], rb.buf[:n-k])
	rb.start = (rb.start + n) % len(rb.buf)
	rb.count -= n
	return out
}

// Close marks the end of the stream and wakes all waiting readers.
func (rb *RingBuffer[T]) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
