// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

// Queue is the combined producer-consumer interface for a FIFO queue.
//
// Queue provides non-blocking Enqueue and Dequeue operations. Dequeue
// returns ErrWouldBlock when the queue is empty; Enqueue returns
// ErrWouldBlock only on bounded implementations that are full.
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
//
// Implementations: [LinkedQueue] (unbounded) and [Bounded].
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs. The
// queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, ErrWouldBlock if a bounded queue is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value. The queue drops its own reference so
// referenced objects can be garbage collected.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the queue (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)
}

// Container is the generic add/get contract shared by every collection in
// this package.
//
// Get signals emptiness through ErrWouldBlock rather than a sentinel value,
// so callers can tell "no item" apart from "item is nil".
//
// Add and Get carry the same thread-safety constraints as the underlying
// operations: on a [Deque], both are owner-only.
type Container[T any] interface {
	// Add inserts elem. Returns ErrWouldBlock only on bounded containers.
	Add(elem T) error

	// Get removes and returns the next element.
	// Returns (zero-value, ErrWouldBlock) if the container is empty.
	Get() (T, error)

	// IsEmpty reports whether the container appeared empty at the time of
	// the call. Concurrent operations may change the answer immediately.
	IsEmpty() bool

	// Clear discards every element currently held.
	Clear()
}

var (
	_ Queue[int]     = (*LinkedQueue[int])(nil)
	_ Queue[int]     = (*Bounded[int])(nil)
	_ Container[int] = (*LinkedQueue[int])(nil)
	_ Container[int] = (*Bounded[int])(nil)
	_ Container[int] = (*Deque[int])(nil)
)
