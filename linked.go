// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// LinkedQueue is an unbounded multi-producer multi-consumer FIFO queue.
//
// Based on the Michael & Scott non-blocking queue (PODC 1996). The queue is
// a singly-linked list with a permanent dummy node at head: head never holds
// a live value, and tail is always reachable from head through next links.
// A thread that observes a lagging tail helps advance it before retrying,
// which makes both operations lock-free and linearizable.
//
// Enqueue never fails. Dequeue returns ErrWouldBlock when the queue is
// empty.
//
// Memory: one heap node per element.
type LinkedQueue[T any] struct {
	_    pad
	head atomix.Pointer[linkedNode[T]] // Dummy; consumers CAS here
	_    pad
	tail atomix.Pointer[linkedNode[T]] // Last or second-to-last node
	_    pad
}

type linkedNode[T any] struct {
	value T
	next  atomix.Pointer[linkedNode[T]]
}

// NewLinkedQueue creates an empty unbounded queue.
func NewLinkedQueue[T any]() *LinkedQueue[T] {
	q := &LinkedQueue[T]{}
	dummy := &linkedNode[T]{}
	q.head.StoreRelease(dummy)
	q.tail.StoreRelease(dummy)
	return q
}

// Enqueue appends a copy of *elem to the queue. Always returns nil.
func (q *LinkedQueue[T]) Enqueue(elem *T) error {
	n := &linkedNode[T]{value: *elem}
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		next := tail.next.LoadAcquire()
		if tail != q.tail.LoadAcquire() {
			continue
		}
		if next != nil {
			// Tail is stale: help the other producer finish.
			q.tail.CompareAndSwapAcqRel(tail, next)
			continue
		}
		if tail.next.CompareAndSwapAcqRel(nil, n) {
			// Best effort; a racing thread may swing tail for us.
			q.tail.CompareAndSwapAcqRel(tail, n)
			return nil
		}
		sw.Once()
	}
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *LinkedQueue[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()
		next := head.next.LoadAcquire()
		if head != q.head.LoadAcquire() {
			continue
		}
		if next == nil {
			var zero T
			return zero, ErrWouldBlock
		}
		if head == tail {
			q.tail.CompareAndSwapAcqRel(tail, next)
			continue
		}
		elem := next.value
		if q.head.CompareAndSwapAcqRel(head, next) {
			// next is the new dummy; drop its reference for the GC.
			var zero T
			next.value = zero
			return elem, nil
		}
		sw.Once()
	}
}

// Add appends elem. Always returns nil.
func (q *LinkedQueue[T]) Add(elem T) error {
	return q.Enqueue(&elem)
}

// Get is Dequeue.
func (q *LinkedQueue[T]) Get() (T, error) {
	return q.Dequeue()
}

// IsEmpty reports whether the queue held no element at the time of the call.
func (q *LinkedQueue[T]) IsEmpty() bool {
	return q.head.LoadAcquire().next.LoadAcquire() == nil
}

// Clear dequeues until the queue is observed empty.
// Elements enqueued concurrently with Clear may survive it.
func (q *LinkedQueue[T]) Clear() {
	for {
		if _, err := q.Dequeue(); err != nil {
			return
		}
	}
}
