// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

import (
	"math/bits"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Bounded is a fixed-capacity multi-producer multi-consumer FIFO lane.
//
// A pipeline stage uses it as its alternate inbox: a short priority lane
// that workers drain before the shared inbox. Unlike the shared inbox it
// pushes back. Enqueue on a full lane returns ErrWouldBlock, and every
// refusal is counted so producers can see how hard the lane is pressed.
//
// Each slot carries a turn counter. On pass n over the ring (n = index /
// capacity), turn 2n means the slot is free for a producer and 2n+1 means it
// holds an item for a consumer. Indices are claimed by CAS on tail or head
// only when the slot's turn allows it, so a slot is never overwritten
// before its previous item was taken, and never read twice.
//
// Memory: one cache line per slot.
type Bounded[T any] struct {
	_     pad
	tail  atomix.Uint64 // next index to fill
	_     pad
	head  atomix.Uint64 // next index to take
	_     pad
	slots []laneSlot[T]
	mask  uint64
	shift int

	accepted atomix.Uint64
	rejected atomix.Uint64
}

type laneSlot[T any] struct {
	turn atomix.Uint64
	item T
	_    padShort
}

// NewBounded creates a lane with capacity rounded up to the next power of 2.
//
// Panics if capacity < 2.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 2 {
		panic("fdpipe: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &Bounded[T]{
		slots: make([]laneSlot[T], n),
		mask:  n - 1,
		shift: bits.TrailingZeros64(n),
	}
}

// Enqueue copies *elem into the lane.
// Returns ErrWouldBlock if the lane is full.
func (q *Bounded[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	tail := q.tail.LoadAcquire()
	for {
		slot := &q.slots[tail&q.mask]
		free := 2 * (tail >> q.shift)
		if slot.turn.LoadAcquire() != free {
			// Unchanged tail over an unfinished slot: the lane is full.
			prev := tail
			if tail = q.tail.LoadAcquire(); tail == prev {
				q.rejected.Add(1)
				return ErrWouldBlock
			}
			continue
		}
		if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
			slot.item = *elem
			slot.turn.StoreRelease(free + 1)
			q.accepted.Add(1)
			return nil
		}
		sw.Once()
		tail = q.tail.LoadAcquire()
	}
}

// Dequeue removes and returns the oldest item.
// Returns (zero-value, ErrWouldBlock) if the lane is empty.
func (q *Bounded[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	head := q.head.LoadAcquire()
	for {
		slot := &q.slots[head&q.mask]
		full := 2*(head>>q.shift) + 1
		if slot.turn.LoadAcquire() != full {
			prev := head
			if head = q.head.LoadAcquire(); head == prev {
				var zero T
				return zero, ErrWouldBlock
			}
			continue
		}
		if q.head.CompareAndSwapAcqRel(head, head+1) {
			elem := slot.item
			var zero T
			slot.item = zero
			slot.turn.StoreRelease(full + 1)
			return elem, nil
		}
		sw.Once()
		head = q.head.LoadAcquire()
	}
}

// Add enqueues elem. Returns ErrWouldBlock if the lane is full.
func (q *Bounded[T]) Add(elem T) error {
	return q.Enqueue(&elem)
}

// Get is Dequeue.
func (q *Bounded[T]) Get() (T, error) {
	return q.Dequeue()
}

// IsEmpty reports whether every claimed slot had been consumed at the time
// of the call.
func (q *Bounded[T]) IsEmpty() bool {
	return q.head.LoadAcquire() >= q.tail.LoadAcquire()
}

// Len returns a snapshot of the number of claimed, unconsumed slots.
func (q *Bounded[T]) Len() int {
	h := q.head.LoadAcquire()
	t := q.tail.LoadAcquire()
	if h >= t {
		return 0
	}
	return int(t - h)
}

// Clear dequeues until the lane is observed empty.
func (q *Bounded[T]) Clear() {
	for {
		if _, err := q.Dequeue(); err != nil {
			return
		}
	}
}

// Cap returns the lane capacity.
func (q *Bounded[T]) Cap() int {
	return len(q.slots)
}

// Accepted returns how many items Enqueue has taken in.
func (q *Bounded[T]) Accepted() uint64 {
	return q.accepted.Load()
}

// Rejected returns how many Enqueue calls found the lane full.
func (q *Bounded[T]) Rejected() uint64 {
	return q.rejected.Load()
}
