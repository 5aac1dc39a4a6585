// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

import "code.hybscloud.com/atomix"

// Deque is an unbounded work-stealing double-ended queue.
//
// Based on the Chase-Lev deque (SPAA 2005) over a growable [Ring]. One
// goroutine, the owner, pushes and pops at the bottom; any number of
// thieves steal from the top.
//
//   - Push and Pop are owner-only. Their common path touches no contended
//     atomic; a CAS is paid only when the owner and a thief race for the
//     last element.
//   - Steal is safe from any goroutine. A successful CAS on top is the only
//     way an element leaves through the top, so no element is handed out
//     twice.
//
// Invariant: bottom - top is the number of live elements. Size may
// transiently misreport to a racing thief.
//
// Growth publishes a new ring while thieves may still be reading the old
// one. The old ring is never written after it is replaced, and it holds
// every element in [top, bottom) at the time of the swap. A thief that
// observes a swap between reading bottom and reading its element re-reads
// top before attempting the CAS.
//
// Ordering: Pop publishes its bottom decrement with a swap, a full fence,
// before reading top, so an owner and a thief can never both see the same
// last element as uncontended. Thieves read top and then bottom with
// acquire loads, so bottom is never older than the top it is compared to.
type Deque[T any] struct {
	_      pad
	top    atomix.Int64 // Steal end; advanced only by CAS
	_      pad
	bottom atomix.Int64 // Owner end; written only by the owner
	_      pad
	ring   atomix.Pointer[Ring[T]]
}

// NewDeque creates a deque with initial capacity rounded up to the next
// power of 2. The deque grows by doubling as needed.
func NewDeque[T any](capacity int) *Deque[T] {
	d := &Deque[T]{}
	d.ring.StoreRelease(NewRing[T](capacity))
	return d
}

// Push adds elem at the bottom (owner only).
func (d *Deque[T]) Push(elem T) {
	b := d.bottom.LoadRelaxed()
	t := d.top.LoadAcquire()
	r := d.ring.LoadRelaxed()
	if b-t >= int64(r.Cap()) {
		r = r.Grow(t, b)
		d.ring.StoreRelease(r)
	}
	r.Set(b, elem)
	d.bottom.StoreRelease(b + 1)
}

// Pop removes and returns the most recently pushed element (owner only).
// Returns (zero-value, ErrWouldBlock) if the deque is empty or a thief won
// the race for the last element.
func (d *Deque[T]) Pop() (T, error) {
	b := d.bottom.LoadRelaxed() - 1
	r := d.ring.LoadRelaxed()
	// StoreLoad: the decrement must be visible before top is read.
	d.bottom.SwapAcqRel(b)
	t := d.top.LoadAcquire()

	var zero T
	if b < t {
		d.bottom.StoreRelease(t)
		return zero, ErrWouldBlock
	}

	elem := r.Get(b)
	if b > t {
		return elem, nil
	}

	// Last element: race thieves through top.
	won := d.top.CompareAndSwapAcqRel(t, t+1)
	d.bottom.StoreRelease(t + 1)
	if !won {
		return zero, ErrWouldBlock
	}
	return elem, nil
}

// Steal removes and returns the oldest element (any goroutine).
// Returns (zero-value, ErrWouldBlock) if the deque is empty or the CAS lost
// to another thief or the owner. Callers should try a different victim
// rather than spin on the same deque.
func (d *Deque[T]) Steal() (T, error) {
	var zero T
	t := d.top.LoadAcquire()
	b := d.bottom.LoadAcquire()
	if t >= b {
		return zero, ErrWouldBlock
	}

	r := d.ring.LoadAcquire()
	elem := r.Get(t)
	if d.ring.LoadAcquire() != r && d.top.LoadAcquire() != t {
		return zero, ErrWouldBlock
	}
	if !d.top.CompareAndSwapAcqRel(t, t+1) {
		return zero, ErrWouldBlock
	}
	return elem, nil
}

// Size returns a snapshot of the element count, never negative.
func (d *Deque[T]) Size() int {
	n := d.bottom.LoadAcquire() - d.top.LoadAcquire()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Cap returns the capacity of the current ring.
func (d *Deque[T]) Cap() int {
	return d.ring.LoadAcquire().Cap()
}

// Add pushes elem (owner only). Always returns nil.
func (d *Deque[T]) Add(elem T) error {
	d.Push(elem)
	return nil
}

// Get is Pop (owner only).
func (d *Deque[T]) Get() (T, error) {
	return d.Pop()
}

// IsEmpty reports whether the deque appeared empty.
func (d *Deque[T]) IsEmpty() bool {
	return d.Size() == 0
}

// Clear pops until empty (owner only).
func (d *Deque[T]) Clear() {
	for {
		if _, err := d.Pop(); err != nil {
			return
		}
	}
}
