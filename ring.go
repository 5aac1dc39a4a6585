// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

// Ring is a fixed-capacity circular store addressed by logical index.
//
// Capacity is always a power of two, so a logical index i maps to slot
// i & (Cap()-1). Ring performs no bounds validation beyond the mask: callers
// track the live range themselves. A Ring never shrinks; [Ring.Grow] returns
// a larger copy instead.
//
// Ring is the backing store of [Deque]. It is not synchronized.
type Ring[T any] struct {
	buffer []T
	mask   int64
}

// NewRing creates a ring with capacity rounded up to the next power of 2.
// Capacities below 2 become 2.
func NewRing[T any](capacity int) *Ring[T] {
	n := roundToPow2(capacity)
	return &Ring[T]{
		buffer: make([]T, n),
		mask:   int64(n - 1),
	}
}

// Get returns the element stored at logical index i.
func (r *Ring[T]) Get(i int64) T {
	return r.buffer[i&r.mask]
}

// Set stores elem at logical index i.
func (r *Ring[T]) Set(i int64, elem T) {
	r.buffer[i&r.mask] = elem
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buffer)
}

// Grow returns a ring of twice the capacity holding the live range
// [top, bottom) at the same logical indices. The receiver is left intact so
// concurrent readers of the old ring still observe valid elements.
func (r *Ring[T]) Grow(top, bottom int64) *Ring[T] {
	g := &Ring[T]{
		buffer: make([]T, 2*len(r.buffer)),
		mask:   2*r.mask + 1,
	}
	for i := top; i < bottom; i++ {
		g.Set(i, r.Get(i))
	}
	return g
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
