// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

// Options configures queue creation and algorithm selection.
type Options struct {
	// Capacity limit; zero means unbounded.
	capacity int
}

// Builder creates queues with fluent configuration.
//
// The builder selects the algorithm from the configured constraints:
//
//	// Unbounded Michael & Scott queue (default, shared stage inbox)
//	q := fdpipe.Build[Item](fdpipe.New())
//
//	// Bounded sequence-based ring (alternate inbox with backpressure)
//	q := fdpipe.Build[Item](fdpipe.New().Bounded(256))
type Builder struct {
	opts Options
}

// New creates a queue builder. Without further configuration it builds an
// unbounded [LinkedQueue].
func New() *Builder {
	return &Builder{}
}

// Bounded limits the queue to capacity elements, rounded up to the next
// power of 2.
//
// Panics if capacity < 2.
func (b *Builder) Bounded(capacity int) *Builder {
	if capacity < 2 {
		panic("fdpipe: capacity must be >= 2")
	}
	b.opts.capacity = capacity
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
// Algorithm selection:
//
//	Bounded(n) → Bounded (CAS sequence ring, n slots)
//	default    → LinkedQueue (Michael & Scott, unbounded)
func Build[T any](b *Builder) Queue[T] {
	if b.opts.capacity > 0 {
		return NewBounded[T](b.opts.capacity)
	}
	return NewLinkedQueue[T]()
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
