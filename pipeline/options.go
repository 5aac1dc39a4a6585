// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a stage. Use the With* functions to set fields.
type Options struct {
	// Logger receives lifecycle events (debug) and worker failures (error).
	// Defaults to log.Default().
	Logger *log.Logger

	// BatchSize is how many items a worker moves from the shared inbox into
	// its local deque per refill. Default 8.
	BatchSize int

	// DequeCapacity is the initial capacity of each worker's local deque.
	// The deque grows on demand. Default 64.
	DequeCapacity int

	// IdleSpins is how many backoff rounds an idle worker performs before
	// parking. Default 16.
	IdleSpins int

	// MaxPark bounds a single park so a missed wakeup cannot stall a worker
	// forever. Default 10ms.
	MaxPark time.Duration

	// PinWorkers locks each worker goroutine to its own OS thread.
	PinWorkers bool

	// AlternateCapacity, when positive, gives the stage a bounded alternate
	// inbox drained ahead of the shared inbox.
	AlternateCapacity int
}

// Option configures a stage.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		BatchSize:     8,
		DequeCapacity: 64,
		IdleSpins:     16,
		MaxPark:       10 * time.Millisecond,
	}
}

// WithLogger sets the stage logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithBatchSize sets how many inbox items a worker claims per refill.
// Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithDequeCapacity sets the initial capacity of each worker's deque.
func WithDequeCapacity(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.DequeCapacity = n
		}
	}
}

// WithIdleSpins sets the number of backoff rounds before an idle worker
// parks. Zero parks immediately.
func WithIdleSpins(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.IdleSpins = n
		}
	}
}

// WithMaxPark bounds a single park.
func WithMaxPark(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.MaxPark = d
		}
	}
}

// WithPinnedWorkers locks every worker goroutine to an OS thread.
func WithPinnedWorkers() Option {
	return func(o *Options) { o.PinWorkers = true }
}

// WithAlternateInbox gives the stage a bounded alternate inbox of the given
// capacity, rounded up to a power of 2. Workers drain it before the shared
// inbox; SendAlternate reports ErrWouldBlock when it is full.
func WithAlternateInbox(capacity int) Option {
	return func(o *Options) { o.AlternateCapacity = capacity }
}
