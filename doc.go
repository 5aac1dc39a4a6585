// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fdpipe provides the non-blocking containers behind the parallel
// force-directed placement pipeline.
//
// The package offers three containers and the ring buffer they share:
//
//   - LinkedQueue: unbounded MPMC FIFO (Michael & Scott), a stage's shared inbox
//   - Bounded: bounded MPMC FIFO (turn ring), a stage's alternate inbox
//   - Deque: work-stealing deque (Chase-Lev), a worker's local run queue
//   - Ring: power-of-two circular store with explicit Grow
//
// Stage orchestration lives in package [code.hybscloud.com/fdpipe/pipeline];
// spatial partitioning lives in [code.hybscloud.com/fdpipe/checkerboard].
//
// # Quick Start
//
//	q := fdpipe.NewLinkedQueue[*Move]()
//	d := fdpipe.NewDeque[*Move](64)
//
// Builder API selects the FIFO algorithm:
//
//	q := fdpipe.Build[*Move](fdpipe.New())             // → LinkedQueue
//	q := fdpipe.Build[*Move](fdpipe.New().Bounded(256)) // → Bounded
//
// # Basic Usage
//
// FIFO queues share the same interface:
//
//	m := &Move{}
//	_ = q.Enqueue(&m) // never fails on LinkedQueue
//
//	m, err := q.Dequeue()
//	if fdpipe.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// The deque separates its owner from thieves:
//
//	d.Push(m)              // owner
//	m, err := d.Pop()      // owner, LIFO
//	m, err := d.Steal()    // any goroutine, FIFO
//
// # Common Patterns
//
// Batch inbox into a local deque, then balance by stealing:
//
//	for range batch {
//	    m, err := inbox.Dequeue()
//	    if err != nil {
//	        break
//	    }
//	    local.Push(m)
//	}
//	m, err := local.Pop()
//	if err != nil {
//	    m, err = peers[fastrand.Uint32n(n)].Steal()
//	}
//
// # Error Handling
//
// Every non-blocking pull reports the "Empty" result as [ErrWouldBlock],
// sourced from [code.hybscloud.com/iox]. Empty is expected and never fatal:
//
//	backoff := iox.Backoff{}
//	for {
//	    m, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        process(m)
//	        continue
//	    }
//	    if !fdpipe.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// # Progress
//
// LinkedQueue and Bounded are lock-free: a failed CAS means another
// goroutine succeeded. Retry loops pause with [code.hybscloud.com/spin] and
// carry no retry cap. Deque.Push and Deque.Pop are wait-free except for the
// single CAS on the last element; Deque.Steal makes one attempt and returns.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before relationships
// established through acquire-release orderings on separate variables.
// Slots are protected by turn counters or CAS on indices, so the
// detector may report false positives on lock-free stress tests; those
// tests skip when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package fdpipe
