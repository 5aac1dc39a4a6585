// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline runs multi-stage worker pipelines over fdpipe containers.
//
// A [Stage] is a named group of workers sharing one unbounded lock-free
// inbox. Every result a worker produces is forwarded to the inbox of every
// downstream stage (fan-out, not sharding).
//
// # Wiring
//
//	force := pipeline.NewStageFunc("force", 4, computeForce)
//	legal := pipeline.NewStageFunc("legalize", 4, legalize)
//	commit := pipeline.NewStageFunc("commit", 2, commit)
//
//	p := pipeline.New(force, legal, commit)
//	_ = p.Link(force, legal)
//	_ = p.Link(legal, commit)
//
//	_ = p.Start()
//	for _, m := range moves {
//	    force.Send(m)
//	}
//	...
//	err := p.Shutdown() // Stop, then Join
//
// # Scheduling
//
// Each worker goroutine takes work in this order:
//
//  1. the stage's bounded alternate inbox, if configured
//  2. a batch refilled from the shared inbox into its own [fdpipe.Deque]
//  3. its own deque (LIFO)
//  4. a peer's deque (steal, FIFO), starting at a random peer
//
// An idle worker backs off with [iox.Backoff] for a few rounds, then parks
// on a condition variable until Send wakes it. A park never exceeds
// Options.MaxPark.
//
// # Lifecycle
//
// Stages move Built → Started → Stopping → Joined and are not restartable.
// Stop is cooperative: each worker finishes its current item and exits.
// Items still queued when a stage stops are left in place.
//
// # Errors
//
// A worker whose transform returns an error (other than [ErrDrop]) or
// panics records a [*WorkerError], logs it, and stops. Its queued items
// remain stealable by its peers. Join returns every recorded failure, and
// Failed is closed on the first one so a driver can stop early instead of
// waiting on a stalled pipeline.
package pipeline
