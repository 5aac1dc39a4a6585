// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"runtime"
	"runtime/debug"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fdpipe"
	"code.hybscloud.com/iox"
	"github.com/valyala/fastrand"
)

// Worker is the per-item transform of a stage.
//
// Process is called from the worker's own goroutine, one item at a time.
// Returning ErrDrop consumes the item without forwarding; any other error
// stops this worker and is reported by Stage.Join.
type Worker[T any] interface {
	Process(item T) (T, error)
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc[T any] func(item T) (T, error)

// Process calls f(item).
func (f WorkerFunc[T]) Process(item T) (T, error) {
	return f(item)
}

// runner drives one Worker inside a stage.
type runner[T any] struct {
	id     int
	stage  *Stage[T]
	worker Worker[T]
	local  *fdpipe.Deque[T]

	stop atomix.Bool

	processed atomix.Uint64
	stolen    atomix.Uint64
	dropped   atomix.Uint64
	failed    atomix.Bool

	err error // first failure; read only after the goroutine exits
}

func (r *runner[T]) run() {
	defer r.stage.wg.Done()

	if r.stage.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	backoff := iox.Backoff{}
	idle := 0
	for !r.stop.LoadAcquire() {
		item, ok := r.take()
		if !ok {
			idle++
			if idle <= r.stage.opts.IdleSpins {
				backoff.Wait()
				continue
			}
			r.stage.park.park(r.stage.opts.MaxPark, r.ready)
			idle = 0
			backoff.Reset()
			continue
		}
		idle = 0
		backoff.Reset()

		if err := r.process(item); err != nil {
			r.fail(err)
			return
		}
	}
}

// take finds the next item: alternate inbox, then a refill from the shared
// inbox into the local deque, then the local deque, then a peer's deque.
func (r *runner[T]) take() (T, bool) {
	s := r.stage
	if s.alt != nil {
		if item, err := s.alt.Dequeue(); err == nil {
			return item, true
		}
	}

	if r.local.IsEmpty() {
		for range s.opts.BatchSize {
			item, err := s.inbox.Dequeue()
			if err != nil {
				break
			}
			r.local.Push(item)
		}
	}
	if item, err := r.local.Pop(); err == nil {
		return item, true
	}

	return r.steal()
}

// steal tries each peer once, starting from a random one.
func (r *runner[T]) steal() (T, bool) {
	var zero T
	peers := r.stage.runners
	n := len(peers)
	if n <= 1 {
		return zero, false
	}
	start := int(fastrand.Uint32n(uint32(n)))
	for i := range n {
		victim := peers[(start+i)%n]
		if victim == r {
			continue
		}
		if item, err := victim.local.Steal(); err == nil {
			r.stolen.Add(1)
			return item, true
		}
	}
	return zero, false
}

// ready reports whether a parked worker should wake: it was stopped or
// there is something to take.
func (r *runner[T]) ready() bool {
	s := r.stage
	if r.stop.LoadAcquire() || !s.inbox.IsEmpty() {
		return true
	}
	if s.alt != nil && !s.alt.IsEmpty() {
		return true
	}
	for _, p := range s.runners {
		if !p.local.IsEmpty() {
			return true
		}
	}
	return false
}

func (r *runner[T]) process(item T) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	out, err := r.worker.Process(item)
	if err != nil {
		if errors.Is(err, ErrDrop) {
			r.processed.Add(1)
			r.dropped.Add(1)
			return nil
		}
		return err
	}
	r.processed.Add(1)
	r.stage.SendToNextStages(out)
	return nil
}

func (r *runner[T]) fail(err error) {
	r.err = &WorkerError{Stage: r.stage.name, Worker: r.id, Err: err}
	r.failed.StoreRelease(true)
	r.stop.StoreRelease(true)
	r.stage.log.Error("worker failed", "worker", r.id, "err", err)
	r.stage.failOnce.Do(func() { close(r.stage.failed) })
}
