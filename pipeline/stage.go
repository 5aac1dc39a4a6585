// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fdpipe"
	"github.com/charmbracelet/log"
)

// State is a stage lifecycle state.
type State int32

const (
	StateBuilt State = iota
	StateStarted
	StateStopping
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	case StateJoined:
		return "joined"
	}
	return "unknown"
}

// Stage is a named group of workers sharing one lock-free inbox.
//
// Each worker takes an item, runs its transform and forwards the result to
// every downstream stage. Within the stage, workers batch items from the
// shared inbox into private work-stealing deques and steal from each other
// when idle.
//
// A stage is single-use: Built → Start → Started → Stop → Stopping →
// Join → Joined. Downstream links may only be added while Built.
type Stage[T any] struct {
	name    string
	opts    Options
	log     *log.Logger
	runners []*runner[T]
	inbox   *fdpipe.LinkedQueue[T]
	alt     *fdpipe.Bounded[T]
	next    []*Stage[T]
	park    *parker
	wg      sync.WaitGroup

	mu    sync.Mutex // serializes lifecycle transitions and AddNext
	state atomix.Int32

	failOnce sync.Once
	failed   chan struct{}
}

// NewStage creates a stage running one goroutine per worker.
//
// Panics if workers is empty.
func NewStage[T any](name string, workers []Worker[T], opts ...Option) *Stage[T] {
	if len(workers) == 0 {
		panic("pipeline: stage needs at least one worker")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Stage[T]{
		name:   name,
		opts:   o,
		log:    logger.With("stage", name),
		inbox:  fdpipe.NewLinkedQueue[T](),
		park:   newParker(),
		failed: make(chan struct{}),
	}
	if o.AlternateCapacity > 0 {
		s.alt = fdpipe.Build[T](fdpipe.New().Bounded(max(2, o.AlternateCapacity))).(*fdpipe.Bounded[T])
	}
	s.runners = make([]*runner[T], len(workers))
	for i, w := range workers {
		s.runners[i] = &runner[T]{
			id:     i,
			stage:  s,
			worker: w,
			local:  fdpipe.NewDeque[T](o.DequeCapacity),
		}
	}
	return s
}

// NewStageFunc creates a stage of n workers sharing one transform.
func NewStageFunc[T any](name string, n int, fn func(T) (T, error), opts ...Option) *Stage[T] {
	workers := make([]Worker[T], n)
	for i := range workers {
		workers[i] = WorkerFunc[T](fn)
	}
	return NewStage(name, workers, opts...)
}

// Name returns the stage name.
func (s *Stage[T]) Name() string { return s.name }

// State returns the current lifecycle state.
func (s *Stage[T]) State() State { return State(s.state.LoadAcquire()) }

// Inbox returns the shared inbox.
func (s *Stage[T]) Inbox() *fdpipe.LinkedQueue[T] { return s.inbox }

// AddNext links a downstream stage. Only legal before Start.
func (s *Stage[T]) AddNext(next *Stage[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.State(); st != StateBuilt {
		return fmt.Errorf("%w: add next to %q in state %s", ErrInvalidState, s.name, st)
	}
	s.next = append(s.next, next)
	return nil
}

// NextStages returns the downstream stages.
func (s *Stage[T]) NextStages() []*Stage[T] {
	return s.next
}

// Send enqueues item into the shared inbox and wakes a parked worker.
// Send never blocks and may be called in any state.
func (s *Stage[T]) Send(item T) {
	_ = s.inbox.Enqueue(&item)
	s.park.notify()
}

// SendAlternate enqueues item into the bounded alternate inbox.
// Returns ErrWouldBlock if it is full, ErrNoAlternateInbox if the stage has
// none.
func (s *Stage[T]) SendAlternate(item T) error {
	if s.alt == nil {
		return ErrNoAlternateInbox
	}
	if err := s.alt.Enqueue(&item); err != nil {
		return err
	}
	s.park.notify()
	return nil
}

// SendToNextStages forwards item to every downstream stage's inbox.
// Every downstream stage receives the same item.
func (s *Stage[T]) SendToNextStages(item T) {
	for _, n := range s.next {
		n.Send(item)
	}
}

// Start spawns one goroutine per worker.
func (s *Stage[T]) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(StateBuilt, StateStarted); err != nil {
		return err
	}
	s.wg.Add(len(s.runners))
	for _, r := range s.runners {
		go r.run()
	}
	s.log.Debug("stage started", "workers", len(s.runners), "next", len(s.next))
	return nil
}

// Stop raises every worker's shutdown flag and wakes parked workers.
// Workers finish their current item and exit; Stop does not wait.
func (s *Stage[T]) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(StateStarted, StateStopping); err != nil {
		return err
	}
	for _, r := range s.runners {
		r.stop.StoreRelease(true)
	}
	s.park.broadcast()
	s.log.Debug("stage stopping")
	return nil
}

// Join waits for every worker to exit and returns the failures of workers
// that stopped on an error, joined with errors.Join.
func (s *Stage[T]) Join() error {
	if st := s.State(); st != StateStopping {
		return fmt.Errorf("%w: join %q in state %s", ErrInvalidState, s.name, st)
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(StateStopping, StateJoined); err != nil {
		return err
	}
	var errs []error
	for _, r := range s.runners {
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	s.log.Debug("stage joined", "failed", len(errs))
	return errors.Join(errs...)
}

// Failed is closed when the first worker of the stage fails.
func (s *Stage[T]) Failed() <-chan struct{} {
	return s.failed
}

func (s *Stage[T]) transition(from, to State) error {
	if !s.state.CompareAndSwapAcqRel(int32(from), int32(to)) {
		return fmt.Errorf("%w: %q cannot go from %s to %s", ErrInvalidState, s.name, s.State(), to)
	}
	return nil
}
