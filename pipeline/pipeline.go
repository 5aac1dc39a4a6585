// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
)

// Pipeline groups the stages of one DAG so they can be started, stopped and
// joined together.
type Pipeline[T any] struct {
	stages []*Stage[T]
}

// New creates a pipeline over the given stages.
func New[T any](stages ...*Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Add appends stages to the pipeline.
func (p *Pipeline[T]) Add(stages ...*Stage[T]) {
	p.stages = append(p.stages, stages...)
}

// Link wires from → to. Both stages must still be Built.
func (p *Pipeline[T]) Link(from, to *Stage[T]) error {
	return from.AddNext(to)
}

// Stages returns the stages in insertion order.
func (p *Pipeline[T]) Stages() []*Stage[T] {
	return p.stages
}

// Start starts every stage. If one fails to start, the stages already
// started are stopped and joined, and their worker failures are returned
// together with the start error.
func (p *Pipeline[T]) Start() error {
	for i, s := range p.stages {
		if err := s.Start(); err != nil {
			errs := []error{fmt.Errorf("start %q: %w", s.Name(), err)}
			for _, started := range p.stages[:i] {
				errs = append(errs, started.Stop(), started.Join())
			}
			return errors.Join(errs...)
		}
	}
	return nil
}

// Stop stops every stage.
func (p *Pipeline[T]) Stop() error {
	var errs []error
	for _, s := range p.stages {
		if err := s.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Join joins every stage and returns all worker failures.
func (p *Pipeline[T]) Join() error {
	var errs []error
	for _, s := range p.stages {
		if err := s.Join(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown stops and joins every stage.
func (p *Pipeline[T]) Shutdown() error {
	return errors.Join(p.Stop(), p.Join())
}

// Stats returns a snapshot of every stage's counters.
func (p *Pipeline[T]) Stats() []StageStats {
	out := make([]StageStats, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Stats()
	}
	return out
}
