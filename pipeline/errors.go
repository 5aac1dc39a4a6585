// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when a lifecycle call does not move the
	// stage forward along Built → Started → Stopping → Joined, or when a
	// stage is rewired after it has started.
	ErrInvalidState = errors.New("pipeline: invalid stage state")

	// ErrDrop may be returned by Worker.Process to consume an item without
	// forwarding a result. It is not a failure and does not stop the worker.
	ErrDrop = errors.New("pipeline: drop item")

	// ErrNoAlternateInbox is returned by SendAlternate on a stage built
	// without WithAlternateInbox.
	ErrNoAlternateInbox = errors.New("pipeline: stage has no alternate inbox")
)

// WorkerError is the first failure of one worker. The worker stops after
// recording it; Join reports it.
type WorkerError struct {
	Stage  string
	Worker int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("stage %q worker %d: %v", e.Stage, e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// PanicError carries a panic recovered from Worker.Process.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
