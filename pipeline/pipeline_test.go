// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fdpipe/pipeline"
	"github.com/charmbracelet/log"
)

func TestPipelineDeliversEveryItem(t *testing.T) {
	skipUnderRace(t)

	const n = 5000

	var mu sync.Mutex
	seen := make(map[int]int, n)
	var count atomix.Int64
	done := make(chan struct{})

	inc := func(v int) (int, error) { return v + 1, nil }
	a := pipeline.NewStageFunc("a", 4, inc, quiet, pipeline.WithBatchSize(4))
	b := pipeline.NewStageFunc("b", 4, inc, quiet, pipeline.WithDequeCapacity(2))
	sink := pipeline.NewStageFunc("sink", 2, func(v int) (int, error) {
		mu.Lock()
		seen[v]++
		mu.Unlock()
		if count.AddAcqRel(1) == n {
			close(done)
		}
		return v, pipeline.ErrDrop
	}, quiet)

	p := pipeline.New(a, b)
	p.Add(sink)
	if err := p.Link(a, b); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := p.Link(b, sink); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(p.Stages()) != 3 {
		t.Fatalf("Stages: got %d, want 3", len(p.Stages()))
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := range n {
		a.Send(i)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("delivered %d of %d items", count.Load(), n)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	for i := range n {
		if seen[i+2] != 1 {
			t.Fatalf("item %d delivered %d times, want 1", i, seen[i+2])
		}
	}

	for _, st := range p.Stats() {
		if st.State != pipeline.StateJoined {
			t.Fatalf("%s: state %v, want joined", st.Name, st.State)
		}
		if st.Processed != n {
			t.Fatalf("%s: processed %d, want %d", st.Name, st.Processed, n)
		}
		var sum uint64
		for _, w := range st.Workers {
			sum += w.Processed
		}
		if sum != st.Processed {
			t.Fatalf("%s: worker sum %d, stage total %d", st.Name, sum, st.Processed)
		}
		if st.Imbalance < 1 {
			t.Fatalf("%s: imbalance %v, want >= 1", st.Name, st.Imbalance)
		}
	}
}

func TestPipelineStartRollsBack(t *testing.T) {
	skipUnderRace(t)

	a := pipeline.NewStageFunc("a", 1, double, quiet)
	b := pipeline.NewStageFunc("b", 1, double, quiet)
	b.Start()
	b.Stop()
	b.Join()

	p := pipeline.New(a, b)
	if err := p.Start(); err == nil {
		t.Fatal("Start with a joined stage: want error")
	}
	if a.State() != pipeline.StateJoined {
		t.Fatalf("rolled back stage: state %v, want joined", a.State())
	}
}

// gateWriter holds log writes until gate is closed.
type gateWriter struct{ gate <-chan struct{} }

func (w gateWriter) Write(p []byte) (int, error) {
	<-w.gate
	return len(p), nil
}

func TestPipelineStartRollbackReportsWorkerFailure(t *testing.T) {
	skipUnderRace(t)

	boom := errors.New("boom")
	busy := make(chan struct{})
	var a *pipeline.Stage[int]
	// a's "stage started" line blocks until its worker holds an item, so
	// the rollback always stops a mid-item.
	logger := log.NewWithOptions(gateWriter{gate: busy}, log.Options{Level: log.DebugLevel})
	a = pipeline.NewStageFunc("a", 1, func(int) (int, error) {
		close(busy)
		for a.State() != pipeline.StateStopping {
			time.Sleep(time.Millisecond)
		}
		return 0, boom
	}, pipeline.WithLogger(logger))
	a.Send(1)

	b := pipeline.NewStageFunc("b", 1, double, quiet)
	b.Start()
	b.Stop()
	b.Join()

	err := pipeline.New(a, b).Start()
	if !errors.Is(err, pipeline.ErrInvalidState) {
		t.Fatalf("Start: got %v, want ErrInvalidState", err)
	}
	var we *pipeline.WorkerError
	if !errors.Is(err, boom) || !errors.As(err, &we) || we.Stage != "a" {
		t.Fatalf("Start: got %v, want the rolled back stage's *WorkerError", err)
	}
	if a.State() != pipeline.StateJoined {
		t.Fatalf("rolled back stage: state %v, want joined", a.State())
	}
}
