// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package placer

import (
	"context"
	"errors"
	"io"
	"testing"

	"code.hybscloud.com/fdpipe"
	"code.hybscloud.com/fdpipe/checkerboard"
	"github.com/charmbracelet/log"
)

var quiet = log.New(io.Discard)

// skipUnderRace skips tests that run the pipeline, whose lock-free queues
// report false positives under the race detector.
func skipUnderRace(t *testing.T) {
	t.Helper()
	if fdpipe.RaceEnabled {
		t.Skip("skip: lock-free containers under race detector")
	}
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Nodes = 60
	cfg.Nets = 90
	cfg.Iterations = 5
	cfg.Workers = 2
	return cfg
}

// chain connects n unit nodes in a line, so every node has a neighbour.
func chain(n int) *Netlist {
	nl := &Netlist{Nodes: make([]*Node, n)}
	for i := range nl.Nodes {
		nl.Nodes[i] = NewNode(i, 1, 1)
	}
	for i := 0; i+1 < n; i++ {
		nl.Connect(i, i+1)
	}
	return nl
}

// checkLegal verifies that every node owns exactly one field, sits at its
// centre, and that no field holds a node that does not point back at it.
func checkLegal(t *testing.T, p *Placer, nl *Netlist) {
	t.Helper()
	owned := make(map[*checkerboard.Field]int)
	for _, n := range nl.Nodes {
		f := n.Field()
		if f == nil {
			t.Fatalf("node %d: no field", n.ID)
		}
		if prev, dup := owned[f]; dup {
			t.Fatalf("nodes %d and %d share a field", prev, n.ID)
		}
		owned[f] = n.ID
		if f.Node() != checkerboard.Node(n) {
			t.Fatalf("node %d: its field holds another node", n.ID)
		}
		fx, fy := f.Location()
		if x, y := n.Placement(); x != fx || y != fy {
			t.Fatalf("node %d at (%v, %v), field centre (%v, %v)", n.ID, x, y, fx, fy)
		}
	}
	occupied := 0
	p.Pattern().Each(func(f *checkerboard.Field) {
		if !f.IsEmpty() {
			occupied++
		}
	})
	if occupied != len(nl.Nodes) {
		t.Fatalf("occupied fields: got %d, want %d", occupied, len(nl.Nodes))
	}
}

func TestNewPlacesEveryNode(t *testing.T) {
	cfg := smallConfig()
	nl := Generate(cfg)
	p, err := New(cfg, nl, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checkLegal(t, p, nl)
	if p.ID() == "" {
		t.Fatal("ID: empty run id")
	}
	if cols := p.Pattern().Columns(); cols*p.Pattern().Rows() < cfg.Nodes {
		t.Fatalf("grid %dx%d too small for %d nodes", cols, p.Pattern().Rows(), cfg.Nodes)
	}
}

func TestRunKeepsPlacementLegal(t *testing.T) {
	skipUnderRace(t)

	cfg := smallConfig()
	nl := chain(cfg.Nodes)
	p, err := New(cfg, nl, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	checkLegal(t, p, nl)

	if res.Iterations != cfg.Iterations {
		t.Fatalf("Iterations: got %d, want %d", res.Iterations, cfg.Iterations)
	}
	if res.RunID != p.ID() {
		t.Fatalf("RunID: got %q, want %q", res.RunID, p.ID())
	}
	var audited uint64
	for _, c := range res.Directions {
		audited += c
	}
	if want := uint64(cfg.Nodes * cfg.Iterations); audited != want {
		t.Fatalf("audited moves: got %d, want %d", audited, want)
	}
	if len(res.Stages) != 4 {
		t.Fatalf("Stages: got %d, want 4", len(res.Stages))
	}
	for _, st := range res.Stages {
		if st.Processed != uint64(cfg.Nodes*cfg.Iterations) {
			t.Fatalf("%s: processed %d, want %d", st.Name, st.Processed, cfg.Nodes*cfg.Iterations)
		}
	}
	if res.FinalHPWL != nl.HPWL() {
		t.Fatalf("FinalHPWL: got %v, want %v", res.FinalHPWL, nl.HPWL())
	}
}

func TestRunWithUnconnectedNodes(t *testing.T) {
	skipUnderRace(t)

	cfg := smallConfig()
	cfg.Nets = 0
	nl := Generate(cfg)
	p, err := New(cfg, nl, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Committed != 0 || len(res.Directions) != 0 {
		t.Fatalf("unconnected nodes moved: committed %d, directions %v", res.Committed, res.Directions)
	}
	checkLegal(t, p, nl)
}

func TestRunCancelled(t *testing.T) {
	skipUnderRace(t)

	cfg := smallConfig()
	cfg.Iterations = 1000
	p, err := New(cfg, Generate(cfg), quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: got %v, want context.Canceled", err)
	}
	if res.Iterations != 0 {
		t.Fatalf("Iterations: got %d, want 0", res.Iterations)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	cfg := smallConfig()
	if _, err := New(cfg, &Netlist{}, quiet); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New(empty netlist): got %v, want ErrInvalidConfig", err)
	}
	cfg.Damping = 0
	if _, err := New(cfg, chain(4), quiet); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New(damping 0): got %v, want ErrInvalidConfig", err)
	}
}
