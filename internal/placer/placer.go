// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package placer is a reference force-directed placement driver built on
// the fdpipe pipeline and checkerboard packages.
//
// Every iteration feeds one Move per node through
//
//	force → legalize ─┬→ commit
//	                  └→ audit
//
// force pulls a node toward the centroid of its net neighbours, legalize
// turns the proposal into a target field using the overlap protocol, commit
// claims the target field, and audit records the overlap direction. Nodes
// always sit at the centre of the single field they own.
package placer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fdpipe/checkerboard"
	"code.hybscloud.com/fdpipe/pipeline"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/valyala/fastrand"
)

// Move is the work item flowing through the pipeline.
type Move struct {
	Node *Node
	Iter int

	// Force toward the neighbour centroid and the damped proposal.
	FX, FY float64
	TX, TY float64

	// Edges of the node's current field the proposal crosses.
	Dir checkerboard.Direction

	// Field chosen by legalize; nil or the current field means stay.
	Target *checkerboard.Field
}

// Result summarizes a run.
type Result struct {
	RunID       string
	Iterations  int
	InitialHPWL float64
	FinalHPWL   float64
	Committed   uint64
	Conflicts   uint64
	Directions  map[checkerboard.Direction]uint64
	Stages      []pipeline.StageStats
	Elapsed     time.Duration
}

// Placer runs force-directed placement over one netlist.
type Placer struct {
	id      string
	cfg     Config
	log     *log.Logger
	netlist *Netlist
	pattern *checkerboard.Pattern

	pipe   *pipeline.Pipeline[*Move]
	force  *pipeline.Stage[*Move]
	legal  *pipeline.Stage[*Move]
	commit *pipeline.Stage[*Move]
	audit  *pipeline.Stage[*Move]

	pending   atomix.Int64
	drained   chan struct{}
	committed atomix.Uint64
	conflicts atomix.Uint64
	dirs      [32]atomix.Uint64 // indexed by Direction
}

// New builds the grid, places every node in its own field and wires the
// pipeline. A nil logger means log.Default().
func New(cfg Config, nl *Netlist, logger *log.Logger) (*Placer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(nl.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty netlist", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.Default()
	}

	id := uuid.NewString()
	p := &Placer{
		id:      id,
		cfg:     cfg,
		log:     logger.With("run", id[:8]),
		netlist: nl,
		drained: make(chan struct{}, 1),
	}

	cell := nl.MaxNodeSize() * cfg.Spacing
	side := int(math.Ceil(math.Sqrt(float64(len(nl.Nodes)) / cfg.Utilization)))
	pattern, err := checkerboard.NewPattern(float64(side)*cell, float64(side)*cell, cell, cell)
	if err != nil {
		return nil, err
	}
	p.pattern = pattern
	p.placeInitial()

	opts := []pipeline.Option{pipeline.WithLogger(p.log), pipeline.WithMaxPark(cfg.MaxPark.Duration)}
	if cfg.PinWorkers {
		opts = append(opts, pipeline.WithPinnedWorkers())
	}
	p.force = pipeline.NewStageFunc("force", cfg.Workers, p.computeForce, opts...)
	p.legal = pipeline.NewStageFunc("legalize", cfg.Workers, p.legalize, opts...)
	p.commit = pipeline.NewStageFunc("commit", max(1, cfg.Workers/2), p.commitMove, opts...)
	p.audit = pipeline.NewStageFunc("audit", 1, p.auditMove, opts...)

	p.pipe = pipeline.New(p.force, p.legal, p.commit, p.audit)
	for _, link := range [][2]*pipeline.Stage[*Move]{
		{p.force, p.legal},
		{p.legal, p.commit},
		{p.legal, p.audit},
	} {
		if err := p.pipe.Link(link[0], link[1]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Pattern returns the grid the placer works on.
func (p *Placer) Pattern() *checkerboard.Pattern { return p.pattern }

// ID returns the run identifier.
func (p *Placer) ID() string { return p.id }

// placeInitial gives every node its own field, walking the grid row-major
// from a random offset.
func (p *Placer) placeInitial() {
	cols, rows := p.pattern.Columns(), p.pattern.Rows()
	total := cols * rows
	start := int(fastrand.Uint32n(uint32(total)))
	for i, n := range p.netlist.Nodes {
		k := (start + i) % total
		f := p.pattern.Field(k%cols, k/cols)
		f.PlaceCentralized(n)
		n.setField(f)
	}
}

// Run executes cfg.Iterations iterations and shuts the pipeline down.
// It returns early when ctx is done or a worker fails.
func (p *Placer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: p.id, InitialHPWL: p.netlist.HPWL()}

	if err := p.pipe.Start(); err != nil {
		return nil, err
	}
	p.log.Info("placement started", "nodes", len(p.netlist.Nodes), "nets", len(p.netlist.Nets),
		"grid", fmt.Sprintf("%dx%d", p.pattern.Columns(), p.pattern.Rows()), "hpwl", res.InitialHPWL)

	var runErr error
	for iter := range p.cfg.Iterations {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if runErr = p.iterate(ctx, iter); runErr != nil {
			break
		}
		res.Iterations++
		p.log.Debug("iteration done", "iter", iter, "hpwl", p.netlist.HPWL(), "committed", p.committed.Load())
	}

	if err := p.pipe.Shutdown(); err != nil {
		runErr = errors.Join(runErr, err)
	}

	res.FinalHPWL = p.netlist.HPWL()
	res.Committed = p.committed.Load()
	res.Conflicts = p.conflicts.Load()
	res.Directions = make(map[checkerboard.Direction]uint64)
	for _, d := range checkerboard.Directions {
		if c := p.dirs[d].Load(); c > 0 {
			res.Directions[d] = c
		}
	}
	res.Stages = p.pipe.Stats()
	res.Elapsed = time.Since(start)
	p.log.Info("placement finished", "iterations", res.Iterations, "hpwl", res.FinalHPWL,
		"committed", res.Committed, "conflicts", res.Conflicts, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, runErr
}

// iterate feeds one move per node and waits until commit and audit have
// both seen every move.
func (p *Placer) iterate(ctx context.Context, iter int) error {
	nodes := p.netlist.Nodes
	p.pending.StoreRelease(2 * int64(len(nodes)))
	for _, n := range nodes {
		p.force.Send(&Move{Node: n, Iter: iter})
	}

	select {
	case <-p.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.force.Failed():
	case <-p.legal.Failed():
	case <-p.commit.Failed():
	case <-p.audit.Failed():
	}
	return fmt.Errorf("iteration %d: pipeline worker failed", iter)
}

// done retires terminal visits of a move. An abandoned iteration may still
// drain after Run stopped listening, so the signal never blocks a worker.
func (p *Placer) done(visits int64) {
	if p.pending.AddAcqRel(-visits) == 0 {
		select {
		case p.drained <- struct{}{}:
		default:
		}
	}
}

func (p *Placer) computeForce(m *Move) (*Move, error) {
	n := m.Node
	x, y := n.Placement()

	var sx, sy float64
	count := 0
	for _, ni := range n.nets {
		for _, o := range p.netlist.Nets[ni].Nodes {
			if o == n.ID {
				continue
			}
			ox, oy := p.netlist.Nodes[o].Placement()
			sx += ox
			sy += oy
			count++
		}
	}
	if count == 0 {
		// Unconnected: nothing pulls it anywhere.
		p.done(2)
		return nil, pipeline.ErrDrop
	}

	m.FX = sx/float64(count) - x
	m.FY = sy/float64(count) - y
	m.TX = x + p.cfg.Damping*m.FX
	m.TY = y + p.cfg.Damping*m.FY
	return m, nil
}

// legalize picks the field a move should claim. A proposal that stays
// within the current field, or leaves it by no more than the overlap
// threshold on either axis, keeps the node where it is. Otherwise the node
// renegotiates: the neighbour across the crossed edges if it is free, else
// the free field in the 3×3 neighbourhood nearest the proposal.
func (p *Placer) legalize(m *Move) (*Move, error) {
	n := m.Node
	cur := n.Field()
	m.Target = cur
	m.Dir = cur.OverlapDirection(m.TX, m.TY, n.Width(), n.Height())
	if m.Dir == checkerboard.None {
		return m, nil
	}

	var d checkerboard.Direction
	if cur.OverlappingFractionX(m.TX, n.Width()) > p.cfg.OverlapThreshold {
		d |= m.Dir & (checkerboard.East | checkerboard.West)
	}
	if cur.OverlappingFractionY(m.TY, n.Height()) > p.cfg.OverlapThreshold {
		d |= m.Dir & (checkerboard.North | checkerboard.South)
	}
	if d == checkerboard.None {
		return m, nil
	}

	if f := p.pattern.Neighbor(cur, d); f != nil && f.IsEmpty() {
		m.Target = f
		return m, nil
	}

	col, row := cur.Index()
	cx, cy := cur.Location()
	best := sqDist(cx, cy, m.TX, m.TY)
	for _, column := range p.pattern.Neighborhood(col, row) {
		for _, f := range column {
			if f == nil || f == cur || !f.IsEmpty() {
				continue
			}
			fx, fy := f.Location()
			if dist := sqDist(fx, fy, m.TX, m.TY); dist < best {
				best = dist
				m.Target = f
			}
		}
	}
	return m, nil
}

// commitMove claims the target field for the node. Claims are per field,
// so two moves racing for one field leave exactly one winner; the loser
// stays in its own field.
func (p *Placer) commitMove(m *Move) (*Move, error) {
	defer p.done(1)

	n := m.Node
	cur := n.Field()
	if m.Target == nil || m.Target == cur {
		return m, nil
	}
	if !m.Target.TryPlaceCentralized(n) {
		p.conflicts.Add(1)
		return m, nil
	}
	cur.ReleaseIf(n)
	n.setField(m.Target)
	p.committed.Add(1)
	return m, nil
}

func (p *Placer) auditMove(m *Move) (*Move, error) {
	p.dirs[m.Dir].Add(1)
	p.done(1)
	return m, nil
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
