// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package placer

import (
	"math"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fdpipe/checkerboard"
	"github.com/valyala/fastrand"
)

// Node is a component to place. Its position is published atomically so
// force workers may read it while a commit worker snaps it.
type Node struct {
	ID   int
	w, h float64
	x, y atomix.Uint64 // math.Float64bits

	nets  []int
	field atomix.Pointer[checkerboard.Field]
}

// NewNode creates a node of the given size at the origin.
func NewNode(id int, w, h float64) *Node {
	return &Node{ID: id, w: w, h: h}
}

func (n *Node) Width() float64  { return n.w }
func (n *Node) Height() float64 { return n.h }

func (n *Node) Placement() (x, y float64) {
	return math.Float64frombits(n.x.LoadAcquire()), math.Float64frombits(n.y.LoadAcquire())
}

func (n *Node) SetPlacement(x, y float64) {
	n.x.StoreRelease(math.Float64bits(x))
	n.y.StoreRelease(math.Float64bits(y))
}

func (n *Node) setField(f *checkerboard.Field) {
	n.field.StoreRelease(f)
}

// Field returns the field the node currently owns, or nil before the
// initial placement.
func (n *Node) Field() *checkerboard.Field {
	return n.field.LoadAcquire()
}

// Net connects the nodes at the listed indices.
type Net struct {
	Nodes []int
}

// Netlist is the placement input: nodes and the nets connecting them.
type Netlist struct {
	Nodes []*Node
	Nets  []Net
}

// Connect adds a net over the given node indices and records it on every
// member node.
func (nl *Netlist) Connect(nodes ...int) {
	id := len(nl.Nets)
	nl.Nets = append(nl.Nets, Net{Nodes: nodes})
	for _, i := range nodes {
		nl.Nodes[i].nets = append(nl.Nodes[i].nets, id)
	}
}

// MaxNodeSize returns the largest node width or height.
func (nl *Netlist) MaxNodeSize() float64 {
	var m float64
	for _, n := range nl.Nodes {
		m = max(m, n.w, n.h)
	}
	return m
}

// HPWL returns the half-perimeter wirelength summed over all nets.
func (nl *Netlist) HPWL() float64 {
	var total float64
	for _, net := range nl.Nets {
		if len(net.Nodes) < 2 {
			continue
		}
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, i := range net.Nodes {
			x, y := nl.Nodes[i].Placement()
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
		total += (maxX - minX) + (maxY - minY)
	}
	return total
}

// Generate builds a random netlist from cfg: cfg.Nodes nodes with sides in
// [1, cfg.MaxNodeSize] and cfg.Nets nets of 2..cfg.NetSize distinct nodes.
func Generate(cfg Config) *Netlist {
	nl := &Netlist{Nodes: make([]*Node, cfg.Nodes)}
	for i := range nl.Nodes {
		nl.Nodes[i] = NewNode(i, randSide(cfg.MaxNodeSize), randSide(cfg.MaxNodeSize))
	}
	if cfg.Nodes < 2 {
		return nl
	}
	for range cfg.Nets {
		size := 2 + int(fastrand.Uint32n(uint32(max(1, min(cfg.NetSize, cfg.Nodes)-1))))
		members := make([]int, 0, size)
		seen := make(map[int]struct{}, size)
		for len(members) < size {
			i := int(fastrand.Uint32n(uint32(cfg.Nodes)))
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			members = append(members, i)
		}
		nl.Connect(members...)
	}
	return nl
}

func randSide(maxSide float64) float64 {
	if maxSide <= 1 {
		return 1
	}
	steps := uint32(math.Floor(maxSide))
	return float64(1 + fastrand.Uint32n(steps))
}
