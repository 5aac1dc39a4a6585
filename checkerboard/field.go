// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package checkerboard

import (
	"math"
	"sync"
)

// Node is the placement geometry a field can own.
//
// Implementations must make Placement and SetPlacement safe for concurrent
// use: a field snaps a node while other workers read its position.
type Node interface {
	Width() float64
	Height() float64
	Placement() (x, y float64)
	SetPlacement(x, y float64)
}

// Rect is an axis-aligned box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectAround returns the box of size w×h centred at (x, y).
func RectAround(x, y, w, h float64) Rect {
	return Rect{MinX: x - w/2, MinY: y - h/2, MaxX: x + w/2, MaxY: y + h/2}
}

// Contains reports whether o lies entirely within r, edges inclusive.
func (r Rect) Contains(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// Intersects reports whether r and o share interior area.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Field is one cell of a [Pattern]. It owns at most one node.
//
// Every method locks the field's own mutex; unrelated fields never
// synchronize with each other.
type Field struct {
	mu sync.Mutex

	col, row int
	x, y     float64 // centre
	w, h     float64
	box      Rect
	node     Node
	moves    uint64
}

func newField(col, row int, x, y, w, h float64) *Field {
	f := &Field{col: col, row: row, x: x, y: y, w: w, h: h}
	f.box = RectAround(x, y, w, h)
	return f
}

// Index returns the field's column and row in its pattern.
func (f *Field) Index() (col, row int) {
	return f.col, f.row
}

// Color returns 0 or 1. Fields sharing an edge never share a colour.
func (f *Field) Color() int {
	return (f.col + f.row) & 1
}

// Location returns the field centre.
func (f *Field) Location() (x, y float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y
}

// SetLocation moves the field centre and recomputes its box.
func (f *Field) SetLocation(x, y float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x, f.y = x, y
	f.box = RectAround(f.x, f.y, f.w, f.h)
}

// Size returns the cell width and height.
func (f *Field) Size() (w, h float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w, f.h
}

// SetSize changes the cell size and recomputes its box.
func (f *Field) SetSize(w, h float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.w, f.h = w, h
	f.box = RectAround(f.x, f.y, f.w, f.h)
}

// Bounds returns the field box.
func (f *Field) Bounds() Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.box
}

// Node returns the assigned node, or nil.
func (f *Field) Node() Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.node
}

// IsEmpty reports whether no node is assigned.
func (f *Field) IsEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.node == nil
}

// MoveCount returns how many times a node has been placed in this field.
func (f *Field) MoveCount() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves
}

// PlaceCentralized assigns n to the field, replacing any previous node,
// and snaps n to the field centre.
func (f *Field) PlaceCentralized(n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.place(n)
}

// TryPlaceCentralized assigns n only if the field is empty or already
// holds n. It reports whether n now owns the field.
func (f *Field) TryPlaceCentralized(n Node) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.node != nil && f.node != n {
		return false
	}
	f.place(n)
	return true
}

func (f *Field) place(n Node) {
	f.node = n
	n.SetPlacement(f.x, f.y)
	f.moves++
}

// Release empties the field and returns the node it held, or nil.
func (f *Field) Release() Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.node
	f.node = nil
	return n
}

// ReleaseIf empties the field only if it holds n.
func (f *Field) ReleaseIf(n Node) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.node != n {
		return false
	}
	f.node = nil
	return true
}

// OverlapDirection returns which edges of the field box the candidate box
// of size w×h centred at (x, y) crosses.
//
// A candidate crossing both edges of one axis reports the side with the
// larger excess; ties favour North and East.
func (f *Field) OverlapDirection(x, y, w, h float64) Direction {
	c := RectAround(x, y, w, h)
	f.mu.Lock()
	box := f.box
	f.mu.Unlock()

	var d Direction
	east, west := c.MaxX-box.MaxX, box.MinX-c.MinX
	switch {
	case east > 0 && east >= west:
		d |= East
	case west > 0:
		d |= West
	}
	north, south := c.MaxY-box.MaxY, box.MinY-c.MinY
	switch {
	case north > 0 && north >= south:
		d |= North
	case south > 0:
		d |= South
	}
	return d
}

// OverlappingFractionX returns the fraction of the candidate's x extent,
// centred at x with width w, lying outside the field box.
func (f *Field) OverlappingFractionX(x, w float64) float64 {
	f.mu.Lock()
	lo, hi := f.box.MinX, f.box.MaxX
	f.mu.Unlock()
	return outsideFraction(x-w/2, x+w/2, lo, hi)
}

// OverlappingFractionY returns the fraction of the candidate's y extent,
// centred at y with height h, lying outside the field box.
func (f *Field) OverlappingFractionY(y, h float64) float64 {
	f.mu.Lock()
	lo, hi := f.box.MinY, f.box.MaxY
	f.mu.Unlock()
	return outsideFraction(y-h/2, y+h/2, lo, hi)
}

// outsideFraction is the share of [cmin, cmax] not covered by [lo, hi].
// A degenerate extent is a point: 0 inside the box, 1 outside.
func outsideFraction(cmin, cmax, lo, hi float64) float64 {
	extent := cmax - cmin
	if extent <= 0 {
		if cmin < lo || cmin > hi {
			return 1
		}
		return 0
	}
	inside := math.Min(cmax, hi) - math.Max(cmin, lo)
	if inside < 0 {
		inside = 0
	}
	return math.Min(1, (extent-inside)/extent)
}
