// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package checkerboard

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension is returned by NewPattern for non-positive or
// non-finite dimensions.
var ErrInvalidDimension = errors.New("checkerboard: invalid dimension")

// Pattern is a fixed grid of fields covering a layout.
//
// Field (col, row) is centred at (col·cellSizeX, row·cellSizeY). The grid
// shape and cell size never change after construction; the fields
// themselves are individually locked.
type Pattern struct {
	cols, rows int
	cellX      float64
	cellY      float64
	fields     [][]*Field // [col][row]
}

// NewPattern builds a grid covering a width×height layout with cells of
// cellSizeX×cellSizeY. The grid has ceil(width/cellSizeX) columns and
// ceil(height/cellSizeY) rows, at least one of each.
func NewPattern(width, height, cellSizeX, cellSizeY float64) (*Pattern, error) {
	for _, v := range [...]float64{width, height, cellSizeX, cellSizeY} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %vx%v with cell %vx%v", ErrInvalidDimension, width, height, cellSizeX, cellSizeY)
		}
	}

	cols := max(1, int(math.Ceil(width/cellSizeX)))
	rows := max(1, int(math.Ceil(height/cellSizeY)))
	p := &Pattern{
		cols:   cols,
		rows:   rows,
		cellX:  cellSizeX,
		cellY:  cellSizeY,
		fields: make([][]*Field, cols),
	}
	for c := range cols {
		p.fields[c] = make([]*Field, rows)
		for r := range rows {
			p.fields[c][r] = newField(c, r, float64(c)*cellSizeX, float64(r)*cellSizeY, cellSizeX, cellSizeY)
		}
	}
	return p, nil
}

// Columns returns the number of columns.
func (p *Pattern) Columns() int { return p.cols }

// Rows returns the number of rows.
func (p *Pattern) Rows() int { return p.rows }

// CellSize returns the cell width and height.
func (p *Pattern) CellSize() (x, y float64) { return p.cellX, p.cellY }

// Field returns the field at (col, row), or nil when out of bounds.
func (p *Pattern) Field(col, row int) *Field {
	if col < 0 || col >= p.cols || row < 0 || row >= p.rows {
		return nil
	}
	return p.fields[col][row]
}

// Fields returns the lengthX×lengthY window of fields whose lower-left
// corner is (col, row), indexed [dx][dy]. Entries outside the grid are nil.
func (p *Pattern) Fields(col, row, lengthX, lengthY int) [][]*Field {
	win := make([][]*Field, max(0, lengthX))
	for dx := range win {
		win[dx] = make([]*Field, max(0, lengthY))
		for dy := range win[dx] {
			win[dx][dy] = p.Field(col+dx, row+dy)
		}
	}
	return win
}

// Neighborhood returns the 3×3 window centred on (col, row).
func (p *Pattern) Neighborhood(col, row int) [][]*Field {
	return p.Fields(col-1, row-1, 3, 3)
}

// Neighbor returns the field adjacent to f in direction d, or nil.
func (p *Pattern) Neighbor(f *Field, d Direction) *Field {
	dc, dr := d.Step()
	return p.Field(f.col+dc, f.row+dr)
}

// Locate returns the indices of the field whose box contains (x, y).
// ok is false when the point lies outside the grid.
func (p *Pattern) Locate(x, y float64) (col, row int, ok bool) {
	col = int(math.Floor(x/p.cellX + 0.5))
	row = int(math.Floor(y/p.cellY + 0.5))
	return col, row, p.Field(col, row) != nil
}

// Clamp returns the field nearest to (x, y).
func (p *Pattern) Clamp(x, y float64) *Field {
	col, row, _ := p.Locate(x, y)
	return p.fields[min(max(col, 0), p.cols-1)][min(max(row, 0), p.rows-1)]
}

// FieldsOfColor returns every field of colour c in column-major order.
// Same-colour fields never share an edge, so workers may move nodes in all
// of them at once without crossing a shared boundary.
func (p *Pattern) FieldsOfColor(c int) []*Field {
	out := make([]*Field, 0, (p.cols*p.rows+1)/2)
	for col := range p.cols {
		for row := range p.rows {
			if (col+row)&1 == c&1 {
				out = append(out, p.fields[col][row])
			}
		}
	}
	return out
}

// Each calls fn for every field in column-major order.
func (p *Pattern) Each(fn func(f *Field)) {
	for col := range p.cols {
		for row := range p.rows {
			fn(p.fields[col][row])
		}
	}
}
