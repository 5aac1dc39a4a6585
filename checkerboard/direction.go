// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package checkerboard

// Direction names the field edges a candidate box crosses.
//
// A Direction is a bit set of at most one vertical edge (North or South) and
// at most one horizontal edge (East or West). North is +y, East is +x.
type Direction uint8

// None means the candidate lies within the field box.
const None Direction = 0

const (
	North Direction = 1 << iota
	East
	South
	West
)

const (
	NorthEast = North | East
	NorthWest = North | West
	SouthEast = South | East
	SouthWest = South | West
)

// Has reports whether d includes every edge of e.
func (d Direction) Has(e Direction) bool {
	return e != None && d&e == e
}

// IsCardinal reports whether d is exactly one edge.
func (d Direction) IsCardinal() bool {
	return d == North || d == East || d == South || d == West
}

// Opposite returns the direction mirrored through the field centre.
func (d Direction) Opposite() Direction {
	var o Direction
	if d&North != 0 {
		o |= South
	}
	if d&South != 0 {
		o |= North
	}
	if d&East != 0 {
		o |= West
	}
	if d&West != 0 {
		o |= East
	}
	return o
}

// Step returns the column and row offsets of the neighbouring field in
// direction d.
func (d Direction) Step() (dc, dr int) {
	if d&East != 0 {
		dc++
	}
	if d&West != 0 {
		dc--
	}
	if d&North != 0 {
		dr++
	}
	if d&South != 0 {
		dr--
	}
	return dc, dr
}

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case NorthWest:
		return "northwest"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	}
	return "invalid"
}

// Directions lists every valid Direction, None first.
var Directions = [...]Direction{None, North, East, South, West, NorthEast, NorthWest, SouthEast, SouthWest}
