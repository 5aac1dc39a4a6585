// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package checkerboard partitions a placement area into fixed-size fields.
//
// Each [Field] owns at most one node and carries its own mutex. Workers
// touching different fields never contend; workers touching the same field
// serialize on it. There is no grid-wide lock.
//
// A worker about to commit a move consults the target field:
//
//	f := pattern.Clamp(x, y)
//	switch d := f.OverlapDirection(x, y, w, h); {
//	case d == checkerboard.None:
//	    // fully inside: claim it
//	case f.OverlappingFractionX(x, w) > threshold:
//	    // too far over a vertical edge: renegotiate with pattern.Neighbor(f, d)
//	}
//	if f.TryPlaceCentralized(node) {
//	    old.ReleaseIf(node)
//	}
//
// Boundary conflicts between two workers moving nodes across the same edge
// are therefore resolved by the overlap protocol and the per-field claim,
// not by mutual exclusion over a region.
package checkerboard
