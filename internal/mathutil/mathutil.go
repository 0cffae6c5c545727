// Package mathutil holds the small set of float primitives the simulation
// leans on every tick: angle normalization and segment-vs-segment
// intersection for tunnel-proof collision checks.
package mathutil

import "math"

const (
	Pi  = math.Pi
	Pi2 = 2 * math.Pi
)

// NormalizeAngle folds ang into [0, 2*Pi).
func NormalizeAngle(ang float64) float64 {
	a := math.Mod(ang, Pi2)
	if a < 0 {
		a += Pi2
	}
	return a
}

// DistSq returns the squared distance between two points, avoiding a sqrt
// on hot paths where only relative magnitude matters.
func DistSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

const intersectEpsilon = 1e-4

// SegmentsIntersect reports whether closed segment ab crosses closed segment
// cd, within intersectEpsilon on the determinant. Colinear overlap returns
// false — this exists specifically to catch a fast-moving head tunneling
// through a body segment between ticks, so it is checked against the head's
// swept segment rather than its single current position.
func SegmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	aa2 := by - ay
	bb2 := ax - bx
	cc2 := aa2*ax + bb2*ay

	aa1 := cy - dy
	bb1 := dx - cx
	cc1 := aa1*dx + bb1*dy

	det := aa1*bb2 - aa2*bb1
	if det < intersectEpsilon && det > -intersectEpsilon {
		return false
	}

	isx := (bb2*cc1 - bb1*cc2) / det
	isy := (aa1*cc2 - aa2*cc1) / det

	if isx < math.Min(ax, bx) || isx > math.Max(ax, bx) ||
		isy < math.Min(ay, by) || isy > math.Max(ay, by) {
		return false
	}
	if isx < math.Min(cx, dx) || isx > math.Max(cx, dx) ||
		isy < math.Min(cy, dy) || isy > math.Max(cy, dy) {
		return false
	}
	return true
}
