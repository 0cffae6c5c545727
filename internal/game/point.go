// Package game implements the simulation: the spatial grid, snake
// kinematics and scoring, food spawning, bot AI, and the per-tick world
// update. It has no network awareness — the session layer translates
// World state into wire packets.
package game

import "math"

// Point is a 2D world coordinate.
type Point struct {
	X, Y float64
}

func dist2(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// BoundBox is a bounding circle, not a box — the name just carries over
// the body/viewport bounding-circle naming used throughout this package
// (center+radius, not a rectangle).
type BoundBox struct {
	X, Y, R float64
}

// Intersects reports whether two bounding circles overlap.
func (b BoundBox) Intersects(o BoundBox) bool {
	if math.Abs(b.X-o.X) > b.R+o.R {
		return false
	}
	if math.Abs(b.Y-o.Y) > b.R+o.R {
		return false
	}
	dx := b.X - o.X
	dy := b.Y - o.Y
	rr := b.R + o.R
	return dx*dx+dy*dy <= rr*rr
}

// Contains reports whether (x,y) falls within the bounding circle.
func (b BoundBox) Contains(x, y float64) bool {
	dx := b.X - x
	dy := b.Y - y
	return dx*dx+dy*dy <= b.R*b.R
}
