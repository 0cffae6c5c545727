package game

import (
	"testing"

	"slither-server/internal/config"
)

func TestGridCoordForClampsAtEdges(t *testing.T) {
	g := NewGrid(config.SectorCountAlongEdge)
	sx, sy := g.CoordFor(-100, -100)
	if sx != 0 || sy != 0 {
		t.Fatalf("CoordFor(-100,-100) = (%d,%d), want (0,0)", sx, sy)
	}
	far := float64(config.GameRadius * 4)
	sx, sy = g.CoordFor(far, far)
	if sx != g.Dim()-1 || sy != g.Dim()-1 {
		t.Fatalf("CoordFor(far,far) = (%d,%d), want (%d,%d)", sx, sy, g.Dim()-1, g.Dim()-1)
	}
}

func TestSectorsInRadiusIncludesCenterSector(t *testing.T) {
	g := NewGrid(config.SectorCountAlongEdge)
	x, y := float64(config.GameRadius), float64(config.GameRadius)
	sx, sy := g.CoordFor(x, y)
	sectors := g.SectorsInRadius(x, y, 500)
	if !sectors[SectorCoord{sx, sy}] {
		t.Fatalf("expected center sector (%d,%d) to be included", sx, sy)
	}
}

func TestSectorsInRadiusGrowsWithRadius(t *testing.T) {
	g := NewGrid(config.SectorCountAlongEdge)
	x, y := float64(config.GameRadius), float64(config.GameRadius)
	small := g.SectorsInRadius(x, y, 100)
	large := g.SectorsInRadius(x, y, 5000)
	if len(large) <= len(small) {
		t.Fatalf("expected larger radius to cover more sectors: small=%d large=%d", len(small), len(large))
	}
}

func TestBoundBoxIntersects(t *testing.T) {
	a := BoundBox{X: 0, Y: 0, R: 10}
	b := BoundBox{X: 15, Y: 0, R: 10}
	if !a.Intersects(b) {
		t.Fatalf("expected overlapping circles to intersect")
	}
	c := BoundBox{X: 100, Y: 100, R: 5}
	if a.Intersects(c) {
		t.Fatalf("expected far circles not to intersect")
	}
}

func TestBoundBoxContains(t *testing.T) {
	b := BoundBox{X: 0, Y: 0, R: 10}
	if !b.Contains(5, 5) {
		t.Fatalf("expected (5,5) to be contained in radius-10 circle at origin")
	}
	if b.Contains(100, 100) {
		t.Fatalf("expected (100,100) not to be contained")
	}
}

func TestNeighborhoodVisitsEachSectorOnce(t *testing.T) {
	g := NewGrid(config.SectorCountAlongEdge)
	visits := 0
	g.Neighborhood(0, 0, 2, func(*Sector) { visits++ })
	// At the corner, the 5x5 block clamps offsets -2..2 to 0,0,0,1,2 on each
	// axis, leaving 3x3 = 9 distinct sectors; each must be visited once.
	if visits != 9 {
		t.Fatalf("Neighborhood at corner visited %d sectors, want 9", visits)
	}
}
