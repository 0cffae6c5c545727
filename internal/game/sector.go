package game

import "slither-server/internal/config"

// SectorCoord identifies one cell of the uniform grid covering the arena.
type SectorCoord struct{ SX, SY int }

// Sector holds everything spatially indexed at one grid cell: the food
// sitting in it and the bounding circles of snake body parts currently
// passing through it, keyed by snake ID so a snake's stale entry can be
// replaced in O(1) each tick.
type Sector struct {
	Food            map[uint32]*Food
	MaxFoodCapacity int
	Snakes          map[uint16]BoundBox
}

func newSector() *Sector {
	return &Sector{
		Food:   make(map[uint32]*Food),
		Snakes: make(map[uint16]BoundBox),
	}
}

// Grid is the sectorCountAlongEdge x sectorCountAlongEdge uniform grid.
type Grid struct {
	dim     int
	sectors [][]*Sector
}

// NewGrid allocates a dim x dim grid of empty sectors.
func NewGrid(dim int) *Grid {
	g := &Grid{dim: dim, sectors: make([][]*Sector, dim)}
	for i := range g.sectors {
		g.sectors[i] = make([]*Sector, dim)
		for j := range g.sectors[i] {
			g.sectors[i][j] = newSector()
		}
	}
	return g
}

func (g *Grid) Dim() int { return g.dim }

func clampSector(v, dim int) int {
	if v < 0 {
		return 0
	}
	if v >= dim {
		return dim - 1
	}
	return v
}

// CoordFor returns the sector indices containing world point (x,y).
func (g *Grid) CoordFor(x, y float64) (int, int) {
	sx := clampSector(int(x)/config.SectorSize, g.dim)
	sy := clampSector(int(y)/config.SectorSize, g.dim)
	return sx, sy
}

// At returns the sector at (sx,sy), clamping out-of-range indices to the
// grid edge so callers scanning a neighborhood near the border don't need
// to special-case it.
func (g *Grid) At(sx, sy int) *Sector {
	return g.sectors[clampSector(sx, g.dim)][clampSector(sy, g.dim)]
}

// SectorsInRadius returns the square block of sector coordinates centered
// on (x,y)'s sector and extending int(radius/SectorSize)+1 sectors in each
// direction (clamped to the grid), used to compute a snake's current
// viewport membership. Corner sectors of the block may lie farther than
// radius from (x,y).
func (g *Grid) SectorsInRadius(x, y, radius float64) map[SectorCoord]bool {
	span := int(radius/config.SectorSize) + 1
	sx, sy := g.CoordFor(x, y)
	out := make(map[SectorCoord]bool, (2*span+1)*(2*span+1))
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			cx, cy := clampSector(sx+dx, g.dim), clampSector(sy+dy, g.dim)
			out[SectorCoord{cx, cy}] = true
		}
	}
	return out
}

// Neighborhood calls fn once for every distinct sector in the
// (2*radius+1)^2 block centered on (sx,sy), clamped to the grid and
// deduplicated against edge clamping.
func (g *Grid) Neighborhood(sx, sy, radius int, fn func(*Sector)) {
	seen := make(map[*Sector]bool, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			s := g.At(sx+dx, sy+dy)
			if !seen[s] {
				seen[s] = true
				fn(s)
			}
		}
	}
}
