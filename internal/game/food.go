package game

import (
	"math"
	"math/rand"

	"slither-server/internal/config"
)

// Food is a single pellet.
type Food struct {
	ID    uint32
	X, Y  float64
	Size  uint8
	Color uint8
}

func randFoodColor() uint8 {
	return uint8(rand.Intn(config.FoodMaxColor + 1))
}

// initFoodSize returns a size drawn uniformly from [1,10] for the initial
// fill.
func initFoodSize() uint8 {
	return uint8(1 + rand.Intn(config.FoodMaxSizeInitial))
}

// spawnFoodSize returns a size in [1,5] for regen/natural spawns.
func spawnFoodSize() uint8 {
	return uint8(1 + rand.Intn(config.FoodMaxSizeSpawn))
}

// initFoodCapacity computes a sector's max pellet count as twice a density
// that falls with the sector's distance from the grid center, floored at
// 20. Density never exceeds 10, so the floor of 20 applies to every sector.
func initFoodCapacity(sx, sy, dim int) int {
	cx := float64(dim) / 2
	cy := float64(dim) / 2
	dx := float64(sx) - cx
	dy := float64(sy) - cy
	distSq := dx*dx + dy*dy
	n := float64(dim)
	densityProb := 1 - distSq/(n*n)
	if densityProb < 0 {
		densityProb = 0
	}
	density := math.Floor(densityProb * 10)
	cap := int(density) * 2
	if cap < 20 {
		cap = 20
	}
	return cap
}

// withinPlayableRadius reports whether (x,y) is inside the arena minus the
// food placement margin — food never spawns in the outer death band.
func withinPlayableRadius(x, y float64) bool {
	cx := float64(config.GameRadius)
	cy := float64(config.GameRadius)
	dx := x - cx
	dy := y - cy
	limit := float64(config.GameRadius - config.FoodPlayableMargin)
	return dx*dx+dy*dy <= limit*limit
}
