package game

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"slither-server/internal/config"
	"slither-server/internal/mathutil"
)

// EatEvent records one pellet consumed by one snake this tick, used by the
// broadcast layer to emit the 'c' eat-food packet before removing it from
// any viewport still holding it.
type EatEvent struct {
	Food    Food
	EaterID uint16
}

// Death records a snake that died or disconnected this tick. BurstFood
// holds the pellets scattered from its body, which the broadcast layer
// must send before the remove-snake packet (spec death-ordering rule).
type Death struct {
	SnakeID        uint16
	IsBot          bool
	Status         uint8
	BurstFood      []Food
	BotRespawnName string
}

// TickResult is everything that happened in one World.Tick call, in the
// order the broadcast layer must honor: eaten food, boost-drop food,
// naturally spawned food, then deaths (each already carrying its burst
// food).
type TickResult struct {
	Eaten      []EatEvent
	BoostDrops []Food
	Spawned    []Food
	Deaths     []Death
}

// World holds all mutable simulation state behind a single mutex — per
// spec, inbound message handling may run concurrently but must take this
// lock to touch snakes, sectors, or food.
type World struct {
	mu sync.Mutex

	Grid   *Grid
	Snakes map[uint16]*Snake

	nextSnakeID uint16
	nextFoodID  uint32

	cfg config.Config
}

// NewWorld builds an empty arena, fills it with initial food, and returns
// it ready to accept snakes.
func NewWorld(cfg config.Config) *World {
	w := &World{
		Grid:   NewGrid(config.SectorCountAlongEdge),
		Snakes: make(map[uint16]*Snake),
		cfg:    cfg,
	}
	w.initFood()
	return w
}

// Lock/Unlock expose the world mutex directly to the session layer, which
// needs to hold it across a read-modify-write spanning several World
// methods (e.g. handling one client packet).
func (w *World) Lock()   { w.mu.Lock() }
func (w *World) Unlock() { w.mu.Unlock() }

func (w *World) allocFoodID() uint32 {
	w.nextFoodID++
	return w.nextFoodID
}

func (w *World) allocSnakeID() uint16 {
	w.nextSnakeID++
	return w.nextSnakeID
}

// initFood fills every sector toward its density-derived capacity.
// Candidate points outside the playable disk are rejected, and each sector
// gets a bounded number of placement attempts, so sectors that straddle or
// lie beyond the rim end up with fewer pellets (or none).
func (w *World) initFood() {
	const attemptsPerPellet = 4
	dim := w.Grid.Dim()
	for sx := 0; sx < dim; sx++ {
		for sy := 0; sy < dim; sy++ {
			sec := w.Grid.At(sx, sy)
			sec.MaxFoodCapacity = initFoodCapacity(sx, sy, dim)
			maxAttempts := sec.MaxFoodCapacity * attemptsPerPellet
			for attempt := 0; attempt < maxAttempts && len(sec.Food) < sec.MaxFoodCapacity; attempt++ {
				x := (float64(sx) + rand.Float64()) * config.SectorSize
				y := (float64(sy) + rand.Float64()) * config.SectorSize
				if !withinPlayableRadius(x, y) {
					continue
				}
				f := &Food{ID: w.allocFoodID(), X: x, Y: y, Size: initFoodSize(), Color: randFoodColor()}
				sec.Food[f.ID] = f
			}
		}
	}
}

// CreateSnake finds a safe spawn point and adds a new snake to the world.
// Up to SpawnMaxAttempts candidates are tried (World::CreateSnake); the
// last candidate is used even if unsafe rather than failing outright.
func (w *World) CreateSnake(name string, skin uint8, customSkin []byte, isBot bool, startScore uint16) *Snake {
	cx := float64(config.GameRadius)
	cy := float64(config.GameRadius)
	maxSpawnRadius := float64(config.GameRadius - config.SpawnEdgeBuffer)

	var hx, hy float64
	for attempt := 0; attempt < config.SpawnMaxAttempts; attempt++ {
		angle := rand.Float64() * mathutil.Pi2
		dist := float64(config.SpawnMinRadius) + math.Sqrt(rand.Float64())*(maxSpawnRadius-float64(config.SpawnMinRadius))
		hx = cx + dist*math.Cos(angle)
		hy = cy + dist*math.Sin(angle)
		if w.isLocationSafe(hx, hy) {
			break
		}
	}

	heading := mathutil.NormalizeAngle(math.Atan2(cy-hy, cx-hx) + (rand.Float64()*1.5 - 0.75))

	id := w.allocSnakeID()
	s := NewSnake(id, name, skin, customSkin, isBot, hx, hy, heading, startScore)
	if isBot {
		s.Bot = &BotState{}
	}
	w.Snakes[id] = s
	w.reindexSnake(s)
	return s
}

// isLocationSafe reports whether a candidate spawn point is far enough
// from every other snake's head (World::IsLocationSafe).
func (w *World) isLocationSafe(x, y float64) bool {
	sx, sy := w.Grid.CoordFor(x, y)
	safe := true
	safetyR2 := float64(config.SpawnSafetyBuffer) * float64(config.SpawnSafetyBuffer)
	w.Grid.Neighborhood(sx, sy, 1, func(sec *Sector) {
		if !safe {
			return
		}
		for otherID := range sec.Snakes {
			other, ok := w.Snakes[otherID]
			if !ok || len(other.Parts) == 0 {
				continue
			}
			if dist2(Point{X: x, Y: y}, other.Head()) < safetyR2 {
				safe = false
				return
			}
		}
	})
	return safe
}

// reindexSnake re-registers a snake's bounding circle in every sector its
// body currently occupies, clearing its entries from sectors it has since
// left.
func (w *World) reindexSnake(s *Snake) {
	for _, c := range s.occupied {
		delete(w.Grid.At(c.SX, c.SY).Snakes, s.ID)
	}

	seen := make(map[SectorCoord]bool, len(s.Parts))
	next := s.occupied[:0]
	for _, p := range s.Parts {
		sx, sy := w.Grid.CoordFor(p.X, p.Y)
		c := SectorCoord{sx, sy}
		if seen[c] {
			continue
		}
		seen[c] = true
		w.Grid.At(sx, sy).Snakes[s.ID] = s.SBB
		next = append(next, c)
	}
	s.occupied = next
}

func (w *World) unindexSnake(s *Snake) {
	for _, c := range s.occupied {
		delete(w.Grid.At(c.SX, c.SY).Snakes, s.ID)
	}
	s.occupied = nil
}

// RemoveSnake drops a snake from the world without running death effects
// (used for a clean disconnect, status left rather than died).
func (w *World) RemoveSnake(id uint16) {
	s, ok := w.Snakes[id]
	if !ok {
		return
	}
	w.unindexSnake(s)
	delete(w.Snakes, id)
}

// Tick advances every snake by dtMs of virtual frame time, runs collision
// and eating passes, spawns death-burst and natural food, and returns
// everything that happened in broadcast order.
func (w *World) Tick(dtMs int64) TickResult {
	var res TickResult

	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		w.TickAI(s, dtMs)
		if s.Tick(dtMs) {
			w.reindexSnake(s)
			if s.Boosting {
				res.BoostDrops = append(res.BoostDrops, w.DropBoost(s, float64(w.cfg.BoostCost), w.cfg.BoostDropSize)...)
			}
		}
	}

	var died []*Snake
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		if w.checkSnakeBounds(s) {
			s.Alive = false
			died = append(died, s)
		}
	}

	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		res.Eaten = append(res.Eaten, w.eatFood(s)...)
	}

	for _, s := range died {
		burst := w.spawnDeathFood(s)
		w.unindexSnake(s)
		delete(w.Snakes, s.ID)
		botName := ""
		if s.Bot != nil {
			botName = s.Bot.RespawnName
		}
		res.Deaths = append(res.Deaths, Death{
			SnakeID:        s.ID,
			IsBot:          s.IsBot,
			Status:         1,
			BurstFood:      burst,
			BotRespawnName: botName,
		})
	}

	res.Spawned = append(res.Spawned, w.regenerateFood()...)

	return res
}

// checkSnakeBounds reports whether s has died this tick, either by
// crossing the death radius or by colliding with another snake's body
// (World::CheckSnakeBounds).
func (w *World) checkSnakeBounds(s *Snake) bool {
	head := s.Head()
	tip := Point{
		X: head.X + math.Cos(s.Angle)*s.LengthSize()/2,
		Y: head.Y + math.Sin(s.Angle)*s.LengthSize()/2,
	}
	cx := float64(config.GameRadius)
	cy := float64(config.GameRadius)
	if dist2(tip, Point{X: cx, Y: cy}) > float64(config.DeathRadius)*float64(config.DeathRadius) {
		return true
	}

	sx, sy := w.Grid.CoordFor(head.X, head.Y)
	selfR := s.BodyPartRadius()
	prevHead := head
	if len(s.Parts) > 1 {
		moveDist := math.Max(5, s.Speed*float64(config.FrameTimeMs)/1000.0)
		prevHead = Point{X: head.X - math.Cos(s.Angle)*moveDist, Y: head.Y - math.Sin(s.Angle)*moveDist}
	}

	died := false
	w.Grid.Neighborhood(sx, sy, 1, func(sec *Sector) {
		if died {
			return
		}
		for otherID, bb := range sec.Snakes {
			if otherID == s.ID {
				continue
			}
			if !s.SBB.Intersects(bb) {
				continue
			}
			other, ok := w.Snakes[otherID]
			if !ok || !other.Alive {
				continue
			}
			hitR := selfR + other.BodyPartRadius()
			hitR2 := hitR * hitR
			for i := 1; i < len(other.Parts); i++ {
				if dist2(head, other.Parts[i]) < hitR2 {
					died = true
					break
				}
				if mathutil.SegmentsIntersect(
					prevHead.X, prevHead.Y, head.X, head.Y,
					other.Parts[i-1].X, other.Parts[i-1].Y, other.Parts[i].X, other.Parts[i].Y,
				) {
					died = true
					break
				}
			}
			if died {
				break
			}
		}
	})
	return died
}

// eatFood scans the food around s's mouth and consumes whatever falls
// within the eat radius.
func (w *World) eatFood(s *Snake) []EatEvent {
	mouth := s.MouthPoint()
	eatR2 := s.EatRadiusSq()
	sx, sy := w.Grid.CoordFor(mouth.X, mouth.Y)

	var events []EatEvent
	w.Grid.Neighborhood(sx, sy, 1, func(sec *Sector) {
		for id, f := range sec.Food {
			if dist2(mouth, Point{X: f.X, Y: f.Y}) > eatR2 {
				continue
			}
			s.Grow(float64(f.Size))
			events = append(events, EatEvent{Food: *f, EaterID: s.ID})
			delete(sec.Food, id)
		}
	})
	return events
}

// spawnDeathFood scatters a snake's body into food pellets on death: every
// body part yields sc*2 pellets of size 100/count, each offset from the
// part uniformly in [-2*sbpr, +sbpr] on both axes.
func (w *World) spawnDeathFood(s *Snake) []Food {
	count := int(s.sc * 2)
	if count < 1 {
		count = 1
	}
	size := uint8(math.Max(1, 100/float64(count)))
	r := s.BodyPartRadius()
	r2 := r * 3

	var burst []Food
	for _, part := range s.Parts {
		if math.IsNaN(part.X) || math.IsNaN(part.Y) {
			continue
		}
		for i := 0; i < count; i++ {
			x := part.X + r - rand.Float64()*r2
			y := part.Y + r - rand.Float64()*r2
			if !withinPlayableRadius(x, y) {
				continue
			}
			f := Food{ID: w.allocFoodID(), X: x, Y: y, Size: size, Color: randFoodColor()}
			sx, sy := w.Grid.CoordFor(x, y)
			sec := w.Grid.At(sx, sy)
			sec.Food[f.ID] = &f
			burst = append(burst, f)
		}
	}
	return burst
}

// DropBoost applies a boost-cost tick to s, spawning a small pellet at
// each tail part the boost consumes.
func (w *World) DropBoost(s *Snake, cost float64, dropSize uint8) []Food {
	dropped := s.Shrink(cost)
	var out []Food
	for _, p := range dropped {
		f := Food{ID: w.allocFoodID(), X: p.X, Y: p.Y, Size: dropSize, Color: randFoodColor()}
		sx, sy := w.Grid.CoordFor(p.X, p.Y)
		w.Grid.At(sx, sy).Food[f.ID] = &f
		out = append(out, f)
	}
	return out
}

// regenerateFood runs the natural spawn policy up to FoodSpawnRate times
// per tick: each attempt places a pellet near a random snake's head,
// directly on it, or fully at random, weighted by the configured
// probabilities, skipping attempts whose target sector is already at
// capacity or whose position falls outside the playable disk
// (World::RegenerateFood).
func (w *World) regenerateFood() []Food {
	near, on, rnd := w.cfg.SpawnProbNear, w.cfg.SpawnProbOn, w.cfg.SpawnProbRandom
	total := near + on + rnd
	if total <= 0 {
		near, on, rnd, total = 25, 25, 50, 100
	}

	dim := w.Grid.Dim()
	var spawned []Food
	for i := 0; i < w.cfg.FoodSpawnRate; i++ {
		var sx, sy int
		pick := rand.Intn(total)
		switch {
		case pick < near:
			hx, hy, ok := w.randomSnakeHead()
			if !ok {
				continue
			}
			bx, by := w.Grid.CoordFor(hx, hy)
			sx = clampSector(bx+rand.Intn(3)-1, dim)
			sy = clampSector(by+rand.Intn(3)-1, dim)
		case pick < near+on:
			hx, hy, ok := w.randomSnakeHead()
			if !ok {
				continue
			}
			sx, sy = w.Grid.CoordFor(hx, hy)
		default:
			sx = rand.Intn(dim)
			sy = rand.Intn(dim)
		}

		sec := w.Grid.At(sx, sy)
		if len(sec.Food) >= sec.MaxFoodCapacity {
			continue
		}
		x := (float64(sx) + rand.Float64()) * config.SectorSize
		y := (float64(sy) + rand.Float64()) * config.SectorSize
		cx := float64(config.GameRadius)
		cy := float64(config.GameRadius)
		limit := float64(config.GameRadius - 500)
		if dist2(Point{X: x, Y: y}, Point{X: cx, Y: cy}) > limit*limit {
			continue
		}
		f := Food{ID: w.allocFoodID(), X: x, Y: y, Size: spawnFoodSize(), Color: randFoodColor()}
		sec.Food[f.ID] = &f
		spawned = append(spawned, f)
	}
	return spawned
}

func (w *World) randomSnakeHead() (float64, float64, bool) {
	if len(w.Snakes) == 0 {
		return 0, 0, false
	}
	n := rand.Intn(len(w.Snakes))
	i := 0
	for _, s := range w.Snakes {
		if i == n {
			h := s.Head()
			return h.X, h.Y, true
		}
		i++
	}
	return 0, 0, false
}

// LeaderboardEntry is one ranked snake.
type LeaderboardEntry struct {
	SnakeID uint16
	Name    string
	Score   int
}

// Leaderboard returns up to n snakes sorted by score, descending.
func (w *World) Leaderboard(n int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(w.Snakes))
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		entries = append(entries, LeaderboardEntry{SnakeID: s.ID, Name: s.Name, Score: s.Score()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// PlayerCount returns the number of currently alive snakes.
func (w *World) PlayerCount() int { return len(w.Snakes) }

// SnakeIDsInSector returns the snakes currently indexed in one sector.
func (w *World) SnakeIDsInSector(c SectorCoord) []uint16 {
	sec := w.Grid.At(c.SX, c.SY)
	ids := make([]uint16, 0, len(sec.Snakes))
	for id := range sec.Snakes {
		ids = append(ids, id)
	}
	return ids
}

// FoodInSector returns a snapshot of the food sitting in one sector.
func (w *World) FoodInSector(c SectorCoord) []Food {
	sec := w.Grid.At(c.SX, c.SY)
	items := make([]Food, 0, len(sec.Food))
	for _, f := range sec.Food {
		items = append(items, *f)
	}
	return items
}

// ViewSectors returns the sector set a viewer centered on (x,y) with
// bounding radius r should know about.
func (w *World) ViewSectors(x, y, r float64) map[SectorCoord]bool {
	return w.Grid.SectorsInRadius(x, y, r)
}
