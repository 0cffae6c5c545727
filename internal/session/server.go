package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"slither-server/internal/config"
	"slither-server/internal/game"
	"slither-server/internal/wire"
)

// Server ties the simulation to the network: it owns the World, the set
// of live sessions, and the fixed-interval tick/broadcast loop.
type Server struct {
	World    *game.World
	Sessions *Manager
	cfg      config.Config
	log      zerolog.Logger

	tickCount uint64

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewServer builds a server bound to an already-constructed world.
func NewServer(cfg config.Config, world *game.World, log zerolog.Logger) *Server {
	return &Server{
		World:    world,
		Sessions: NewManager(),
		cfg:      cfg,
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
}

// AllowConnection reports whether ip may open a new connection, per the
// configured per-IP cooldown. Each IP gets a token-bucket limiter that
// refills one token every IPCooldownSec seconds.
func (srv *Server) AllowConnection(ip string) bool {
	srv.limiterMu.Lock()
	defer srv.limiterMu.Unlock()
	lim, ok := srv.limiters[ip]
	if !ok {
		every := rate.Every(time.Duration(srv.cfg.IPCooldownSec) * time.Second)
		lim = rate.NewLimiter(every, 1)
		srv.limiters[ip] = lim
	}
	return lim.Allow()
}

// Run drives the fixed-interval tick loop until ctx is canceled.
func (srv *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(config.TickIntervalMs) * time.Millisecond)
	defer ticker.Stop()
	last := time.Now()
	srv.log.Info().Int("interval_ms", config.TickIntervalMs).Msg("game loop started")
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Milliseconds()
			last = now
			srv.tick(dt)
			srv.reapDelayedDeaths()
		}
	}
}

func toFoodItem(f game.Food) wire.FoodItem {
	return wire.FoodItem{X: uint16(f.X), Y: uint16(f.Y), Size: f.Size, Color: f.Color}
}

// tick runs one world step and broadcasts its effects, holding the world
// lock for the whole pass so session handlers never observe a half-
// mutated tick.
func (srv *Server) tick(dtMs int64) {
	srv.World.Lock()
	defer srv.World.Unlock()

	res := srv.World.Tick(dtMs)
	srv.tickCount++

	sessions := srv.Sessions.Snapshot()

	for _, ev := range res.Eaten {
		item := toFoodItem(ev.Food)
		sec := srv.sectorOf(ev.Food.X, ev.Food.Y)
		for _, s := range sessions {
			if s.KnownSectors[sec] {
				_ = s.Send(wire.EncodeEatFood(s.Dialect, config.SectorSize, item, ev.EaterID))
			}
		}
	}

	for _, f := range res.BoostDrops {
		item := toFoodItem(f)
		sec := srv.sectorOf(f.X, f.Y)
		for _, s := range sessions {
			if s.KnownSectors[sec] {
				_ = s.Send(wire.EncodeSpawnFood(s.Dialect, config.SectorSize, item))
			}
		}
	}

	for _, f := range res.Spawned {
		item := toFoodItem(f)
		sec := srv.sectorOf(f.X, f.Y)
		for _, s := range sessions {
			if s.KnownSectors[sec] {
				_ = s.Send(wire.EncodeAddFood(s.Dialect, config.SectorSize, item))
			}
		}
	}

	for _, d := range res.Deaths {
		for _, f := range d.BurstFood {
			item := toFoodItem(f)
			sec := srv.sectorOf(f.X, f.Y)
			for _, s := range sessions {
				if s.KnownSectors[sec] {
					_ = s.Send(wire.EncodeSpawnFood(s.Dialect, config.SectorSize, item))
				}
			}
		}
		removeBody := wire.EncodeRemoveSnake(d.SnakeID, wire.StatusSnakeDied)
		for _, s := range sessions {
			if s.KnownSnakes[d.SnakeID] {
				_ = s.Send(removeBody)
				delete(s.KnownSnakes, d.SnakeID)
			}
		}
		if !d.IsBot {
			if sess, ok := srv.Sessions.BySnake(d.SnakeID); ok {
				sess.DeathAt = time.Now()
				_ = sess.Send(wire.EncodeEndOfGame(wire.EndOfGameDeath))
			}
		} else if srv.cfg.BotRespawn {
			srv.World.CreateSnake(d.BotRespawnName, 0, nil, true, srv.cfg.BotSnakeStartScore)
		}
	}

	for _, sess := range sessions {
		if !sess.HasSnake {
			continue
		}
		snake, ok := srv.World.Snakes[sess.SnakeID]
		if !ok {
			continue
		}
		srv.updateViewport(sess, snake)
		srv.broadcastSnakeState(snake)
		snake.Dirty = 0
	}

	ticksPerLeaderboard := int64(config.LeaderboardIntervalMs / config.TickIntervalMs)
	if ticksPerLeaderboard > 0 && int64(srv.tickCount)%ticksPerLeaderboard == 0 {
		srv.broadcastLeaderboard(sessions)
	}
	ticksPerMinimap := int64(config.MinimapIntervalMs / config.TickIntervalMs)
	if ticksPerMinimap > 0 && int64(srv.tickCount)%ticksPerMinimap == 0 {
		srv.broadcastMinimap(sessions)
	}
}

func (srv *Server) sectorOf(x, y float64) game.SectorCoord {
	sx, sy := srv.World.Grid.CoordFor(x, y)
	return game.SectorCoord{SX: sx, SY: sy}
}

// updateViewport diffs a session's known sector set against its snake's
// current viewport and sends add/remove-sector plus the initial food dump
// for newly entered sectors, then diffs visible snakes the same way.
func (srv *Server) updateViewport(sess *Session, snake *game.Snake) {
	head := snake.Head()
	next := srv.World.ViewSectors(head.X, head.Y, snake.VP.R)

	for c := range next {
		if !sess.KnownSectors[c] {
			_ = sess.Send(wire.EncodeSectorDelta(true, uint8(c.SX), uint8(c.SY)))
			items := srv.World.FoodInSector(c)
			if len(items) > 0 {
				fi := make([]wire.FoodItem, len(items))
				for i, f := range items {
					fi[i] = toFoodItem(f)
				}
				_ = sess.Send(wire.EncodeSetFood(sess.Dialect, config.SectorSize, fi))
			}
		}
	}
	for c := range sess.KnownSectors {
		if !next[c] {
			_ = sess.Send(wire.EncodeSectorDelta(false, uint8(c.SX), uint8(c.SY)))
		}
	}
	sess.KnownSectors = next

	visible := make(map[uint16]bool)
	for c := range next {
		for _, id := range srv.World.SnakeIDsInSector(c) {
			visible[id] = true
		}
	}

	for id := range visible {
		if sess.KnownSnakes[id] {
			continue
		}
		other, ok := srv.World.Snakes[id]
		if !ok {
			continue
		}
		_ = sess.Send(srv.encodeAddSnake(other))
		sess.KnownSnakes[id] = true
	}
	for id := range sess.KnownSnakes {
		if visible[id] {
			continue
		}
		if _, stillAlive := srv.World.Snakes[id]; stillAlive {
			_ = sess.Send(wire.EncodeRemoveSnake(id, wire.StatusSnakeLeft))
		}
		delete(sess.KnownSnakes, id)
	}
}

func (srv *Server) encodeAddSnake(s *game.Snake) []byte {
	parts := make([]wire.Point, len(s.Parts))
	for i, p := range s.Parts {
		parts[i] = wire.Point{X: p.X, Y: p.Y}
	}
	head := s.Head()
	return wire.EncodeAddSnake(wire.AddSnakeParams{
		ID:         s.ID,
		Angle:      s.Angle,
		Wangle:     s.Wangle,
		Speed:      uint16(s.Speed),
		Fullness:   uint16(s.Fullness),
		Skin:       s.Skin,
		HeadX:      head.X,
		HeadY:      head.Y,
		Name:       s.Name,
		CustomSkin: s.CustomSkin,
		Parts:      parts,
	})
}

// broadcastSnakeState emits the movement/rotation/fullness packets every
// session that already knows about this snake needs this tick. Every
// session currently tracking the snake (including its own controller)
// gets the position update; rotation/fullness piggyback on the dirty
// bitmask set during World.Tick.
func (srv *Server) broadcastSnakeState(snake *game.Snake) {
	head := snake.Head()
	moveBody := wire.EncodeMoveAbsolute(snake.ID, head.X, head.Y)
	for _, other := range srv.Sessions.Snapshot() {
		if other.KnownSnakes[snake.ID] || other.SnakeID == snake.ID {
			_ = other.Send(moveBody)
			if snake.Dirty&(game.DirtyAngle|game.DirtyWangle|game.DirtySpeed) != 0 {
				_ = other.Send(wire.EncodeRotation(wire.RotationParams{
					ID:        snake.ID,
					Angle:     snake.Angle,
					Wangle:    snake.Wangle,
					Speed:     snake.Speed / 32.0,
					HasAngle:  snake.Dirty&game.DirtyAngle != 0,
					HasWangle: snake.Dirty&game.DirtyWangle != 0,
					HasSpeed:  snake.Dirty&game.DirtySpeed != 0,
				}))
			}
			if snake.Dirty&game.DirtyFullness != 0 {
				_ = other.Send(wire.EncodeFullness(snake.ID, uint16(snake.Fullness)))
			}
			if snake.Dirty&game.DirtyGrew != 0 {
				_ = other.Send(wire.EncodeGrow(snake.ID, head.X, head.Y))
			}
			if snake.Dirty&game.DirtyShrank != 0 {
				_ = other.Send(wire.EncodeRemovePart(snake.ID))
			}
		}
	}
}

func (srv *Server) broadcastLeaderboard(sessions []*Session) {
	ranked := srv.World.Leaderboard(srv.World.PlayerCount())
	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	entries := make([]wire.LeaderboardEntry, len(top))
	for i, e := range top {
		skin := uint8(0)
		fullness := uint16(0)
		if s, ok := srv.World.Snakes[e.SnakeID]; ok {
			skin = s.Skin
			fullness = uint16(s.Fullness)
		}
		entries[i] = wire.LeaderboardEntry{Length: uint16(e.Score), Fullness: fullness, Skin: skin, Name: e.Name}
	}
	total := uint16(srv.World.PlayerCount())
	for _, sess := range sessions {
		rank := uint16(0)
		topRank := uint8(0)
		for i, e := range ranked {
			if e.SnakeID == sess.SnakeID {
				rank = uint16(i + 1)
				if i < len(top) {
					topRank = uint8(i + 1)
				}
			}
		}
		_ = sess.Send(wire.EncodeLeaderboard(topRank, rank, total, entries))
	}
}

// minimapPartStride is how sparsely a snake's body is sampled into the
// minimap occupancy bitmap (spec: "live snake body parts sampled every
// 4th segment").
const minimapPartStride = 4

func (srv *Server) broadcastMinimap(sessions []*Session) {
	byDialect := map[wire.Dialect][]byte{}
	for _, sess := range sessions {
		if _, ok := byDialect[sess.Dialect]; ok {
			continue
		}
		dim := int(sess.Dialect.MinimapDim())
		grid := make([]byte, dim*dim)
		worldSpan := float64(config.GameRadius * 2)
		for _, s := range srv.World.Snakes {
			if !s.Alive {
				continue
			}
			for i := 0; i < len(s.Parts); i += minimapPartStride {
				p := s.Parts[i]
				px := int(p.X / worldSpan * float64(dim))
				py := int(p.Y / worldSpan * float64(dim))
				if px >= 0 && px < dim && py >= 0 && py < dim {
					grid[py*dim+px] = 1
				}
			}
		}
		byDialect[sess.Dialect] = wire.EncodeMinimap(sess.Dialect, uint16(dim), grid)
	}
	for _, sess := range sessions {
		_ = sess.Send(byDialect[sess.Dialect])
	}
}

// reapDelayedDeaths closes the transport for human sessions
// DeathCleanupDelayMs after their snake died (the end-of-game packet was
// already sent at death time) and frees the snake slot.
func (srv *Server) reapDelayedDeaths() {
	cutoff := time.Duration(config.DeathCleanupDelayMs) * time.Millisecond
	for _, sess := range srv.Sessions.Snapshot() {
		if sess.DeathAt.IsZero() {
			continue
		}
		if time.Since(sess.DeathAt) < cutoff {
			continue
		}
		sess.HasSnake = false
		sess.DeathAt = time.Time{}
		sess.Close()
	}
}
