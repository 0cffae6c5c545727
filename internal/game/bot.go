package game

import (
	"math"
	"math/rand"

	"slither-server/internal/config"
	"slither-server/internal/mathutil"
)

// BotState marks a snake as bot-controlled. Its only field is the name a
// respawned bot reuses; the AI cycle itself keeps no state here between
// the accumulator-gated 250ms steps, reading and writing through the
// owning Snake.
type BotState struct {
	RespawnName string
}

// TickAI runs the periodic bot perceive/steer cycle, gated by the snake's
// own 250ms AI accumulator.
func (w *World) TickAI(s *Snake, dtMs int64) {
	if s.Bot == nil || !s.Alive {
		return
	}
	s.aiAccMs += dtMs
	for s.aiAccMs >= config.AIStepIntervalMs {
		s.aiAccMs -= config.AIStepIntervalMs
		w.botFindFood(s)
		w.botCheckCollision(s)
	}
}

// botFindFood scans the 5x5 sector neighborhood around the head, scores
// candidate food by size^2/(dist^2+1), and steers toward the best one,
// ignoring food that would force an unsafe tight turn (BotFindFood).
func (w *World) botFindFood(s *Snake) {
	head := s.Head()
	sx, sy := w.Grid.CoordFor(head.X, head.Y)

	turnRadius := s.Speed * 0.033 / config.SnakeAngularSpeed
	minSafeDistSq := turnRadius * turnRadius

	var bestScore float64
	var bestAngle float64
	found := false

	w.Grid.Neighborhood(sx, sy, config.BotFoodSectorRadius, func(sec *Sector) {
		for _, f := range sec.Food {
			dx := f.X - head.X
			dy := f.Y - head.Y
			distSq := dx*dx + dy*dy
			score := float64(f.Size) * float64(f.Size) / (distSq + 1)
			if score <= bestScore {
				continue
			}
			if distSq < minSafeDistSq {
				angleToFood := math.Atan2(dy, dx)
				diff := mathutil.NormalizeAngle(angleToFood - s.Angle)
				if diff > mathutil.Pi {
					diff -= mathutil.Pi2
				}
				if math.Abs(diff) > mathutil.Pi/4 {
					continue
				}
			}
			bestScore = score
			bestAngle = math.Atan2(dy, dx)
			found = true
		}
	})

	if found {
		s.SetWangle(bestAngle)
	}
	s.SetBoosting(s.Fullness > config.BotBoostFullness && bestScore > config.BotMinScore)
}

// botCheckCollision projects a whisker ahead of the head and steers away
// from the arena boundary or from any body it would otherwise cross.
func (w *World) botCheckCollision(s *Snake) {
	head := s.Head()

	lookAhead := s.LengthSize()*4 + s.Speed*0.4
	whisker := Point{
		X: head.X + math.Cos(s.Angle)*lookAhead,
		Y: head.Y + math.Sin(s.Angle)*lookAhead,
	}

	cx := float64(config.GameRadius)
	cy := float64(config.GameRadius)
	if dist2(whisker, Point{X: cx, Y: cy}) > float64(config.DeathRadius)*float64(config.DeathRadius) {
		s.SetWangle(math.Atan2(cy-head.Y, cx-head.X))
		return
	}

	wx, wy := w.Grid.CoordFor(whisker.X, whisker.Y)
	selfR := s.BodyPartRadius()

	hit := false
	w.Grid.Neighborhood(wx, wy, 1, func(sec *Sector) {
		if hit {
			return
		}
		for otherID, bb := range sec.Snakes {
			if otherID == s.ID {
				continue
			}
			if math.Abs(whisker.X-bb.X) > bb.R+50 || math.Abs(whisker.Y-bb.Y) > bb.R+50 {
				continue
			}
			other, ok := w.Snakes[otherID]
			if !ok {
				continue
			}
			hitR := selfR + other.BodyPartRadius() + 40
			hitR2 := hitR * hitR
			for _, part := range other.Parts {
				if dist2(whisker, part) < hitR2 {
					hit = true
					break
				}
			}
			if hit {
				break
			}
		}
	})

	if hit {
		if rand.Intn(2) == 0 {
			s.SetWangle(s.Angle + mathutil.Pi/1.5)
		} else {
			s.SetWangle(s.Angle - mathutil.Pi/1.5)
		}
	}
}
