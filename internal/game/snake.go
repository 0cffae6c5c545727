package game

import (
	"math"

	"slither-server/internal/config"
	"slither-server/internal/mathutil"
)

// Dirty flags record which aspects of a snake changed this tick so the
// broadcast pass can emit only the packets that need to go out, then are
// cleared once handled.
type DirtyFlags uint32

const (
	DirtyAngle DirtyFlags = 1 << iota
	DirtyWangle
	DirtySpeed
	DirtyFullness
	DirtyGrew
	DirtyShrank
)

// bodyBaseDiameter is the sum of the fixed-length first body segments used
// when computing the body bounding circle.
const bodyBaseDiameter = 42 + 42 + 42 + 37.7 + 37.7 + 33.0 + 28.5

// Snake is one player's (or bot's) body and kinematic state.
type Snake struct {
	ID         uint16
	Name       string
	Skin       uint8
	CustomSkin []byte
	IsBot      bool
	Alive      bool

	Parts  []Point // index 0 = head
	Angle  float64 // current heading, radians
	Wangle float64 // wanted heading set from client input
	Speed  float64

	Boosting    bool
	Fullness    float64 // 0..100, continuous; wraps into growth at 100
	TargetScore uint16  // initial length, floors the score/shrink-limit calc

	Dirty DirtyFlags

	// Recalculated by updateConsts whenever the part count changes.
	sc, sc13, lsz, gsc, scang, ssp, fsp, sbpr float64

	SBB BoundBox // body bounding circle
	VP  BoundBox // viewport bounding circle

	moveAccMs int64
	rotAccMs  int64
	aiAccMs   int64

	occupied []SectorCoord // sectors this snake is currently indexed in

	Bot *BotState // nil for human-controlled snakes
}

// NewSnake places a fresh snake with its head at (headX,headY) and body
// trailing along -heading: the first PartsSkipCount+PartsStartMoveCount
// segments at MoveStepDistance spacing, the remainder at the wider
// TailStepDistance.
func NewSnake(id uint16, name string, skin uint8, customSkin []byte, isBot bool, headX, headY, heading float64, startScore uint16) *Snake {
	s := &Snake{
		ID:          id,
		Name:        name,
		Skin:        skin,
		CustomSkin:  customSkin,
		IsBot:       isBot,
		Alive:       true,
		Angle:       heading,
		Wangle:      heading,
		Speed:       float64(config.BaseMoveSpeed),
		TargetScore: startScore,
	}
	closeParts := config.PartsSkipCount + config.PartsStartMoveCount
	n := int(startScore)
	if n < closeParts+1 {
		n = closeParts + 1
	}
	parts := make([]Point, n)
	cx, cy := headX, headY
	dx := math.Cos(heading)
	dy := math.Sin(heading)
	for i := 0; i < n; i++ {
		var step float64
		if i <= closeParts {
			step = float64(i) * float64(config.MoveStepDistance)
		} else {
			step = float64(closeParts)*float64(config.MoveStepDistance) + float64(i-closeParts)*config.TailStepDistance
		}
		parts[i] = Point{X: cx - dx*step, Y: cy - dy*step}
	}
	s.Parts = parts
	s.updateConsts()
	s.updateBoundingBoxes()
	return s
}

// updateConsts recomputes the per-snake derived constants that key off
// current part count.
func (s *Snake) updateConsts() {
	sct := float64(len(s.Parts))
	sc := math.Min(6, 1+(sct-2)/106)
	if sc < 1 {
		sc = 1
	}
	s.sc = sc
	s.sc13 = math.Pow(sc, 1.3)
	s.lsz = 29 * sc
	s.gsc = 0.5 + 0.4/math.Max(1, (sct+16)/36)
	scangX := (7 - sc) / 6
	s.scang = 0.13 + 0.87*scangX*scangX
	s.ssp = config.Nsp1 + config.Nsp2*sc
	s.fsp = s.ssp + 0.1
	s.sbpr = s.lsz * 0.5
}

// updateBoundingBoxes recomputes the body and viewport bounding circles.
func (s *Snake) updateBoundingBoxes() {
	if len(s.Parts) == 0 {
		return
	}
	d := bodyBaseDiameter
	if len(s.Parts) > 8 {
		d += config.TailStepDistance * float64(len(s.Parts)-8)
	}
	head := s.Parts[0]
	s.SBB = BoundBox{X: head.X, Y: head.Y, R: (d + float64(config.MoveStepDistance)) / 2}
	s.VP = BoundBox{X: head.X, Y: head.Y, R: float64(config.SectorDiagSize) * 3}
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Tick advances rotation and movement accumulators by dtMs of virtual
// frame time and returns true if the head moved (callers need this to know
// whether to rerun collision/eating checks).
func (s *Snake) Tick(dtMs int64) bool {
	s.stepRotation(dtMs)
	return s.stepMovement(dtMs)
}

func (s *Snake) stepRotation(dtMs int64) {
	if s.Angle == s.Wangle {
		return
	}
	s.rotAccMs += dtMs
	for s.rotAccMs >= config.RotStepInterval {
		s.rotAccMs -= config.RotStepInterval
		diff := mathutil.NormalizeAngle(s.Wangle - s.Angle)
		if diff > mathutil.Pi {
			diff -= mathutil.Pi2
		}
		step := config.RotStepAngle
		if math.Abs(diff) <= step {
			s.Angle = s.Wangle
			break
		}
		if diff > 0 {
			s.Angle += step
		} else {
			s.Angle -= step
		}
		s.Angle = mathutil.NormalizeAngle(s.Angle)
		s.Dirty |= DirtyAngle
	}
}

func (s *Snake) stepMovement(dtMs int64) bool {
	// A boosting snake already at its shrink floor with no fullness left
	// to spend has nothing for Shrink to consume; force it off boost for
	// this frame rather than keep accelerating against an empty budget.
	if s.Boosting && s.Fullness <= 0 && len(s.Parts) <= s.shrinkFloor() {
		s.Boosting = false
	}

	target := float64(config.BaseMoveSpeed)
	if s.Boosting {
		target = float64(config.BoostSpeed)
	}
	if s.Speed < target {
		s.Speed = math.Min(target, s.Speed+float64(config.SpeedAcceleration)*float64(dtMs)/1000.0)
		s.Dirty |= DirtySpeed
	} else if s.Speed > target {
		s.Speed = math.Max(target, s.Speed-float64(config.SpeedAcceleration)*float64(dtMs)/1000.0)
		s.Dirty |= DirtySpeed
	}

	s.moveAccMs += dtMs
	interval := int64(float64(config.MoveStepDistance) / s.Speed * 1000.0)
	if interval <= 0 {
		interval = 1
	}
	moved := false
	for s.moveAccMs >= interval {
		s.moveAccMs -= interval
		s.advance()
		moved = true
	}
	return moved
}

func (s *Snake) advance() {
	head := s.Parts[0]
	newHead := Point{
		X: head.X + math.Cos(s.Angle)*float64(config.MoveStepDistance),
		Y: head.Y + math.Sin(s.Angle)*float64(config.MoveStepDistance),
	}
	prev := make([]Point, len(s.Parts))
	copy(prev, s.Parts)
	s.Parts[0] = newHead
	for i := 1; i < len(s.Parts); i++ {
		target := prev[i-1]
		switch {
		case i <= config.PartsSkipCount:
			s.Parts[i] = target
		case i <= config.PartsSkipCount+config.PartsStartMoveCount:
			k := float64(i-config.PartsSkipCount) / float64(config.PartsStartMoveCount) * config.SnakeTailK
			s.Parts[i] = lerp(prev[i], target, k)
		default:
			s.Parts[i] = lerp(prev[i], target, config.SnakeTailK)
		}
	}
	s.updateBoundingBoxes()
}

// Head returns the head part. Panics on an empty snake, which never
// happens — every snake keeps at least 3 parts for its lifetime.
func (s *Snake) Head() Point { return s.Parts[0] }

// MouthPoint returns the point slightly ahead of the head used for the
// food-eating scan.
func (s *Snake) MouthPoint() Point {
	distOffset := (0.36*s.lsz + 31) * ((s.Speed / 32.0) / config.Spangdv)
	return Point{
		X: s.Parts[0].X + math.Cos(s.Angle)*distOffset,
		Y: s.Parts[0].Y + math.Sin(s.Angle)*distOffset,
	}
}

// EatRadiusSq returns the squared food-pickup radius around the mouth.
func (s *Snake) EatRadiusSq() float64 {
	return 2000 * s.sc13
}

// BodyPartRadius is the per-part collision radius (sbpr).
func (s *Snake) BodyPartRadius() float64 { return s.sbpr }

// LengthSize is lsz, the visual/collision body thickness driver.
func (s *Snake) LengthSize() float64 { return s.lsz }

// SetWangle updates the wanted heading from client input.
func (s *Snake) SetWangle(ang float64) {
	s.Wangle = mathutil.NormalizeAngle(ang)
	s.Dirty |= DirtyWangle
}

// SetBoosting toggles boost state.
func (s *Snake) SetBoosting(on bool) {
	s.Boosting = on
}

// Grow applies v fullness units, turning every full 100 into a new tail
// part.
func (s *Snake) Grow(v float64) {
	s.Fullness += v
	grew := false
	for s.Fullness >= 100 {
		s.Fullness -= 100
		s.Parts = append(s.Parts, s.Parts[len(s.Parts)-1])
		grew = true
	}
	if grew {
		s.updateConsts()
		s.updateBoundingBoxes()
		s.Dirty |= DirtyGrew
	}
	s.Dirty |= DirtyFullness
}

// shrinkFloor is the minimum part count a snake may ever be reduced to:
// its target score, or 10 if that's smaller.
func (s *Snake) shrinkFloor() int {
	floor := int(s.TargetScore)
	if floor < 10 {
		floor = 10
	}
	return floor
}

// Shrink applies v fullness units of boost cost, popping tail parts once
// fullness is exhausted and returning their positions as drop-food spawn
// points.
func (s *Snake) Shrink(v float64) []Point {
	if v <= s.Fullness {
		s.Fullness -= v
		s.Dirty |= DirtyFullness
		return nil
	}
	v -= s.Fullness
	reduce := int(1 + v/100)
	var dropped []Point
	floor := s.shrinkFloor()
	for i := 0; i < reduce && len(s.Parts) > floor; i++ {
		tail := s.Parts[len(s.Parts)-1]
		s.Parts = s.Parts[:len(s.Parts)-1]
		dropped = append(dropped, tail)
	}
	s.Fullness = 100 - math.Mod(v, 100)
	s.updateConsts()
	s.updateBoundingBoxes()
	s.Dirty |= DirtyFullness | DirtyShrank
	return dropped
}

var fmlts [config.MaxSnakeParts + 1]float64
var fpsls [config.MaxSnakeParts + 1]float64

func init() {
	for i := 0; i <= config.MaxSnakeParts; i++ {
		fmlts[i] = math.Pow(1-float64(i)/float64(config.MaxSnakeParts), 2.25)
	}
	for i := 1; i <= config.MaxSnakeParts; i++ {
		fpsls[i] = fpsls[i-1] + 1/fmlts[i-1]
	}
}

// Score computes the leaderboard score.
func (s *Snake) Score() int {
	sct := len(s.Parts)
	if int(s.TargetScore) > sct {
		sct = int(s.TargetScore)
	}
	if sct > config.MaxSnakeParts {
		sct = config.MaxSnakeParts
	}
	if sct < 0 {
		sct = 0
	}
	return int(math.Floor(15*(fpsls[sct]+s.Fullness/100/fmlts[sct]-1) - 5))
}
