package game

import (
	"math"
	"testing"

	"slither-server/internal/config"
)

func newTestSnake(startScore uint16) *Snake {
	return NewSnake(1, "Test", 0, nil, false, 1000, 1000, 0, startScore)
}

func TestNewSnakeBodyTrailsBehindHead(t *testing.T) {
	s := newTestSnake(10)
	if len(s.Parts) == 0 {
		t.Fatalf("expected at least one part")
	}
	head := s.Parts[0]
	if head.X != 1000 || head.Y != 1000 {
		t.Fatalf("head = %+v, want (1000,1000)", head)
	}
	// Body trails behind the heading (heading 0 means facing +X), so every
	// subsequent part should sit at or below the head's X.
	for i := 1; i < len(s.Parts); i++ {
		if s.Parts[i].X > s.Parts[i-1].X {
			t.Fatalf("part %d.X=%v > part %d.X=%v, body should trail backward", i, s.Parts[i].X, i-1, s.Parts[i-1].X)
		}
	}
}

func TestGrowAddsPartOnlyAtFullnessThreshold(t *testing.T) {
	s := newTestSnake(10)
	before := len(s.Parts)
	s.Grow(50)
	if len(s.Parts) != before {
		t.Fatalf("Grow(50) changed part count from %d to %d, want unchanged below 100 fullness", before, len(s.Parts))
	}
	if s.Dirty&DirtyGrew != 0 {
		t.Fatalf("DirtyGrew set without crossing a 100-fullness boundary")
	}
	s.Grow(50)
	if len(s.Parts) != before+1 {
		t.Fatalf("Grow crossing 100 fullness: parts = %d, want %d", len(s.Parts), before+1)
	}
	if s.Dirty&DirtyGrew == 0 {
		t.Fatalf("expected DirtyGrew set after crossing 100 fullness")
	}
}

func TestGrowHandlesMultipleThresholdsInOneCall(t *testing.T) {
	s := newTestSnake(10)
	before := len(s.Parts)
	s.Grow(250) // should cross 100 twice, leaving 50 fullness
	if len(s.Parts) != before+2 {
		t.Fatalf("Grow(250) parts = %d, want %d", len(s.Parts), before+2)
	}
	if s.Fullness != 50 {
		t.Fatalf("Fullness after Grow(250) = %v, want 50", s.Fullness)
	}
}

func TestShrinkNeverDropsBelowFloor(t *testing.T) {
	s := newTestSnake(2) // TargetScore=2, so floor = max(2,10) = 10
	// Grow the body well past the floor (simulates a snake that has eaten
	// since spawning, distinct from its fixed TargetScore) so Shrink has
	// room to actually remove parts before hitting the floor.
	for len(s.Parts) < 40 {
		s.Parts = append(s.Parts, s.Parts[len(s.Parts)-1])
	}
	for i := 0; i < 50; i++ {
		s.Shrink(1000)
	}
	floor := s.shrinkFloor()
	if len(s.Parts) < floor {
		t.Fatalf("Shrink reduced parts to %d, below floor %d", len(s.Parts), floor)
	}
	if len(s.Parts) > floor {
		t.Fatalf("Shrink stopped at %d parts without reaching floor %d after heavy draw", len(s.Parts), floor)
	}
}

func TestShrinkFloorUsesTargetScoreOverTen(t *testing.T) {
	s := newTestSnake(50) // TargetScore=50 > 10, so floor = 50
	if got := s.shrinkFloor(); got != 50 {
		t.Fatalf("shrinkFloor() = %d, want 50", got)
	}
}

func TestShrinkBelowFullnessOnlyConsumesFullness(t *testing.T) {
	s := newTestSnake(10)
	s.Fullness = 80
	before := len(s.Parts)
	dropped := s.Shrink(30)
	if len(s.Parts) != before {
		t.Fatalf("Shrink within fullness budget changed part count: %d -> %d", before, len(s.Parts))
	}
	if dropped != nil {
		t.Fatalf("expected no dropped parts when shrink stays within fullness, got %d", len(dropped))
	}
	if s.Fullness != 50 {
		t.Fatalf("Fullness after Shrink(30) from 80 = %v, want 50", s.Fullness)
	}
}

func TestScoreIncreasesWithFullness(t *testing.T) {
	s := newTestSnake(10)
	base := s.Score()
	s.Fullness = 90
	grown := s.Score()
	if grown < base {
		t.Fatalf("Score with higher fullness (%d) < base score (%d)", grown, base)
	}
}

func TestScoreUsesTargetScoreAsFloor(t *testing.T) {
	s := newTestSnake(100)
	// Even with an empty/short body, TargetScore floors the part count used.
	s.Parts = s.Parts[:3]
	if s.Score() <= 0 {
		t.Fatalf("expected positive score driven by TargetScore floor, got %d", s.Score())
	}
}

func TestSetWangleNormalizesAngle(t *testing.T) {
	s := newTestSnake(10)
	s.SetWangle(-math.Pi / 2)
	if s.Wangle < 0 || s.Wangle >= 2*math.Pi {
		t.Fatalf("Wangle = %v, not normalized into [0, 2pi)", s.Wangle)
	}
}

func TestStepRotationConvergesToWangle(t *testing.T) {
	s := newTestSnake(10)
	s.SetWangle(math.Pi)
	for i := 0; i < 10000 && s.Angle != s.Wangle; i++ {
		s.stepRotation(int64(config.RotStepInterval))
	}
	if math.Abs(s.Angle-s.Wangle) > 1e-9 {
		t.Fatalf("rotation failed to converge: Angle=%v Wangle=%v", s.Angle, s.Wangle)
	}
}

func TestAdvanceMovesHeadAlongAngle(t *testing.T) {
	s := newTestSnake(10)
	s.Angle = 0
	headBefore := s.Head()
	s.advance()
	headAfter := s.Head()
	if headAfter.X <= headBefore.X {
		t.Fatalf("advance with angle 0 should move head in +X, got %v -> %v", headBefore.X, headAfter.X)
	}
	if math.Abs(headAfter.Y-headBefore.Y) > 1e-9 {
		t.Fatalf("advance with angle 0 should not move Y, got %v -> %v", headBefore.Y, headAfter.Y)
	}
}
