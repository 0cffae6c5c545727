package wire

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestMinimapRoundTripSparse(t *testing.T) {
	dim := 16
	grid := make([]byte, dim*dim)
	grid[3] = 1
	grid[40] = 1
	grid[dim*dim-1] = 1

	encoded := rleEncode(grid, false)
	decoded := DecodeMinimap(encoded, dim, false)
	if !bytes.Equal(grid, decoded) {
		t.Fatalf("minimap round trip mismatch:\n got %v\nwant %v", decoded, grid)
	}
}

func TestMinimapRoundTripReversed(t *testing.T) {
	dim := 12
	grid := make([]byte, dim*dim)
	r := rand.New(rand.NewSource(1))
	for i := range grid {
		if r.Intn(5) == 0 {
			grid[i] = 1
		}
	}
	encoded := rleEncode(grid, true)
	decoded := DecodeMinimap(encoded, dim, true)
	if !bytes.Equal(grid, decoded) {
		t.Fatalf("reversed minimap round trip mismatch")
	}
}

func TestMinimapRoundTripDense(t *testing.T) {
	dim := 8
	grid := make([]byte, dim*dim)
	for i := range grid {
		grid[i] = 1
	}
	encoded := rleEncode(grid, false)
	decoded := DecodeMinimap(encoded, dim, false)
	if !bytes.Equal(grid, decoded) {
		t.Fatalf("dense minimap round trip mismatch")
	}
}

func TestMinimapRoundTripEmpty(t *testing.T) {
	dim := 10
	grid := make([]byte, dim*dim)
	encoded := rleEncode(grid, false)
	decoded := DecodeMinimap(encoded, dim, false)
	if !bytes.Equal(grid, decoded) {
		t.Fatalf("empty minimap round trip mismatch")
	}
}

func TestEncodeAddSnakeStartsWithTypeAndID(t *testing.T) {
	p := AddSnakeParams{
		ID:     7,
		Angle:  1.0,
		Wangle: 1.5,
		Speed:  172,
		Skin:   3,
		HeadX:  100,
		HeadY:  200,
		Name:   "Cobra",
		Parts:  []Point{{X: 100, Y: 200}, {X: 90, Y: 200}},
	}
	body := EncodeAddSnake(p)
	if body[0] != OutSnake {
		t.Fatalf("first byte = %d, want OutSnake (%d)", body[0], OutSnake)
	}
	id := uint16(body[1])<<8 | uint16(body[2])
	if id != 7 {
		t.Fatalf("decoded id = %d, want 7", id)
	}
}

func TestEncodeRotationPicksVariantByPresentFields(t *testing.T) {
	onlyWangle := EncodeRotation(RotationParams{ID: 1, HasWangle: true})
	if onlyWangle[0] != OutRotCCWWangSp {
		t.Fatalf("wangle-only rotation picked wrong type byte %q", onlyWangle[0])
	}
	all := EncodeRotation(RotationParams{ID: 1, HasAngle: true, HasWangle: true, HasSpeed: true})
	if all[0] != OutRotCWAngWangSp {
		t.Fatalf("all-fields rotation picked wrong type byte %q", all[0])
	}
}

func TestEncodeSetFoodModernHeaderMatchesFirstPellet(t *testing.T) {
	items := []FoodItem{{X: 481, Y: 962, Size: 3, Color: 5}}
	body := EncodeSetFood(DialectModern, 480, items)
	sx, sy := body[1], body[2]
	wantSX, _ := sectorRel(items[0].X, 480)
	wantSY, _ := sectorRel(items[0].Y, 480)
	if sx != wantSX || sy != wantSY {
		t.Fatalf("modern set-food header = (%d,%d), want (%d,%d)", sx, sy, wantSX, wantSY)
	}
}
