package wire

// Point is a plain (x,y) pair — wire takes primitive coordinates rather
// than importing the game package's Body type, so the codec has no
// dependency on simulation state.
type Point struct{ X, Y float64 }

// InitParams carries the fields of the fixed-size 'a' packet (30 bytes as
// encoded by EncodeInit, type byte included).
type InitParams struct {
	GameRadius           uint32
	MaxSnakeParts        uint16
	SectorSize           uint16
	SectorCountAlongEdge uint16
	Spangdv              float64
	Nsp1, Nsp2, Nsp3     float64
	SnakeAngSpeed        float64
	PreyAngSpeed         float64
	SnakeTailK           float64
	ProtocolVersion      uint8
}

// EncodeInit builds the 'a' packet body (type byte included).
func EncodeInit(p InitParams) []byte {
	w := NewWriter()
	w.U8(OutInit)
	w.U24(p.GameRadius)
	w.U16(p.MaxSnakeParts)
	w.U16(p.SectorSize)
	w.U16(p.SectorCountAlongEdge)
	w.FP8(p.Spangdv)
	w.FP16(2, p.Nsp1)
	w.FP16(2, p.Nsp2)
	w.FP16(2, p.Nsp3)
	w.FP16(3, p.SnakeAngSpeed)
	w.FP16(3, p.PreyAngSpeed)
	w.FP16(3, p.SnakeTailK)
	w.U8(p.ProtocolVersion)
	// Six trailing zero bytes of padding, for 30 bytes in all.
	for i := 0; i < 6; i++ {
		w.U8(0)
	}
	return w.Bytes()
}

// EncodePreInit builds the '6' handshake packet. The payload is written
// raw, without a length prefix — the client expects it unframed.
func EncodePreInit() []byte {
	w := NewWriter()
	w.U8(OutPreInit)
	w.Raw([]byte(PreInitPayload))
	return w.Bytes()
}

// EncodePong builds the 'p' packet.
func EncodePong() []byte {
	return []byte{OutPong}
}

// AddSnakeParams carries everything the 's' (add) packet needs.
type AddSnakeParams struct {
	ID             uint16
	Angle, Wangle  float64
	Speed          uint16 // raw internal speed units, converted to wire scale here
	Fullness       uint16 // 0..99
	Skin           uint8
	HeadX, HeadY   float64
	Name           string
	CustomSkin     []byte
	Parts          []Point // index 0 = head, order as stored in the snake
}

// EncodeAddSnake builds the 's' add-snake body. Per spec §9's resolved
// open question: always one accessory/padding byte after the custom-skin
// block; tail is sent as absolute (x*5, y*5) followed by (len-1) relative
// pairs (dx*2+127, dy*2+127) walking tail -> head.
func EncodeAddSnake(p AddSnakeParams) []byte {
	w := NewWriter()
	w.U8(OutSnake)
	w.U16(p.ID)
	w.Ang24(p.Angle)
	w.U8(0) // unused byte between angle and wangle, always zero
	w.Ang24(p.Wangle)
	w.U16(uint16(float64(p.Speed) * 1000.0 / 32.0))
	w.FP24(float64(p.Fullness) / 100.0)
	w.U8(p.Skin)
	w.U24(clampU24(p.HeadX * 5.0))
	w.U24(clampU24(p.HeadY * 5.0))
	w.Str(p.Name)
	if len(p.CustomSkin) == 0 {
		w.U8(0)
	} else {
		w.Str(string(p.CustomSkin))
	}
	w.U8(0) // accessory byte: always zero, client ignores it

	if len(p.Parts) > 0 {
		tail := p.Parts[len(p.Parts)-1]
		w.U24(clampU24(tail.X * 5.0))
		w.U24(clampU24(tail.Y * 5.0))
		for i := len(p.Parts) - 1; i > 0; i-- {
			cur := p.Parts[i]
			next := p.Parts[i-1]
			dx := next.X - cur.X
			dy := next.Y - cur.Y
			w.U8(clampU8(dx*2.0 + 127.0))
			w.U8(clampU8(dy*2.0 + 127.0))
		}
	}
	return w.Bytes()
}

// EncodeRemoveSnake builds the 's' remove-snake body (status 0=left, 1=died).
func EncodeRemoveSnake(id uint16, status uint8) []byte {
	w := NewWriter()
	w.U8(OutSnake)
	w.U16(id)
	w.U8(status)
	return w.Bytes()
}

// EncodeMoveAbsolute builds the 'g' head-move body.
func EncodeMoveAbsolute(id uint16, x, y float64) []byte {
	w := NewWriter()
	w.U8(OutMoveAbs)
	w.U16(id)
	w.U24(clampU24(x * 5.0))
	w.U24(clampU24(y * 5.0))
	return w.Bytes()
}

// EncodeGrow builds the 'n' grow-by-one-part body.
func EncodeGrow(id uint16, x, y float64) []byte {
	w := NewWriter()
	w.U8(OutGrow)
	w.U16(id)
	w.U24(clampU24(x * 5.0))
	w.U24(clampU24(y * 5.0))
	return w.Bytes()
}

// EncodeRemovePart builds the 'r' remove-last-part body.
func EncodeRemovePart(id uint16) []byte {
	w := NewWriter()
	w.U8(OutRemovePart)
	w.U16(id)
	return w.Bytes()
}

// RotationParams describes which of {angle, wangle, speed} changed this
// tick; the encoder picks the matching packet type byte per spec §6's
// rotation-variant table.
type RotationParams struct {
	ID                            uint16
	Angle, Wangle, Speed          float64 // wire-scale speed (already /32)
	HasAngle, HasWangle, HasSpeed bool
}

// EncodeRotation builds one of the 'E'/'3'/'e'/'4'/'5' rotation variants,
// selected by which fields are present.
func EncodeRotation(p RotationParams) []byte {
	w := NewWriter()
	var t byte
	switch {
	case p.HasAngle && p.HasWangle && p.HasSpeed:
		t = OutRotCWAngWangSp
	case p.HasAngle && p.HasWangle:
		t = OutRotCCWAngWang
	case p.HasWangle && p.HasSpeed:
		t = OutRotCCWAngWangSp
	case p.HasWangle:
		t = OutRotCCWWangSp
	default:
		t = OutRotCWAngWang
	}
	w.U8(t)
	w.U16(p.ID)
	if p.HasAngle {
		w.Ang24(p.Angle)
	}
	if p.HasWangle {
		w.Ang24(p.Wangle)
	}
	if p.HasSpeed {
		w.FP16(0, p.Speed)
	}
	return w.Bytes()
}

// EncodeFullness builds the 'h' set-fullness body.
func EncodeFullness(id uint16, fullness uint16) []byte {
	w := NewWriter()
	w.U8(OutFullness)
	w.U16(id)
	w.FP24(float64(fullness) / 100.0)
	return w.Bytes()
}

// EncodeSectorDelta builds the 'W' (add) or 'w' (remove) viewport sector
// delta body.
func EncodeSectorDelta(add bool, sx, sy uint8) []byte {
	w := NewWriter()
	if add {
		w.U8(OutAddSector)
	} else {
		w.U8(OutRemoveSector)
	}
	w.U8(sx)
	w.U8(sy)
	return w.Bytes()
}

// FoodItem is the minimal per-pellet data the food packets need.
type FoodItem struct {
	X, Y  uint16
	Size  uint8
	Color uint8
}

func sectorRel(v uint16, sectorSize uint16) (sector, rel uint8) {
	sector = uint8(v / sectorSize)
	remainder := uint32(v % sectorSize)
	rel = uint8(remainder * 256 / uint32(sectorSize))
	return
}

// EncodeSetFood builds the initial 'F' sector-food body for one sector,
// in either dialect. Legacy sends absolute coordinates per pellet; modern
// sends a (sx,sy) header once followed by per-pellet relative coordinates.
func EncodeSetFood(d Dialect, sectorSize uint16, items []FoodItem) []byte {
	w := NewWriter()
	w.U8(OutSetFood)
	if d == DialectLegacy {
		for _, f := range items {
			w.U8(f.Color).U16(f.X).U16(f.Y).U8(f.Size * 5)
		}
		return w.Bytes()
	}
	if len(items) == 0 {
		return w.Bytes()
	}
	sx, _ := sectorRel(items[0].X, sectorSize)
	sy, _ := sectorRel(items[0].Y, sectorSize)
	w.U8(sx).U8(sy)
	for _, f := range items {
		_, rx := sectorRel(f.X, sectorSize)
		_, ry := sectorRel(f.Y, sectorSize)
		w.U8(f.Color).U8(rx).U8(ry).U8(f.Size * 5)
	}
	return w.Bytes()
}

func encodeSingleFood(typeByte byte, d Dialect, sectorSize uint16, f FoodItem) []byte {
	w := NewWriter()
	w.U8(typeByte)
	if d == DialectModern {
		sx, rx := sectorRel(f.X, sectorSize)
		sy, ry := sectorRel(f.Y, sectorSize)
		w.U8(sx).U8(sy).U8(rx).U8(ry).U8(f.Color).U8(f.Size * 5)
	} else {
		w.U8(f.Color).U16(f.X).U16(f.Y).U8(f.Size * 5)
	}
	return w.Bytes()
}

// EncodeAddFood builds the 'f' natural-food-appeared body.
func EncodeAddFood(d Dialect, sectorSize uint16, f FoodItem) []byte {
	return encodeSingleFood(OutAddFood, d, sectorSize, f)
}

// EncodeSpawnFood builds the 'b' boost/death-drop-food body.
func EncodeSpawnFood(d Dialect, sectorSize uint16, f FoodItem) []byte {
	return encodeSingleFood(OutSpawnFood, d, sectorSize, f)
}

// EncodeEatFood builds the 'c' eat-food body: coordinates per dialect plus
// the eating snake's id.
func EncodeEatFood(d Dialect, sectorSize uint16, f FoodItem, eaterID uint16) []byte {
	w := NewWriter()
	w.U8(OutEatFood)
	if d == DialectModern {
		sx, rx := sectorRel(f.X, sectorSize)
		sy, ry := sectorRel(f.Y, sectorSize)
		w.U8(sx).U8(sy).U8(rx).U8(ry)
	} else {
		w.U16(f.X).U16(f.Y)
	}
	w.U16(eaterID)
	return w.Bytes()
}

// LeaderboardEntry is one row of the 'l' packet.
type LeaderboardEntry struct {
	Length   uint16
	Fullness uint16 // 0..99
	Skin     uint8
	Name     string
}

// EncodeLeaderboard builds the 'l' packet for one recipient: their own
// top-10 rank (0 if outside it), overall rank, player count, then the
// top-10 rows.
func EncodeLeaderboard(topTenRank uint8, localRank, totalPlayers uint16, entries []LeaderboardEntry) []byte {
	w := NewWriter()
	w.U8(OutLeaderboard)
	w.U8(topTenRank)
	w.U16(localRank)
	w.U16(totalPlayers)
	for _, e := range entries {
		w.U16(e.Length)
		w.FP24(float64(e.Fullness) / 100.0)
		w.U8(e.Skin)
		w.Str(e.Name)
	}
	return w.Bytes()
}

// EncodeMinimap RLE-encodes an MxM occupancy grid (row-major, 1 byte per
// pixel, nonzero = occupied) per spec §6: a byte >= 128 is a skip run of
// (byte-128) zero pixels, a byte < 128 packs 7 pixels into bits 6..0.
// Modern dialect iterates the grid in reverse and prepends a uint16
// dimension header; legacy iterates forward with no header.
func EncodeMinimap(d Dialect, dim uint16, grid []byte) []byte {
	data := rleEncode(grid, d == DialectModern)
	w := NewWriter()
	if d == DialectModern {
		w.U8(OutMinimapModern)
		w.U16(dim)
	} else {
		w.U8(OutMinimapLegacy)
	}
	w.Raw(data)
	return w.Bytes()
}

func rleEncode(grid []byte, reverse bool) []byte {
	n := len(grid)
	idx := func(i int) byte {
		if reverse {
			return grid[n-1-i]
		}
		return grid[i]
	}

	var out []byte
	skip := 0
	flushSkip := func() {
		for skip > 0 {
			run := skip
			if run > 127 {
				run = 127
			}
			out = append(out, byte(128+run))
			skip -= run
		}
	}

	i := 0
	for i < n {
		if idx(i) == 0 {
			skip++
			i++
			continue
		}
		flushSkip()
		var chunk byte
		for bit := 0; bit < 7 && i+bit < n; bit++ {
			if idx(i+bit) != 0 {
				chunk |= 1 << (6 - bit)
			}
		}
		out = append(out, chunk)
		i += 7
	}
	flushSkip()
	return out
}

// DecodeMinimap is the inverse of EncodeMinimap, used by round-trip tests.
func DecodeMinimap(data []byte, dim int, reverse bool) []byte {
	grid := make([]byte, dim*dim)
	pos := 0
	for _, b := range data {
		if b >= 128 {
			pos += int(b) - 128
			continue
		}
		for bit := 0; bit < 7; bit++ {
			if pos+bit >= len(grid) {
				break
			}
			if b&(1<<(6-bit)) != 0 {
				grid[pos+bit] = 1
			}
		}
		pos += 7
	}
	if reverse {
		for i, j := 0, len(grid)-1; i < j; i, j = i+1, j-1 {
			grid[i], grid[j] = grid[j], grid[i]
		}
	}
	return grid
}

// EncodeKill builds the 'k' kill-notification body (no payload).
func EncodeKill() []byte { return []byte{OutKill} }

// EncodeEndOfGame builds the 'v' end-of-game body, sent to the victim only.
func EncodeEndOfGame(status uint8) []byte {
	return []byte{OutEndOfGame, status}
}
