package board

// Direction is one point of the compass rose: a signed square step plus
// the guard mask of destination squares that are reachable without
// wrapping around a file edge.
type Direction struct {
	step  int8
	guard Bitboard
}

// Step returns the signed square delta of the direction.
func (d Direction) Step() int {
	return int(d.step)
}

// The eight single-step directions.
var (
	North     = Direction{8, Universe}
	South     = Direction{-8, Universe}
	East      = Direction{1, NotFileA}
	West      = Direction{-1, NotFileH}
	NorthEast = Direction{9, NotFileA}
	NorthWest = Direction{7, NotFileH}
	SouthEast = Direction{-7, NotFileA}
	SouthWest = Direction{-9, NotFileH}
)

// The eight knight deltas, named by the long leg first.
var (
	NorthNorthEast = Direction{17, NotFileA}
	NorthNorthWest = Direction{15, NotFileH}
	SouthSouthEast = Direction{-15, NotFileA}
	SouthSouthWest = Direction{-17, NotFileH}
	EastNorthEast  = Direction{10, NotFileAB}
	EastSouthEast  = Direction{-6, NotFileAB}
	WestNorthWest  = Direction{6, NotFileGH}
	WestSouthWest  = Direction{-10, NotFileGH}
)

// Compass groups of the rose.
var (
	RookDirections   = [4]Direction{North, South, East, West}
	BishopDirections = [4]Direction{NorthEast, NorthWest, SouthEast, SouthWest}
	KingDirections   = [8]Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
	KnightDirections = [8]Direction{
		NorthNorthEast, NorthNorthWest, SouthSouthEast, SouthSouthWest,
		EastNorthEast, EastSouthEast, WestNorthWest, WestSouthWest,
	}
)

// PawnPush returns the forward direction for pawns of color c.
func PawnPush(c Color) Direction {
	if c == White {
		return North
	}
	return South
}

// PawnCaptures returns the two capture directions for pawns of color c,
// toward the a-file first.
func PawnCaptures(c Color) [2]Direction {
	if c == White {
		return [2]Direction{NorthWest, NorthEast}
	}
	return [2]Direction{SouthWest, SouthEast}
}
