package board

// Line tables for pins and checks. Pure geometry, filled once at package
// initialization and never written again.
var (
	rayBB     [64][64]Bitboard // Full line through two squares (including endpoints)
	betweenBB [64][64]Bitboard // Squares strictly between two squares
)

func init() {
	initLines()
}

// Slide returns the empty-board ray from sq in direction d up to the board
// edge, excluding sq itself.
func Slide(sq Square, d Direction) Bitboard {
	var out Bitboard
	bb := SquareBB(sq)
	for {
		bb = bb.Shift(d)
		if bb == 0 {
			return out
		}
		out |= bb
	}
}

func initLines() {
	axes := [4][2]Direction{
		{North, South},
		{East, West},
		{NorthEast, SouthWest},
		{NorthWest, SouthEast},
	}

	for sq := A1; sq <= H8; sq++ {
		for _, axis := range axes {
			line := SquareBB(sq) | Slide(sq, axis[0]) | Slide(sq, axis[1])
			others := line &^ SquareBB(sq)
			for others != 0 {
				rayBB[sq][others.PopLSB()] = line
			}
		}
	}

	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			lo, hi := min(a, b), max(a, b)
			betweenBB[a][b] = rayBB[a][b] & NorthOf(lo) & SouthOf(hi)
		}
	}
}

// Ray returns the full line through two squares, endpoints included.
// Returns empty if the squares are equal or not aligned.
func Ray(a, b Square) Bitboard {
	return rayBB[a][b]
}

// Between returns the bitboard of squares strictly between two squares.
// Returns empty if squares are not aligned (not on same rank, file, or diagonal).
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// Aligned returns true if three squares are on the same line.
func Aligned(a, b, c Square) bool {
	return rayBB[a][b]&SquareBB(c) != 0
}
