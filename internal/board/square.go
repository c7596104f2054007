// Package board implements the bitboard, coordinate and move primitives
// shared by the attack tables, the move generator and the position.
package board

import "fmt"

// Square represents a square on the chess board (0-63).
// Uses Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square uint8

// File is a board column, 0 = a, 7 = h.
type File uint8

// Rank is a board row, 0 = first rank, 7 = eighth rank.
type Rank uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File returns the file of the square.
func (sq Square) File() File {
	return File(sq & 7)
}

// Rank returns the rank of the square.
func (sq Square) Rank() Rank {
	return Rank(sq >> 3)
}

// Diagonal returns the index (0-14) of the a1-h8 direction diagonal
// through the square. A8 is on diagonal 0, H1 on diagonal 14.
func (sq Square) Diagonal() int {
	return int(sq.File()) - int(sq.Rank()) + 7
}

// AntiDiagonal returns the index (0-14) of the h1-a8 direction diagonal
// through the square. A1 is on anti-diagonal 0, H8 on anti-diagonal 14.
func (sq Square) AntiDiagonal() int {
	return int(sq.File()) + int(sq.Rank())
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+byte(sq.File()), '1'+byte(sq.Rank()))
}

// NewSquare creates a square from file and rank.
func NewSquare(file File, rank Rank) Square {
	return Square(rank)*8 + Square(file)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return NewSquare(File(s[0]-'a'), Rank(s[1]-'1')), nil
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror returns the square mirrored vertically (for black's perspective).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) Rank {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// String returns the file letter.
func (f File) String() string {
	return string(rune('a' + f))
}

// String returns the rank digit.
func (r Rank) String() string {
	return string(rune('1' + r))
}
