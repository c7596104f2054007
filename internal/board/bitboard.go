package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares, one bit per square: bit 0 is a1, bit 7 is
// h1, bit 63 is h8.
type Bitboard uint64

const (
	Empty    Bitboard = 0
	Universe Bitboard = ^Empty

	FileA Bitboard = 0x0101010101010101
	FileB          = FileA << 1
	FileC          = FileA << 2
	FileD          = FileA << 3
	FileE          = FileA << 4
	FileF          = FileA << 5
	FileG          = FileA << 6
	FileH          = FileA << 7

	Rank1 Bitboard = 0xFF
	Rank2          = Rank1 << (8 * 1)
	Rank3          = Rank1 << (8 * 2)
	Rank4          = Rank1 << (8 * 3)
	Rank5          = Rank1 << (8 * 4)
	Rank6          = Rank1 << (8 * 5)
	Rank7          = Rank1 << (8 * 6)
	Rank8          = Rank1 << (8 * 7)

	// Shift guards: squares a step east or west may land on.
	NotFileA  = ^FileA
	NotFileH  = ^FileH
	NotFileAB = ^(FileA | FileB)
	NotFileGH = ^(FileG | FileH)
)

// FileMask and RankMask are indexed by File and Rank.
var (
	FileMask = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}
	RankMask = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// Set returns b with sq added.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | (1 << sq)
}

// Clear returns b with sq removed.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ (1 << sq)
}

// IsSet reports whether sq is in b.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of squares in b.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the least significant bit (lowest square index),
// or NoSquare for an empty bitboard.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// MSB returns the most significant bit (highest square index),
// or NoSquare for an empty bitboard.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Several reports whether more than one bit is set.
func (b Bitboard) Several() bool {
	return b&(b-1) != 0
}

// Shift moves every square one step in direction d. Squares that would
// leave the board or wrap around a file edge are dropped.
func (b Bitboard) Shift(d Direction) Bitboard {
	if d.step > 0 {
		return (b << uint(d.step)) & d.guard
	}
	return (b >> uint(-d.step)) & d.guard
}

// NorthOf returns all squares with an index strictly greater than sq.
func NorthOf(sq Square) Bitboard {
	return Universe << sq << 1
}

// SouthOf returns all squares with an index strictly smaller than sq.
func SouthOf(sq Square) Bitboard {
	return SquareBB(sq) - 1
}

// String draws the board from white's side, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := Rank(7); ; rank-- {
		sb.WriteString(rank.String())
		sb.WriteByte(' ')
		for file := File(0); file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
		if rank == 0 {
			break
		}
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}

// Squares lists the squares of b in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
