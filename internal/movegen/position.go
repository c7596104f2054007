package movegen

import (
	"errors"

	"github.com/hailam/chessmg/internal/board"
)

// Position is the read-only view of a position the generator needs. The
// derived masks must be consistent with the pieces; the generator trusts
// them and never recomputes them.
type Position interface {
	// Pieces returns the pieces of one type and color.
	Pieces(c board.Color, pt board.PieceType) board.Bitboard
	// ColorOccupancy returns every piece of color c.
	ColorOccupancy(c board.Color) board.Bitboard
	// Occupancy returns every piece on the board.
	Occupancy() board.Bitboard
	SideToMove() board.Color
	// Checkers returns the enemy pieces attacking the side to move's king.
	Checkers() board.Bitboard
	// Blockers returns the side to move's pieces pinned to its own king.
	Blockers() board.Bitboard
	// Attacked returns every square the side not to move attacks.
	Attacked() board.Bitboard
	CastlingRights() board.CastlingRights
	// EnPassant returns the en passant target square, or NoSquare.
	EnPassant() board.Square
}

var (
	// ErrNoKing is returned when the side to move has no king.
	ErrNoKing = errors.New("no king on board")

	// ErrIllegalMove is returned when a move is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
)

// CheckState classifies a position by the number of pieces giving check.
type CheckState uint8

const (
	NoCheck CheckState = iota
	SingleCheck
	DoubleCheck
)

// CheckStateOf returns the check state for a checkers bitboard.
func CheckStateOf(checkers board.Bitboard) CheckState {
	switch {
	case checkers == 0:
		return NoCheck
	case checkers.Several():
		return DoubleCheck
	default:
		return SingleCheck
	}
}

func (s CheckState) String() string {
	switch s {
	case NoCheck:
		return "no check"
	case SingleCheck:
		return "single check"
	default:
		return "double check"
	}
}
