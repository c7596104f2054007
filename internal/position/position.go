// Package position holds a complete chess position with the derived masks
// the move generator consumes: checkers, pinned blockers and the squares
// the opponent attacks.
package position

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/board"
)

var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrInvalidPosition indicates a position that cannot arise in a game.
	ErrInvalidPosition = errors.New("invalid position")
)

// Position represents a complete chess position.
type Position struct {
	t *attacks.Tables

	// Piece bitboards: [Color][PieceType]
	pieces [2][6]board.Bitboard

	// Occupancy bitboards (cached for efficiency)
	occupied    [2]board.Bitboard
	allOccupied board.Bitboard

	// Game state
	side           board.Color
	castling       board.CastlingRights
	enPassant      board.Square // Target square for en passant, NoSquare if none
	halfMoveClock  int          // Moves since last pawn move or capture (for 50-move rule)
	fullMoveNumber int          // Full move counter, starts at 1

	// Zobrist hash
	hash uint64

	// Derived from the pieces after every change.
	checkers board.Bitboard // enemy pieces giving check
	blockers board.Bitboard // our pieces pinned to our king
	attacked board.Bitboard // squares the side not to move attacks
}

// New creates the starting position.
func New(t *attacks.Tables) *Position {
	pos, err := ParseFEN(t, StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy creates a deep copy of the position. The copy shares the
// immutable attack tables.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Tables returns the attack tables the position derives its masks from.
func (p *Position) Tables() *attacks.Tables { return p.t }

// Pieces returns the pieces of one type and color.
func (p *Position) Pieces(c board.Color, pt board.PieceType) board.Bitboard {
	return p.pieces[c][pt]
}

// ColorOccupancy returns every piece of color c.
func (p *Position) ColorOccupancy(c board.Color) board.Bitboard { return p.occupied[c] }

// Occupancy returns every piece on the board.
func (p *Position) Occupancy() board.Bitboard { return p.allOccupied }

// SideToMove returns the color to move.
func (p *Position) SideToMove() board.Color { return p.side }

// Checkers returns the enemy pieces giving check.
func (p *Position) Checkers() board.Bitboard { return p.checkers }

// Blockers returns the side to move's pieces pinned to its king.
func (p *Position) Blockers() board.Bitboard { return p.blockers }

// Attacked returns all squares attacked by the side not to move.
func (p *Position) Attacked() board.Bitboard { return p.attacked }

// CastlingRights returns the remaining castling rights.
func (p *Position) CastlingRights() board.CastlingRights { return p.castling }

// EnPassant returns the en passant target square, or NoSquare.
func (p *Position) EnPassant() board.Square { return p.enPassant }

// Hash returns the Zobrist hash of the position.
func (p *Position) Hash() uint64 { return p.hash }

// HalfMoveClock returns the number of plies since the last capture or pawn move.
func (p *Position) HalfMoveClock() int { return p.halfMoveClock }

// FullMoveNumber returns the move counter, starting at 1.
func (p *Position) FullMoveNumber() int { return p.fullMoveNumber }

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.checkers != 0
}

// KingSquare returns the king square of color c, or NoSquare.
func (p *Position) KingSquare(c board.Color) board.Square {
	return p.pieces[c][board.King].LSB()
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq board.Square) board.Piece {
	bb := board.SquareBB(sq)
	if p.allOccupied&bb == 0 {
		return board.NoPiece
	}

	c := board.White
	if p.occupied[board.Black]&bb != 0 {
		c = board.Black
	}
	for pt := board.Pawn; pt <= board.King; pt++ {
		if p.pieces[c][pt]&bb != 0 {
			return board.NewPiece(pt, c)
		}
	}
	return board.NoPiece
}

// setPiece places a piece on a square (does not update hash).
func (p *Position) setPiece(piece board.Piece, sq board.Square) {
	if piece == board.NoPiece {
		return
	}
	c, pt := piece.Color(), piece.Type()
	bb := board.SquareBB(sq)
	p.pieces[c][pt] |= bb
	p.occupied[c] |= bb
	p.allOccupied |= bb
}

// updateDerived recomputes checkers, blockers and attacked squares.
func (p *Position) updateDerived() {
	us := p.side
	them := us.Other()

	p.attacked = p.attacksBy(them, p.allOccupied)
	p.checkers = 0
	p.blockers = 0

	ksq := p.KingSquare(us)
	if ksq == board.NoSquare {
		return
	}
	p.checkers = p.attackersBy(them, ksq, p.allOccupied)

	// Pins: look through everything from the king toward enemy sliders.
	snipers := p.t.Rook(ksq, 0)&(p.pieces[them][board.Rook]|p.pieces[them][board.Queen]) |
		p.t.Bishop(ksq, 0)&(p.pieces[them][board.Bishop]|p.pieces[them][board.Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		between := board.Between(sq, ksq) & p.allOccupied
		if between != 0 && !between.Several() && between&p.occupied[us] != 0 {
			p.blockers |= between
		}
	}
}

// attacksBy returns every square attacked by color c.
func (p *Position) attacksBy(c board.Color, occupied board.Bitboard) board.Bitboard {
	var out board.Bitboard

	for _, d := range board.PawnCaptures(c) {
		out |= p.pieces[c][board.Pawn].Shift(d)
	}
	for pt := board.Knight; pt <= board.King; pt++ {
		pieces := p.pieces[c][pt]
		for pieces != 0 {
			out |= p.t.Piece(pt, c, pieces.PopLSB(), occupied)
		}
	}
	return out
}

// attackersBy returns the pieces of color c attacking sq.
func (p *Position) attackersBy(c board.Color, sq board.Square, occupied board.Bitboard) board.Bitboard {
	pc := &p.pieces[c]
	return p.t.Pawn(c.Other(), sq)&pc[board.Pawn] |
		p.t.Knight(sq)&pc[board.Knight] |
		p.t.King(sq)&pc[board.King] |
		p.t.Bishop(sq, occupied)&(pc[board.Bishop]|pc[board.Queen]) |
		p.t.Rook(sq, occupied)&(pc[board.Rook]|pc[board.Queen])
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq board.Square, by board.Color) bool {
	return p.attackersBy(by, sq, p.allOccupied) != 0
}

// Validate checks that the position could arise in a game.
func (p *Position) Validate() error {
	for c := board.White; c <= board.Black; c++ {
		if n := p.pieces[c][board.King].PopCount(); n != 1 {
			return fmt.Errorf("%w: %v has %d kings", ErrInvalidPosition, c, n)
		}
	}
	if (p.pieces[board.White][board.Pawn]|p.pieces[board.Black][board.Pawn])&(board.Rank1|board.Rank8) != 0 {
		return fmt.Errorf("%w: pawns on first or last rank", ErrInvalidPosition)
	}
	them := p.side.Other()
	if p.IsSquareAttacked(p.KingSquare(them), p.side) {
		return fmt.Errorf("%w: %v king can be captured", ErrInvalidPosition, them)
	}
	if p.checkers.PopCount() > 2 {
		return fmt.Errorf("%w: %d checkers", ErrInvalidPosition, p.checkers.PopCount())
	}
	if ep := p.enPassant; ep != board.NoSquare {
		// The pawn that just advanced two squares passed over ep.
		step := board.PawnPush(them).Step()
		pushed := board.Square(int(ep) + step)
		origin := board.Square(int(ep) - step)
		switch {
		case !p.pieces[them][board.Pawn].IsSet(pushed):
			return fmt.Errorf("%w: no %v pawn in front of en passant square %v", ErrInvalidPosition, them, ep)
		case p.allOccupied&(board.SquareBB(ep)|board.SquareBB(origin)) != 0:
			return fmt.Errorf("%w: en passant square %v or %v is occupied", ErrInvalidPosition, ep, origin)
		}
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := board.Rank(7); ; rank-- {
		fmt.Fprintf(&sb, "%v  ", rank)
		for file := board.File(0); file < 8; file++ {
			piece := p.PieceAt(board.NewSquare(file, rank))
			if piece == board.NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
		if rank == 0 {
			break
		}
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "FEN: %s\n", p.FEN())
	fmt.Fprintf(&sb, "Hash: %016x\n", p.hash)
	fmt.Fprintf(&sb, "Checkers: %v\n", p.checkers.Squares())
	return sb.String()
}
