package position

import "github.com/hailam/chessmg/internal/board"

// Undo stores everything needed to take a move back.
type Undo struct {
	prev Position
}

// MakeMove applies a legal move and returns undo information. The move
// must come from the generator for this exact position; MakeMove does not
// check legality.
func (p *Position) MakeMove(m board.Move) Undo {
	undo := Undo{prev: *p}

	us := p.side
	them := us.Other()
	from, to := m.From(), m.To()
	moving := p.PieceAt(from)
	pt := moving.Type()

	// Clear en passant
	if p.enPassant != board.NoSquare {
		p.hash ^= zobrist.enPassant[p.enPassant.File()]
		p.enPassant = board.NoSquare
	}

	// Handle captures
	captured := board.NoPiece
	switch {
	case m.IsEnPassant():
		capSq := board.Square(int(to) - board.PawnPush(us).Step())
		captured = board.NewPiece(board.Pawn, them)
		p.removePiece(captured, capSq)
	case m.IsCapture():
		captured = p.PieceAt(to)
		p.removePiece(captured, to)
	}

	// Move the piece; promotions swap the pawn for the new piece.
	p.removePiece(moving, from)
	if promo := m.Promotion(); promo != board.NoPieceType {
		p.addPiece(board.NewPiece(promo, us), to)
	} else {
		p.addPiece(moving, to)
	}

	if m.IsCastling() {
		cs := board.Castles[us][0]
		if m.Flag() == board.QueenCastle {
			cs = board.Castles[us][1]
		}
		rook := board.NewPiece(board.Rook, us)
		p.removePiece(rook, cs.RookFrom)
		p.addPiece(rook, cs.RookTo)
	}

	// Castling rights
	if rights := p.castling.Without(from, to); rights != p.castling {
		p.hash ^= zobrist.castling[p.castling] ^ zobrist.castling[rights]
		p.castling = rights
	}

	if m.IsDoublePawnPush() {
		p.enPassant = board.Square((int(from) + int(to)) / 2)
		p.hash ^= zobrist.enPassant[p.enPassant.File()]
	}

	if pt == board.Pawn || captured != board.NoPiece {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}
	if us == board.Black {
		p.fullMoveNumber++
	}

	p.side = them
	p.hash ^= zobrist.black

	p.updateDerived()
	return undo
}

// UnmakeMove restores the position saved by MakeMove.
func (p *Position) UnmakeMove(undo Undo) {
	*p = undo.prev
}

// MakeNullMove passes the turn. It must not be called while in check.
func (p *Position) MakeNullMove() Undo {
	undo := Undo{prev: *p}
	if p.enPassant != board.NoSquare {
		p.hash ^= zobrist.enPassant[p.enPassant.File()]
		p.enPassant = board.NoSquare
	}
	p.side = p.side.Other()
	p.hash ^= zobrist.black
	p.halfMoveClock++
	p.updateDerived()
	return undo
}

func (p *Position) addPiece(piece board.Piece, sq board.Square) {
	p.setPiece(piece, sq)
	p.hash ^= zobrist.piece[piece.Color()][piece.Type()][sq]
}

func (p *Position) removePiece(piece board.Piece, sq board.Square) {
	c, pt := piece.Color(), piece.Type()
	bb := board.SquareBB(sq)
	p.pieces[c][pt] &^= bb
	p.occupied[c] &^= bb
	p.allOccupied &^= bb
	p.hash ^= zobrist.piece[c][pt][sq]
}
