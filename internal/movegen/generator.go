// Package movegen generates legal chess moves with magic bitboards and a
// check-aware filter for pins, checks, en passant and castling.
package movegen

import (
	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/board"
)

// Generator enumerates legal moves. It only reads its attack tables and
// may be shared by any number of goroutines.
type Generator struct {
	t *attacks.Tables
}

// New returns a generator backed by t. The tables are required: a
// generator without tables cannot exist.
func New(t *attacks.Tables) *Generator {
	if t == nil {
		panic("movegen: New called with nil attack tables")
	}
	return &Generator{t: t}
}

// Tables returns the attack tables the generator reads.
func (g *Generator) Tables() *attacks.Tables {
	return g.t
}

// generation is the per-call state of the folder. quiet and capture are
// the destination masks selected by the check state.
type generation struct {
	t    *attacks.Tables
	pos  Position
	emit func(board.Move) bool

	us, them board.Color
	ksq      board.Square
	own      board.Bitboard
	occ      board.Bitboard
	pinned   board.Bitboard
	quiet    board.Bitboard
	capture  board.Bitboard
}

// generate runs the state machine and feeds each legal move to emit until
// emit returns false.
func (g *Generator) generate(pos Position, emit func(board.Move) bool) error {
	us := pos.SideToMove()
	kings := pos.Pieces(us, board.King)
	if kings == 0 {
		return ErrNoKing
	}

	s := generation{
		t:      g.t,
		pos:    pos,
		emit:   emit,
		us:     us,
		them:   us.Other(),
		ksq:    kings.LSB(),
		own:    pos.ColorOccupancy(us),
		occ:    pos.Occupancy(),
		pinned: pos.Blockers(),
	}

	checkers := pos.Checkers()
	switch CheckStateOf(checkers) {
	case NoCheck:
		s.quiet = ^s.occ
		s.capture = pos.ColorOccupancy(s.them)
		_ = s.castling() &&
			s.sliders(board.Rook) &&
			s.sliders(board.Bishop) &&
			s.sliders(board.Queen) &&
			s.king() &&
			s.knights() &&
			s.pawns()
	case SingleCheck:
		s.quiet = board.Between(s.ksq, checkers.LSB())
		s.capture = checkers
		_ = s.sliders(board.Rook) &&
			s.sliders(board.Bishop) &&
			s.sliders(board.Queen) &&
			s.king() &&
			s.knights() &&
			s.pawns()
	case DoubleCheck:
		s.king()
	}
	return nil
}

// targets emits one move per square in to, all with the same flag.
func (s *generation) targets(from board.Square, to board.Bitboard, flag board.MoveFlag) bool {
	for to != 0 {
		if !s.emit(board.NewMove(from, to.PopLSB(), flag)) {
			return false
		}
	}
	return true
}

// restrict returns the destinations a piece on from may use given pins.
func (s *generation) restrict(from board.Square) board.Bitboard {
	if s.pinned.IsSet(from) {
		return board.Ray(from, s.ksq)
	}
	return board.Universe
}

func (s *generation) sliders(pt board.PieceType) bool {
	pieces := s.pos.Pieces(s.us, pt)
	for pieces != 0 {
		from := pieces.PopLSB()
		var attacks board.Bitboard
		switch pt {
		case board.Rook:
			attacks = s.t.Rook(from, s.occ)
		case board.Bishop:
			attacks = s.t.Bishop(from, s.occ)
		default:
			attacks = s.t.Queen(from, s.occ)
		}
		attacks &= s.restrict(from)
		if !s.targets(from, attacks&s.capture, board.Capture) ||
			!s.targets(from, attacks&s.quiet, board.Quiet) {
			return false
		}
	}
	return true
}

func (s *generation) knights() bool {
	pieces := s.pos.Pieces(s.us, board.Knight)
	for pieces != 0 {
		from := pieces.PopLSB()
		// A pinned knight can never stay on its pin line.
		if s.pinned.IsSet(from) {
			continue
		}
		attacks := s.t.Knight(from)
		if !s.targets(from, attacks&s.capture, board.Capture) ||
			!s.targets(from, attacks&s.quiet, board.Quiet) {
			return false
		}
	}
	return true
}

// king emits king steps to squares the enemy does not attack. The enemy
// attack set was computed with the king on the board, so squares behind
// the king on a checking slider's line are re-tested without it.
func (s *generation) king() bool {
	candidates := s.t.King(s.ksq) &^ s.own &^ s.pos.Attacked()
	if candidates == 0 {
		return true
	}

	occ := s.occ &^ board.SquareBB(s.ksq)
	orth := s.pos.Pieces(s.them, board.Rook) | s.pos.Pieces(s.them, board.Queen)
	diag := s.pos.Pieces(s.them, board.Bishop) | s.pos.Pieces(s.them, board.Queen)

	var safe board.Bitboard
	for c := candidates; c != 0; {
		to := c.PopLSB()
		if s.t.Rook(to, occ)&orth == 0 && s.t.Bishop(to, occ)&diag == 0 {
			safe |= board.SquareBB(to)
		}
	}

	enemies := s.pos.ColorOccupancy(s.them)
	return s.targets(s.ksq, safe&enemies, board.Capture) &&
		s.targets(s.ksq, safe&^enemies, board.Quiet)
}

// castling is only reached when the king is not in check.
func (s *generation) castling() bool {
	rights := s.pos.CastlingRights()
	attacked := s.pos.Attacked()
	rooks := s.pos.Pieces(s.us, board.Rook)

	for _, cs := range board.Castles[s.us] {
		switch {
		case rights&cs.Right == 0:
			continue
		case s.ksq != cs.KingFrom || !rooks.IsSet(cs.RookFrom):
			continue
		case s.occ&cs.Path != 0:
			continue
		case attacked&(board.SquareBB(cs.Transit)|board.SquareBB(cs.KingTo)) != 0:
			continue
		}
		if !s.emit(board.NewMove(cs.KingFrom, cs.KingTo, cs.Flag)) {
			return false
		}
	}
	return true
}

func (s *generation) pawns() bool {
	push := board.PawnPush(s.us)
	promoRank := board.Rank8
	startRank := board.Rank2
	if s.us == board.Black {
		promoRank = board.Rank1
		startRank = board.Rank7
	}
	ep := s.pos.EnPassant()

	pawns := s.pos.Pieces(s.us, board.Pawn)
	for pawns != 0 {
		from := pawns.PopLSB()
		allowed := s.restrict(from)
		hits := s.t.Pawn(s.us, from)

		// Captures, promotions included.
		caps := hits & s.capture & allowed
		for caps != 0 {
			to := caps.PopLSB()
			if promoRank.IsSet(to) {
				if !s.promotions(from, to, true) {
					return false
				}
			} else if !s.emit(board.NewMove(from, to, board.Capture)) {
				return false
			}
		}

		if ep != board.NoSquare && hits.IsSet(ep) && allowed.IsSet(ep) && s.enPassantLegal(from, ep, push) {
			if !s.emit(board.NewMove(from, ep, board.EnPassant)) {
				return false
			}
		}

		// Pushes. The single push square must be empty even when only the
		// double push lands inside the quiet mask.
		single := board.SquareBB(from).Shift(push) &^ s.occ
		if single == 0 {
			continue
		}
		if single&s.quiet&allowed != 0 {
			to := single.LSB()
			if promoRank.IsSet(to) {
				if !s.promotions(from, to, false) {
					return false
				}
			} else if !s.emit(board.NewMove(from, to, board.Quiet)) {
				return false
			}
		}
		if startRank.IsSet(from) {
			double := single.Shift(push) &^ s.occ & s.quiet & allowed
			if double != 0 && !s.emit(board.NewMove(from, double.LSB(), board.DoublePawnPush)) {
				return false
			}
		}
	}
	return true
}

func (s *generation) promotions(from, to board.Square, capture bool) bool {
	for _, pt := range board.PromotionTypes {
		if !s.emit(board.NewMove(from, to, board.PromotionFlag(pt, capture))) {
			return false
		}
	}
	return true
}

// enPassantLegal checks an en passant capture from the pawn on from onto
// the target square ep. Beyond the usual check masks, removing two pawns
// from the same rank can open a line to the king that no pin covers.
func (s *generation) enPassantLegal(from, ep board.Square, push board.Direction) bool {
	captured := board.Square(int(ep) - push.Step())
	if !s.quiet.IsSet(ep) && !s.capture.IsSet(captured) {
		return false
	}

	occ := s.occ&^board.SquareBB(from)&^board.SquareBB(captured) | board.SquareBB(ep)
	orth := s.pos.Pieces(s.them, board.Rook) | s.pos.Pieces(s.them, board.Queen)
	if s.t.Rook(s.ksq, occ)&orth != 0 {
		return false
	}
	diag := s.pos.Pieces(s.them, board.Bishop) | s.pos.Pieces(s.them, board.Queen)
	return s.t.Bishop(s.ksq, occ)&diag == 0
}
