// Package notation converts between legal moves and Standard Algebraic
// Notation.
package notation

import (
	"fmt"
	"strings"

	"github.com/hailam/chessmg/internal/board"
	"github.com/hailam/chessmg/internal/movegen"
	"github.com/hailam/chessmg/internal/position"
)

// SAN converts a legal move to Standard Algebraic Notation, with a + or #
// suffix when the move gives check or mate.
func SAN(g *movegen.Generator, pos *position.Position, m board.Move) (string, error) {
	if m == board.NoMove {
		return "-", nil
	}

	from := m.From()
	to := m.To()
	piece := pos.PieceAt(from)
	if piece == board.NoPiece {
		return "", fmt.Errorf("%v: no piece on %v: %w", m, from, movegen.ErrIllegalMove)
	}

	var sb strings.Builder

	switch m.Flag() {
	case board.KingCastle:
		sb.WriteString("O-O")
	case board.QueenCastle:
		sb.WriteString("O-O-O")
	default:
		pt := piece.Type()

		// Piece letter and disambiguation (not for pawns)
		if pt != board.Pawn {
			sb.WriteByte("PNBRQK"[pt])
			disambig, err := disambiguation(g, pos, m, pt)
			if err != nil {
				return "", err
			}
			sb.WriteString(disambig)
		}

		if m.IsCapture() {
			if pt == board.Pawn {
				// Pawn captures include the file of origin
				sb.WriteString(from.File().String())
			}
			sb.WriteByte('x')
		}

		sb.WriteString(to.String())

		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	// Check/checkmate marker
	next := pos.Copy()
	next.MakeMove(m)
	status, err := g.Status(next)
	if err != nil {
		return "", err
	}
	if status == movegen.Checkmate {
		sb.WriteByte('#')
	} else if next.InCheck() {
		sb.WriteByte('+')
	}

	return sb.String(), nil
}

// disambiguation returns the file, rank or square needed to tell m apart
// from other legal moves of the same piece type to the same square.
func disambiguation(g *movegen.Generator, pos *position.Position, m board.Move, pt board.PieceType) (string, error) {
	from := m.From()
	pieces := pos.Pieces(pos.SideToMove(), pt)

	candidates, err := movegen.Fold(g, pos, board.Empty, func(acc board.Bitboard, other board.Move) movegen.Step[board.Bitboard] {
		if other.To() == m.To() && other.From() != from && pieces.IsSet(other.From()) {
			acc |= board.SquareBB(other.From())
		}
		return movegen.Continue(acc)
	})
	if err != nil {
		return "", err
	}

	// No ambiguity
	if candidates == 0 {
		return "", nil
	}

	if candidates&board.FileMask[from.File()] == 0 {
		return from.File().String(), nil
	}
	if candidates&board.RankMask[from.Rank()] == 0 {
		return from.Rank().String(), nil
	}
	return from.String(), nil
}

// ParseSAN returns the legal move written in Standard Algebraic Notation.
func ParseSAN(g *movegen.Generator, pos *position.Position, s string) (board.Move, error) {
	orig := s
	s = strings.TrimSpace(s)

	// Remove check/checkmate markers and annotations
	s = strings.TrimRight(s, "+#!?")

	var castle board.MoveFlag
	switch s {
	case "O-O", "0-0":
		castle = board.KingCastle
	case "O-O-O", "0-0-0":
		castle = board.QueenCastle
	}

	pt := board.Pawn
	promo := board.NoPieceType
	dest := board.NoSquare
	disambigFile, disambigRank := -1, -1
	isCapture := false

	if castle == 0 {
		// Parse promotion
		if idx := strings.IndexByte(s, '='); idx >= 0 {
			if idx+1 >= len(s) {
				return board.NoMove, fmt.Errorf("%q: missing promotion piece: %w", orig, movegen.ErrIllegalMove)
			}
			promo = pieceTypeFromSAN(s[idx+1])
			if promo == board.NoPieceType || promo == board.Pawn || promo == board.King {
				return board.NoMove, fmt.Errorf("%q: bad promotion piece: %w", orig, movegen.ErrIllegalMove)
			}
			s = s[:idx]
		}

		isCapture = strings.Contains(s, "x")
		s = strings.ReplaceAll(s, "x", "")

		if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
			pt = pieceTypeFromSAN(s[0])
			if pt == board.NoPieceType {
				return board.NoMove, fmt.Errorf("%q: bad piece letter: %w", orig, movegen.ErrIllegalMove)
			}
			s = s[1:]
		}

		// Destination is the last two characters
		if len(s) < 2 {
			return board.NoMove, fmt.Errorf("%q: missing destination: %w", orig, movegen.ErrIllegalMove)
		}
		var err error
		if dest, err = board.ParseSquare(s[len(s)-2:]); err != nil {
			return board.NoMove, fmt.Errorf("%q: %v: %w", orig, err, movegen.ErrIllegalMove)
		}

		for _, c := range s[:len(s)-2] {
			switch {
			case c >= 'a' && c <= 'h':
				disambigFile = int(c - 'a')
			case c >= '1' && c <= '8':
				disambigRank = int(c - '1')
			}
		}
	}

	found, err := movegen.Fold(g, pos, board.NoMove, func(acc, m board.Move) movegen.Step[board.Move] {
		if castle != 0 {
			if m.Flag() == castle {
				return movegen.Stop(m)
			}
			return movegen.Continue(acc)
		}

		from := m.From()
		switch {
		case m.To() != dest,
			m.IsCastling(),
			pos.PieceAt(from).Type() != pt,
			disambigFile >= 0 && int(from.File()) != disambigFile,
			disambigRank >= 0 && int(from.Rank()) != disambigRank,
			isCapture && !m.IsCapture(),
			m.Promotion() != promo:
			return movegen.Continue(acc)
		}
		return movegen.Stop(m)
	})
	if err != nil {
		return board.NoMove, err
	}
	if found == board.NoMove {
		return board.NoMove, fmt.Errorf("%q: %w", orig, movegen.ErrIllegalMove)
	}
	return found, nil
}

func pieceTypeFromSAN(c byte) board.PieceType {
	switch c {
	case 'N':
		return board.Knight
	case 'B':
		return board.Bishop
	case 'R':
		return board.Rook
	case 'Q':
		return board.Queen
	case 'K':
		return board.King
	}
	return board.NoPieceType
}

// MovesToSAN converts a sequence of moves played from pos to SAN. pos is
// not modified.
func MovesToSAN(g *movegen.Generator, pos *position.Position, moves []board.Move) ([]string, error) {
	result := make([]string, len(moves))
	p := pos.Copy()

	for i, m := range moves {
		s, err := SAN(g, p, m)
		if err != nil {
			return nil, err
		}
		result[i] = s
		p.MakeMove(m)
	}
	return result, nil
}

// ParseMove accepts either long algebraic ("e2e4") or SAN ("e4").
func ParseMove(g *movegen.Generator, pos *position.Position, s string) (board.Move, error) {
	if m, err := g.ParseUCI(pos, s); err == nil {
		return m, nil
	}
	return ParseSAN(g, pos, s)
}
