package position

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/board"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. The half-move clock
// and full-move number are optional. The result is not validated; call
// Validate before trusting a FEN from outside.
func ParseFEN(t *attacks.Tables, fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := &Position{
		t:              t,
		enPassant:      board.NoSquare,
		fullMoveNumber: 1,
	}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.side = board.White
	case "b":
		pos.side = board.Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := board.ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant: %v", ErrInvalidFEN, err)
		}
		if sq.RelativeRank(pos.side) != 5 {
			return nil, fmt.Errorf("%w: en passant square %v on wrong rank", ErrInvalidFEN, sq)
		}
		pos.enPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: invalid half-move clock %q", ErrInvalidFEN, parts[4])
		}
		pos.halfMoveClock = hmc
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: invalid full-move number %q", ErrInvalidFEN, parts[5])
		}
		pos.fullMoveNumber = fmn
	}

	pos.hash = pos.computeHash()
	pos.updateDerived()
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := board.Rank(7 - i) // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %v", ErrInvalidFEN, rank)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := board.PieceFromChar(byte(c))
			if piece == board.NoPiece {
				return fmt.Errorf("%w: invalid piece character %q", ErrInvalidFEN, c)
			}
			pos.setPiece(piece, board.NewSquare(board.File(file), rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %v has %d squares", ErrInvalidFEN, rank, file)
		}
	}
	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.castling = board.NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.castling |= board.WhiteKingSideCastle
		case 'Q':
			pos.castling |= board.WhiteQueenSideCastle
		case 'k':
			pos.castling |= board.BlackKingSideCastle
		case 'q':
			pos.castling |= board.BlackQueenSideCastle
		default:
			return fmt.Errorf("%w: invalid castling character %q", ErrInvalidFEN, c)
		}
	}
	return nil
}

// FEN returns the FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := board.Rank(7); ; rank-- {
		empty := 0
		for file := board.File(0); file < 8; file++ {
			piece := p.PieceAt(board.NewSquare(file, rank))
			if piece == board.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank == 0 {
			break
		}
		sb.WriteByte('/')
	}

	sb.WriteByte(' ')
	if p.side == board.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.enPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullMoveNumber))

	return sb.String()
}
