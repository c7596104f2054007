// Package attacks builds the precomputed attack tables: leaper tables for
// kings, knights and pawns, and magic bitboards for rooks and bishops.
//
// All tables live in a Tables value returned by New. There is no package
// level table state; callers pass the Tables to whatever needs lookups.
// A Tables value is immutable after New returns and safe for concurrent use.
package attacks

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chessmg/internal/board"
)

// Config controls table construction.
type Config struct {
	// RookSeed and BishopSeed seed the magic candidate generators. Any seed
	// produces equivalent tables; the seed only affects how many candidates
	// are tried before every square has a valid magic.
	RookSeed   uint64
	BishopSeed uint64

	// MaxAttempts bounds the candidates tried per square.
	MaxAttempts int

	Logger logr.Logger
}

// Production seeds, picked with cmd/magicseed.
const (
	DefaultRookSeed   uint64 = 0x2A6F1C0B9E5D4477
	DefaultBishopSeed uint64 = 0x51D3E8A4C7F02B19
)

// DefaultMaxAttempts is far above what any square needs in practice.
const DefaultMaxAttempts = 1 << 22

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		RookSeed:    DefaultRookSeed,
		BishopSeed:  DefaultBishopSeed,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Stats reports the work done while searching magics.
type Stats struct {
	RookAttempts   uint64
	BishopAttempts uint64
	Elapsed        time.Duration
}

// Total returns the number of candidates tried for both piece kinds.
func (s Stats) Total() uint64 {
	return s.RookAttempts + s.BishopAttempts
}

// Tables holds every precomputed attack set.
type Tables struct {
	knight [64]board.Bitboard
	king   [64]board.Bitboard
	pawn   [2][64]board.Bitboard // [Color][Square]

	magics [2][64]Magic     // [Slider][Square]
	shared []board.Bitboard // backing store for every magic slice

	stats Stats
}

// New builds all attack tables. It fails only if a square exhausts
// cfg.MaxAttempts without finding a magic multiplier.
func New(cfg Config) (*Tables, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	start := time.Now()
	t := &Tables{}
	t.initLeapers()
	if err := t.initMagics(cfg); err != nil {
		return nil, fmt.Errorf("build attack tables: %w", err)
	}
	t.stats.Elapsed = time.Since(start)

	cfg.Logger.V(1).Info("attack tables ready",
		"entries", len(t.shared),
		"rookAttempts", t.stats.RookAttempts,
		"bishopAttempts", t.stats.BishopAttempts,
		"elapsed", t.stats.Elapsed)
	return t, nil
}

// Default builds tables with DefaultConfig.
func Default() (*Tables, error) {
	return New(DefaultConfig())
}

func (t *Tables) initLeapers() {
	for sq := board.A1; sq <= board.H8; sq++ {
		bb := board.SquareBB(sq)

		for _, d := range board.KingDirections {
			t.king[sq] |= bb.Shift(d)
		}
		for _, d := range board.KnightDirections {
			t.knight[sq] |= bb.Shift(d)
		}
		for c := board.White; c <= board.Black; c++ {
			for _, d := range board.PawnCaptures(c) {
				t.pawn[c][sq] |= bb.Shift(d)
			}
		}
	}
}

// Stats returns the construction statistics.
func (t *Tables) Stats() Stats {
	return t.stats
}

// Knight returns the knight attack bitboard for a square.
func (t *Tables) Knight(sq board.Square) board.Bitboard {
	return t.knight[sq]
}

// King returns the king attack bitboard for a square.
func (t *Tables) King(sq board.Square) board.Bitboard {
	return t.king[sq]
}

// Pawn returns the squares a pawn of color c on sq attacks.
func (t *Tables) Pawn(c board.Color, sq board.Square) board.Bitboard {
	return t.pawn[c][sq]
}

// Rook returns rook attacks from sq for the given occupancy.
func (t *Tables) Rook(sq board.Square, occupied board.Bitboard) board.Bitboard {
	return t.magics[Rook][sq].lookup(t.shared, occupied)
}

// Bishop returns bishop attacks from sq for the given occupancy.
func (t *Tables) Bishop(sq board.Square, occupied board.Bitboard) board.Bitboard {
	return t.magics[Bishop][sq].lookup(t.shared, occupied)
}

// Queen returns the union of rook and bishop attacks.
func (t *Tables) Queen(sq board.Square, occupied board.Bitboard) board.Bitboard {
	return t.Rook(sq, occupied) | t.Bishop(sq, occupied)
}

// Piece returns the attacks of a piece of type pt and color c on sq.
func (t *Tables) Piece(pt board.PieceType, c board.Color, sq board.Square, occupied board.Bitboard) board.Bitboard {
	switch pt {
	case board.Pawn:
		return t.pawn[c][sq]
	case board.Knight:
		return t.knight[sq]
	case board.Bishop:
		return t.Bishop(sq, occupied)
	case board.Rook:
		return t.Rook(sq, occupied)
	case board.Queen:
		return t.Queen(sq, occupied)
	case board.King:
		return t.king[sq]
	}
	return board.Empty
}
