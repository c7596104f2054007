package position

import (
	"golang.org/x/exp/rand"

	"github.com/hailam/chessmg/internal/board"
)

// zobristSeed fixes the keys so hashes are stable across runs and can be
// stored alongside perft results.
const zobristSeed = 0x98F107A2BEEF1234

type zobristKeys struct {
	piece     [2][6][64]uint64
	enPassant [8]uint64  // by file
	castling  [16]uint64 // by CastlingRights value
	black     uint64
}

var zobrist = newZobristKeys(zobristSeed)

func newZobristKeys(seed uint64) *zobristKeys {
	rng := rand.New(rand.NewSource(seed))
	k := new(zobristKeys)
	for c := range k.piece {
		for pt := range k.piece[c] {
			for sq := range k.piece[c][pt] {
				k.piece[c][pt][sq] = rng.Uint64()
			}
		}
	}
	for i := range k.enPassant {
		k.enPassant[i] = rng.Uint64()
	}
	for i := range k.castling {
		k.castling[i] = rng.Uint64()
	}
	k.black = rng.Uint64()
	return k
}

// computeHash hashes the position from scratch. MakeMove keeps p.hash in
// step incrementally; the two must always agree.
func (p *Position) computeHash() uint64 {
	var hash uint64
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := p.pieces[c][pt]; bb != 0; {
				hash ^= zobrist.piece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.side == board.Black {
		hash ^= zobrist.black
	}
	hash ^= zobrist.castling[p.castling]
	if p.enPassant != board.NoSquare {
		hash ^= zobrist.enPassant[p.enPassant.File()]
	}
	return hash
}
