package attacks

import (
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/exp/rand"

	"github.com/hailam/chessmg/internal/board"
)

// Slider identifies the sliding piece kind a magic belongs to.
type Slider uint8

const (
	Rook Slider = iota
	Bishop
)

func (s Slider) String() string {
	if s == Rook {
		return "rook"
	}
	return "bishop"
}

func (s Slider) directions() [4]board.Direction {
	if s == Rook {
		return board.RookDirections
	}
	return board.BishopDirections
}

// TableSize is the number of entries in the shared attack table: the sum
// of 2^popcount(mask) over every square, rooks and bishops together.
const TableSize = 0x1A480

// ErrMagicNotFound is returned when a square runs out of attempts.
var ErrMagicNotFound = errors.New("no magic multiplier found")

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   board.Bitboard // Relevant occupancy mask (excludes edges)
	Magic  uint64         // Magic multiplier
	Shift  uint8          // Bits to shift right
	Offset uint32         // Start of this square's slice in the shared table
	Length uint32         // Slice length, 1 << (64 - Shift)
}

func (m *Magic) index(occupied board.Bitboard) uint32 {
	return uint32((uint64(occupied&m.Mask) * m.Magic) >> m.Shift)
}

func (m *Magic) lookup(shared []board.Bitboard, occupied board.Bitboard) board.Bitboard {
	return shared[m.Offset+m.index(occupied)]
}

// Magic returns the descriptor for a slider on a square.
func (t *Tables) Magic(s Slider, sq board.Square) Magic {
	return t.magics[s][sq]
}

// RelevantMask returns the occupancy bits that can change the attacks of
// slider s on sq: its empty-board rays without the far edge squares.
func RelevantMask(s Slider, sq board.Square) board.Bitboard {
	edges := ((board.Rank1 | board.Rank8) &^ board.RankMask[sq.Rank()]) |
		((board.FileA | board.FileH) &^ board.FileMask[sq.File()])
	return SlidingAttacks(s, sq, board.Empty) &^ edges
}

// SlidingAttacks computes slider attacks by ray tracing. It is the
// reference the magic tables are built from and checked against.
func SlidingAttacks(s Slider, sq board.Square, occupied board.Bitboard) board.Bitboard {
	var attacks board.Bitboard
	for _, d := range s.directions() {
		ray := board.Slide(sq, d)
		blockers := ray & occupied
		if blockers == 0 {
			attacks |= ray
			continue
		}
		// Nearest blocker: lowest bit on rays going up the board, highest
		// bit on rays going down. Cut everything past it.
		if d.Step() > 0 {
			attacks |= ray &^ board.NorthOf(blockers.LSB())
		} else {
			attacks |= ray &^ board.SouthOf(blockers.MSB())
		}
	}
	return attacks
}

// candidate draws a sparse 64-bit number.
func candidate(rng *rand.Rand) uint64 {
	return rng.Uint64() & rng.Uint64() & rng.Uint64()
}

func (t *Tables) initMagics(cfg Config) error {
	t.shared = make([]board.Bitboard, TableSize)

	var offset uint32
	for _, s := range []Slider{Rook, Bishop} {
		seed := cfg.RookSeed
		if s == Bishop {
			seed = cfg.BishopSeed
		}
		rng := rand.New(rand.NewSource(seed))

		for sq := board.A1; sq <= board.H8; sq++ {
			m, attempts, err := t.searchMagic(s, sq, offset, rng, cfg.MaxAttempts)
			if s == Rook {
				t.stats.RookAttempts += uint64(attempts)
			} else {
				t.stats.BishopAttempts += uint64(attempts)
			}
			if err != nil {
				return err
			}
			t.magics[s][sq] = m
			offset += m.Length
		}
	}

	if offset != TableSize {
		return fmt.Errorf("magic slices use %#x entries, want %#x", offset, TableSize)
	}
	return nil
}

// searchMagic finds a multiplier for one square and fills its slice of
// the shared table starting at offset.
func (t *Tables) searchMagic(s Slider, sq board.Square, offset uint32, rng *rand.Rand, maxAttempts int) (Magic, int, error) {
	mask := RelevantMask(s, sq)
	n := mask.PopCount()
	m := Magic{
		Mask:   mask,
		Shift:  uint8(64 - n),
		Offset: offset,
		Length: 1 << n,
	}
	if int(offset)+int(m.Length) > len(t.shared) {
		return m, 0, fmt.Errorf("%v %v: slice at %#x overflows shared table", s, sq, offset)
	}

	// Carry-Rippler enumeration of every subset of mask.
	occupancies := make([]board.Bitboard, 0, m.Length)
	references := make([]board.Bitboard, 0, m.Length)
	for subset := board.Empty; ; {
		occupancies = append(occupancies, subset)
		references = append(references, SlidingAttacks(s, sq, subset))
		subset = (subset - mask) & mask
		if subset == 0 {
			break
		}
	}

	slice := t.shared[offset : offset+m.Length]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.Magic = candidate(rng)
		if bits.OnesCount64((uint64(mask)*m.Magic)>>56) < 6 {
			continue
		}

		clear(slice)
		ok := true
		for i, occ := range occupancies {
			idx := m.index(occ)
			// Attack sets are never empty, so zero marks a free slot.
			if slice[idx] == 0 {
				slice[idx] = references[i]
			} else if slice[idx] != references[i] {
				ok = false
				break
			}
		}
		if ok {
			return m, attempt, nil
		}
	}

	clear(slice)
	return m, maxAttempts, fmt.Errorf("%v %v after %d attempts: %w", s, sq, maxAttempts, ErrMagicNotFound)
}
