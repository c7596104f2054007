package attacks

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/hailam/chessmg/internal/board"
)

var defaultTables = sync.OnceValues(Default)

func tables(t *testing.T) *Tables {
	t.Helper()
	tb, err := defaultTables()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	return tb
}

func TestMagicMatchesRayTracing(t *testing.T) {
	tb := tables(t)
	noise := rand.New(rand.NewSource(7))

	for _, s := range []Slider{Rook, Bishop} {
		lookup := tb.Rook
		if s == Bishop {
			lookup = tb.Bishop
		}
		for sq := board.A1; sq <= board.H8; sq++ {
			mask := RelevantMask(s, sq)
			for subset := board.Empty; ; {
				want := SlidingAttacks(s, sq, subset)
				if got := lookup(sq, subset); got != want {
					t.Fatalf("%v %v occ %#x: got %#x, want %#x", s, sq, uint64(subset), uint64(got), uint64(want))
				}
				// Bits outside the mask never change the result.
				extra := subset | board.Bitboard(noise.Uint64())&^mask
				if got := lookup(sq, extra); got != want {
					t.Fatalf("%v %v: bits outside the mask changed the lookup", s, sq)
				}
				subset = (subset - mask) & mask
				if subset == 0 {
					break
				}
			}
		}
	}
}

func TestEmptyBoardAttacks(t *testing.T) {
	tb := tables(t)

	tests := []struct {
		name string
		got  board.Bitboard
		want board.Bitboard
	}{
		{"bishop e4", tb.Bishop(board.E4, board.Empty), 0x182442800284482},
		{"rook a1", tb.Rook(board.A1, board.Empty), 0x1010101010101fe},
		{"queen d4", tb.Queen(board.D4, board.Empty), tb.Rook(board.D4, 0) | tb.Bishop(board.D4, 0)},
		{"knight a1", tb.Knight(board.A1), board.SquareBB(board.B3) | board.SquareBB(board.C2)},
		{"king h8", tb.King(board.H8), board.SquareBB(board.G8) | board.SquareBB(board.G7) | board.SquareBB(board.H7)},
		{"white pawn a2", tb.Pawn(board.White, board.A2), board.SquareBB(board.B3)},
		{"black pawn e7", tb.Pawn(board.Black, board.E7), board.SquareBB(board.D6) | board.SquareBB(board.F6)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %#x, want %#x", uint64(tc.got), uint64(tc.want))
			}
		})
	}
}

func TestBlockedRook(t *testing.T) {
	tb := tables(t)
	occ := board.SquareBB(board.D6) | board.SquareBB(board.F4) | board.SquareBB(board.D2)
	want := board.SquareBB(board.D5) | board.SquareBB(board.D6) |
		board.SquareBB(board.D3) | board.SquareBB(board.D2) |
		board.SquareBB(board.E4) | board.SquareBB(board.F4) |
		board.SquareBB(board.C4) | board.SquareBB(board.B4) | board.SquareBB(board.A4)
	if got := tb.Rook(board.D4, occ); got != want {
		t.Errorf("Rook(d4) = %#x, want %#x", uint64(got), uint64(want))
	}
}

func TestTableLayout(t *testing.T) {
	tb := tables(t)
	var next uint32
	for _, s := range []Slider{Rook, Bishop} {
		for sq := board.A1; sq <= board.H8; sq++ {
			m := tb.Magic(s, sq)
			if m.Offset != next {
				t.Fatalf("%v %v: offset %#x, want %#x", s, sq, m.Offset, next)
			}
			if m.Length != 1<<(64-m.Shift) || int(m.Length) != 1<<m.Mask.PopCount() {
				t.Fatalf("%v %v: length %d does not match mask", s, sq, m.Length)
			}
			next += m.Length
		}
	}
	if next != TableSize {
		t.Errorf("slices cover %#x entries, want %#x", next, TableSize)
	}
}

func TestDeterministicBuild(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(a.magics, b.magics); diff != "" {
		t.Errorf("magics differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.shared, b.shared); diff != "" {
		t.Errorf("shared table differs (-a +b):\n%s", diff)
	}
	if a.Stats().Total() != b.Stats().Total() {
		t.Errorf("attempts differ: %d vs %d", a.Stats().Total(), b.Stats().Total())
	}
}

func TestOtherSeeds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RookSeed, cfg.BishopSeed = 1, 2
	other, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tb := tables(t)

	// Different multipliers, same answers.
	occ := board.Bitboard(0x0000_2410_0842_0000)
	for sq := board.A1; sq <= board.H8; sq++ {
		if other.Queen(sq, occ) != tb.Queen(sq, occ) {
			t.Fatalf("seeds disagree on %v", sq)
		}
	}
}

func TestMagicNotFound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	_, err := New(cfg)
	if !errors.Is(err, ErrMagicNotFound) {
		t.Fatalf("expected ErrMagicNotFound, got %v", err)
	}
}

func TestRelevantMask(t *testing.T) {
	tests := []struct {
		s    Slider
		sq   board.Square
		bits int
	}{
		{Rook, board.A1, 12},
		{Rook, board.E4, 10},
		{Bishop, board.A1, 6},
		{Bishop, board.E4, 9},
		{Bishop, board.D4, 9},
	}
	for _, tc := range tests {
		if got := RelevantMask(tc.s, tc.sq).PopCount(); got != tc.bits {
			t.Errorf("%v %v: %d relevant bits, want %d", tc.s, tc.sq, got, tc.bits)
		}
	}
}
