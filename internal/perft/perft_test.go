package perft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/board"
	"github.com/hailam/chessmg/internal/movegen"
	"github.com/hailam/chessmg/internal/position"
)

const (
	kiwipete  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -"
	position3 = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -"
	position4 = "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"
	position5 = "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8"
)

var sharedTables = sync.OnceValues(attacks.Default)

func setup(t *testing.T, fen string) (*movegen.Generator, *position.Position) {
	t.Helper()
	tb, err := sharedTables()
	if err != nil {
		t.Fatalf("attack tables: %v", err)
	}
	pos, err := position.ParseFEN(tb, fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	return movegen.New(tb), pos
}

type perftCase struct {
	depth    int
	expected uint64
	long     bool
}

func runPerft(t *testing.T, fen string, cases []perftCase) {
	t.Helper()
	g, pos := setup(t, fen)
	for _, tc := range cases {
		t.Run("", func(t *testing.T) {
			if tc.long && testing.Short() {
				t.Skipf("depth %d skipped in short mode", tc.depth)
			}
			var got uint64
			var err error
			if tc.long {
				got, err = Parallel(context.Background(), g, pos, tc.depth, 0)
			} else {
				got, err = Perft(context.Background(), g, pos, tc.depth)
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	runPerft(t, position.StartFEN, []perftCase{
		{1, 20, false},
		{2, 400, false},
		{3, 8902, false},
		{4, 197281, false},
		{5, 4865609, true},
	})
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
func TestPerftKiwipete(t *testing.T) {
	runPerft(t, kiwipete, []perftCase{
		{1, 48, false},
		{2, 2039, false},
		{3, 97862, false},
		{4, 4085603, true},
		{5, 193690690, true},
	})
}

// TestPerftPosition3 tests en passant edge cases.
func TestPerftPosition3(t *testing.T) {
	runPerft(t, position3, []perftCase{
		{1, 14, false},
		{2, 191, false},
		{3, 2812, false},
		{4, 43238, false},
		{5, 674624, true},
		{6, 11030083, true},
	})
}

func TestPerftPosition4(t *testing.T) {
	runPerft(t, position4, []perftCase{
		{1, 6, false},
		{2, 264, false},
		{3, 9467, false},
		{4, 422333, true},
	})
}

func TestPerftPosition5(t *testing.T) {
	runPerft(t, position5, []perftCase{
		{1, 44, false},
		{2, 1486, false},
		{3, 62379, false},
		{4, 2103487, true},
	})
}

// TestPerftEnPassantPin tests the en passant horizontal pin edge case.
// Black pawn on e4 can capture en passant d3, but this would expose the
// black king on a4 to the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	runPerft(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []perftCase{
		{1, 6, false},
		{2, 94, false},
	})
}

func TestPerftRestoresPosition(t *testing.T) {
	g, pos := setup(t, kiwipete)
	fen, hash := pos.FEN(), pos.Hash()
	if _, err := Perft(context.Background(), g, pos, 3); err != nil {
		t.Fatal(err)
	}
	if pos.FEN() != fen || pos.Hash() != hash {
		t.Errorf("position changed: %s", pos.FEN())
	}
}

func TestPerftDepthZero(t *testing.T) {
	g, pos := setup(t, position.StartFEN)
	n, err := Perft(context.Background(), g, pos, 0)
	if err != nil || n != 1 {
		t.Errorf("perft(0) = %d, %v", n, err)
	}
	if _, err := Perft(context.Background(), g, pos, -1); !errors.Is(err, ErrInvalidDepth) {
		t.Errorf("perft(-1): expected ErrInvalidDepth, got %v", err)
	}
	if _, err := Divide(context.Background(), g, pos, 0); !errors.Is(err, ErrInvalidDepth) {
		t.Errorf("divide(0): expected ErrInvalidDepth, got %v", err)
	}
}

func TestDivide(t *testing.T) {
	g, pos := setup(t, position.StartFEN)
	entries, err := Divide(context.Background(), g, pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 20 {
		t.Fatalf("%d root moves, want 20", len(entries))
	}
	if Total(entries) != 8902 {
		t.Errorf("total = %d, want 8902", Total(entries))
	}

	got := map[string]uint64{}
	for i, e := range entries {
		got[e.Move.String()] = e.Nodes
		if i > 0 && entries[i-1].Move.String() >= e.Move.String() {
			t.Errorf("entries not sorted at %d", i)
		}
	}
	want := map[string]uint64{"e2e4": 600, "g1f3": 440, "a2a3": 380, "b1c3": 440, "d2d4": 560}
	for m, n := range want {
		if got[m] != n {
			t.Errorf("%s: %d, want %d", m, got[m], n)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	g, pos := setup(t, kiwipete)
	seq, err := Perft(context.Background(), g, pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{1, 3, 8} {
		par, err := Parallel(context.Background(), g, pos, 3, workers)
		if err != nil {
			t.Fatal(err)
		}
		if par != seq {
			t.Errorf("workers=%d: %d, want %d", workers, par, seq)
		}
	}
}

func TestCacheKeepsCounts(t *testing.T) {
	g, pos := setup(t, position4)
	cache, err := NewCache(1 << 16)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	c := NewCounter(g, Options{Cache: cache, Workers: 4})
	for range 2 {
		n, err := c.Parallel(context.Background(), pos, 3)
		if err != nil {
			t.Fatal(err)
		}
		if n != 9467 {
			t.Fatalf("cached perft(3) = %d, want 9467", n)
		}
		cache.Wait()
	}

	entries, err := c.Divide(context.Background(), pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Divide(context.Background(), g, pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(plain, entries); diff != "" {
		t.Errorf("cached divide differs (-plain +cached):\n%s", diff)
	}
}

func TestCacheRejectsOtherDepth(t *testing.T) {
	cache, err := NewCache(1024)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	cache.Put(0xDEADBEEF, 3, 42)
	cache.Wait()
	if n, ok := cache.Get(0xDEADBEEF, 3); ok && n != 42 {
		t.Errorf("Get = %d, want 42", n)
	}
	if _, ok := cache.Get(0xDEADBEEF, 4); ok {
		t.Error("hit for a depth never stored")
	}
}

func TestCancellation(t *testing.T) {
	g, pos := setup(t, kiwipete)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Perft(ctx, g, pos, 4); !errors.Is(err, context.Canceled) {
		t.Errorf("Perft: expected context.Canceled, got %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := Parallel(ctx, g, pos, 7, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Parallel: expected deadline exceeded, got %v", err)
	}
}

func TestNoKingPropagates(t *testing.T) {
	g, pos := setup(t, "8/8/8/8/8/8/8/4k3 w - - 0 1")
	if _, err := Perft(context.Background(), g, pos, 2); !errors.Is(err, movegen.ErrNoKing) {
		t.Errorf("expected ErrNoKing, got %v", err)
	}
	var ml board.MoveList
	if err := g.Legal(pos, &ml); !errors.Is(err, movegen.ErrNoKing) {
		t.Errorf("Legal: expected ErrNoKing, got %v", err)
	}
}
