package uci

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/movegen"
)

var sharedTables = sync.OnceValues(attacks.Default)

// run feeds script to a fresh handler and returns everything it printed.
func run(t *testing.T, script string) string {
	t.Helper()
	tb, err := sharedTables()
	if err != nil {
		t.Fatalf("attack tables: %v", err)
	}
	u := New(movegen.New(tb), Options{Logger: testr.New(t), Seed: 1})

	var out bytes.Buffer
	if err := u.Run(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci\nisready\n")
	for _, want := range []string{"id name chessmg", "option name Hash", "option name Threads", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "uciok") > strings.Index(out, "readyok") {
		t.Error("readyok printed before uciok")
	}
}

func TestGoPerft(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			"start position",
			"position startpos\ngo perft 2\n",
			[]string{"e2e4: 20", "g1f3: 20", "Nodes searched: 400"},
		},
		{
			"after moves",
			"position startpos moves e2e4\ngo perft 2\n",
			[]string{"Nodes searched: 600"},
		},
		{
			"fen with en passant pin",
			"position fen 8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1\ngo perft 1\n",
			[]string{"Nodes searched: 6"},
		},
		{
			"fen with moves",
			"position fen r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1 moves e1g1\ngo perft 1\n",
			[]string{"e8c8: 1", "e8d8: 1", "Nodes searched: 23"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := run(t, tc.script)
			for _, want := range tc.want {
				if !strings.Contains(out, want) {
					t.Errorf("missing %q in:\n%s", want, out)
				}
			}
		})
	}
}

func TestPerftCommand(t *testing.T) {
	out := run(t, "setoption name Threads value 4\nsetoption name Hash value 1\nperft 3\n")
	if !strings.Contains(out, "Nodes: 8902") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Invalid") {
		t.Errorf("options rejected:\n%s", out)
	}
}

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		script string
		want   string
	}{
		{"position startpos moves e2e5\n", "Invalid move"},
		{"position fen 8/8/8/8/8/8/8/8 w - - 0 1\n", "Invalid FEN"},
		{"position fen not a fen\n", "Invalid FEN"},
		{"position fen 4k3/8/8/4P3/8/8/8/4K3 w - d6 0 1\n", "Invalid FEN"},
		{"go perft x\n", "Invalid perft depth"},
		{"setoption name Threads value 0\n", "Invalid Threads value"},
		{"setoption name Hash value lots\n", "Invalid Hash value"},
		{"setoption name Ponder value true\n", "Unknown option: Ponder"},
		{"frobnicate\n", "Unknown command: frobnicate"},
	}
	for _, tc := range tests {
		if out := run(t, tc.script); !strings.Contains(out, tc.want) {
			t.Errorf("%q: missing %q in:\n%s", tc.script, tc.want, out)
		}
	}
}

// A bad move leaves the previous position in place.
func TestInvalidMoveKeepsPosition(t *testing.T) {
	out := run(t, "position startpos moves e2e4\nposition startpos moves e7e5\ngo perft 1\n")
	if !strings.Contains(out, "Nodes searched: 20") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

var bestMoveRe = regexp.MustCompile(`(?m)^bestmove ([a-h][1-8][a-h][1-8][nbrq]?)$`)

func TestGoRandomMove(t *testing.T) {
	out := run(t, "position startpos moves e2e4\ngo wtime 1000 btime 1000\n")
	match := bestMoveRe.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("no bestmove in:\n%s", out)
	}
	if match[1][1] != '7' && match[1][1] != '8' {
		t.Errorf("bestmove %s is not a black move", match[1])
	}
}

func TestGoWithoutMoves(t *testing.T) {
	out := run(t, "position fen 7k/6Q1/6K1/8/8/8/8/8 b - - 0 1\ngo\n")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMovesCommand(t *testing.T) {
	out := run(t, "position startpos\nmoves\n")
	for _, want := range []string{"g1f3 Nf3", "e2e4 e4", "Legal moves: 20"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestStopCancelsPerft(t *testing.T) {
	out := run(t, "go perft 7\nstop\nisready\n")
	if !strings.Contains(out, "perft stopped") {
		t.Errorf("perft not stopped:\n%s", out)
	}
	if strings.Contains(out, "Nodes searched") {
		t.Errorf("stopped perft reported a total:\n%s", out)
	}
	if !strings.HasSuffix(out, "readyok\n") {
		t.Errorf("readyok not last:\n%s", out)
	}
}

func TestQuit(t *testing.T) {
	if out := run(t, "quit\nisready\n"); strings.Contains(out, "readyok") {
		t.Errorf("commands read after quit:\n%s", out)
	}
}

// Cancelling the context ends Run even when no input ever arrives.
func TestCancelWhileIdle(t *testing.T) {
	tb, err := sharedTables()
	if err != nil {
		t.Fatalf("attack tables: %v", err)
	}
	u := New(movegen.New(tb), Options{Logger: testr.New(t), Seed: 1})

	pr, pw := io.Pipe()
	t.Cleanup(func() {
		pw.Close()
		pr.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- u.Run(ctx, pr, io.Discard)
	}()

	cancel()
	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after cancel")
	}
}
