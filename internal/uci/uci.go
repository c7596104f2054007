// Package uci speaks the move generation subset of the Universal Chess
// Interface: position setup, "go perft" divides that perft debugging tools
// understand, and a random-move "go" so GUIs can drive the generator.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/exp/rand"

	"github.com/hailam/chessmg/internal/board"
	"github.com/hailam/chessmg/internal/movegen"
	"github.com/hailam/chessmg/internal/notation"
	"github.com/hailam/chessmg/internal/perft"
	"github.com/hailam/chessmg/internal/position"
)

// Option limits
const (
	defaultHashMB   = 16
	maxHashMB       = 4096
	maxThreads      = 256
	cacheEntryBytes = 64
)

// Options configures a UCI handler.
type Options struct {
	Logger logr.Logger

	// Seed drives the random "go" reply. Zero uses the current time.
	Seed uint64
}

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	gen      *movegen.Generator
	position *position.Position
	logger   logr.Logger
	rng      *rand.Rand

	threads int
	hashMB  int
	cache   *perft.Cache

	out   io.Writer
	outMu sync.Mutex

	// Running perft
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new UCI protocol handler.
func New(gen *movegen.Generator, opts Options) *UCI {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &UCI{
		gen:      gen,
		position: position.New(gen.Tables()),
		logger:   opts.Logger,
		rng:      rand.New(rand.NewSource(seed)),
		threads:  1,
		hashMB:   defaultHashMB,
	}
}

// Run reads commands from r until "quit", EOF or ctx is done. Responses go
// to w. Cancelling ctx returns promptly even while r has no input.
func (u *UCI) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	u.out = w
	defer u.closeCache()
	defer u.handleStop()

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(r, done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// Input ended: let a running perft report before shutting down.
				u.wait()
				return <-readErr
			}
			if u.handle(ctx, line) {
				return nil
			}
		}
	}
}

// readLines scans r on its own goroutine so the command loop can also
// wait on ctx. The line channel is closed after the scan error is sent.
func readLines(r io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// handle runs one command line and reports whether it was "quit".
func (u *UCI) handle(ctx context.Context, line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]
	u.logger.V(2).Info("command", "line", line)

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(ctx, args)
	case "stop":
		u.handleStop()
	case "quit":
		return true
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		u.println(u.position.String())
	case "moves":
		u.handleMoves()
	case "perft":
		u.handlePerft(ctx, args)
	default:
		u.printf("info string Unknown command: %s\n", cmd)
	}
	return false
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	u.printf("%s\n", s)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name chessmg")
	u.println("id author chessmg developers")
	u.println("")
	u.printf("option name Hash type spin default %d min 0 max %d\n", defaultHashMB, maxHashMB)
	u.printf("option name Threads type spin default 1 min 1 max %d\n", maxThreads)
	u.println("uciok")
}

// handleNewGame resets the position and drops cached subtree counts.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.closeCache()
	u.position = position.New(u.gen.Tables())
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	// Find "moves" keyword
	setupEnd, moveStart := len(args), len(args)
	for i, arg := range args {
		if arg == "moves" {
			setupEnd, moveStart = i, i+1
			break
		}
	}

	var pos *position.Position
	switch args[0] {
	case "startpos":
		pos = position.New(u.gen.Tables())
	case "fen":
		var err error
		pos, err = position.ParseFEN(u.gen.Tables(), strings.Join(args[1:setupEnd], " "))
		if err == nil {
			err = pos.Validate()
		}
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
	default:
		return
	}

	// Apply moves
	for _, moveStr := range args[moveStart:] {
		m, err := u.gen.ParseUCI(pos, moveStr)
		if err != nil {
			u.printf("info string Invalid move: %v\n", err)
			return
		}
		pos.MakeMove(m)
	}
	u.position = pos
}

// handleGo runs "go perft <depth>" as a divide, or answers any other go
// with a uniformly random legal move.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	if len(args) >= 1 && args[0] == "perft" {
		depth := 1
		if len(args) > 1 {
			d, err := strconv.Atoi(args[1])
			if err != nil || d < 1 {
				u.printf("info string Invalid perft depth: %s\n", args[1])
				return
			}
			depth = d
		}
		u.startDivide(ctx, depth)
		return
	}

	m, ok, err := u.gen.RandomMove(u.position, u.rng)
	switch {
	case err != nil:
		u.printf("info string %v\n", err)
		u.println("bestmove 0000")
	case !ok:
		// Only send 0000 for checkmate/stalemate (no legal moves)
		u.println("bestmove 0000")
	default:
		u.printf("bestmove %s\n", m)
	}
}

// startDivide runs a divide in the background so "stop" can cancel it.
func (u *UCI) startDivide(ctx context.Context, depth int) {
	u.handleStop()

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})

	pos := u.position.Copy()
	counter := u.counter()

	go func(done chan struct{}) {
		defer close(done)
		defer cancel()

		entries, err := counter.Divide(ctx, pos, depth)
		if err != nil {
			u.printf("info string perft stopped: %v\n", err)
			return
		}
		var sb strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&sb, "%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Fprintf(&sb, "\nNodes searched: %d\n", perft.Total(entries))
		u.printf("%s", sb.String())
	}(u.done)
}

// counter builds a perft counter with the current Threads and Hash values.
func (u *UCI) counter() *perft.Counter {
	if u.cache == nil && u.hashMB > 0 {
		cache, err := perft.NewCache(int64(u.hashMB) << 20 / cacheEntryBytes)
		if err != nil {
			u.logger.Error(err, "perft cache disabled")
		} else {
			u.cache = cache
		}
	}
	return perft.NewCounter(u.gen, perft.Options{Cache: u.cache, Workers: u.threads})
}

func (u *UCI) closeCache() {
	if u.cache != nil {
		u.cache.Close()
		u.cache = nil
	}
}

// handleStop cancels a running perft and waits for it to finish.
func (u *UCI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.done
	u.cancel = nil
	u.done = nil
}

// wait blocks until a running perft has printed its result.
func (u *UCI) wait() {
	if u.done != nil {
		<-u.done
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	n, err := strconv.Atoi(value)
	switch strings.ToLower(name) {
	case "hash":
		if err != nil || n < 0 || n > maxHashMB {
			u.printf("info string Invalid Hash value: %s\n", value)
			return
		}
		u.handleStop()
		u.closeCache()
		u.hashMB = n
	case "threads":
		if err != nil || n < 1 || n > maxThreads {
			u.printf("info string Invalid Threads value: %s\n", value)
			return
		}
		u.threads = n
	default:
		u.printf("info string Unknown option: %s\n", name)
	}
}

// handleMoves lists the legal moves in both notations.
func (u *UCI) handleMoves() {
	var ml board.MoveList
	if err := u.gen.Legal(u.position, &ml); err != nil {
		u.printf("info string %v\n", err)
		return
	}
	var sb strings.Builder
	for _, m := range ml.Slice() {
		san, err := notation.SAN(u.gen, u.position, m)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		fmt.Fprintf(&sb, "%s %s\n", m, san)
	}
	fmt.Fprintf(&sb, "Legal moves: %d\n", ml.Len())
	u.printf("%s", sb.String())
}

// handlePerft runs a blocking perft test.
func (u *UCI) handlePerft(ctx context.Context, args []string) {
	depth := 5
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil {
			u.printf("info string Invalid perft depth: %s\n", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	nodes, err := u.counter().Parallel(ctx, u.position, depth)
	if err != nil {
		u.printf("info string perft failed: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
