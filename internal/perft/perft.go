// Package perft counts leaf nodes of the legal move tree. Perft numbers
// for well-known positions are the standard check on a move generator.
package perft

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessmg/internal/board"
	"github.com/hailam/chessmg/internal/movegen"
	"github.com/hailam/chessmg/internal/position"
)

// ErrInvalidDepth is returned for a negative depth, or a depth below one
// where root moves are needed.
var ErrInvalidDepth = errors.New("invalid perft depth")

// Options configures a Counter.
type Options struct {
	// Cache stores subtree counts by position hash and depth. Nil disables it.
	Cache *Cache

	// Workers bounds the goroutines used by Parallel. Zero means GOMAXPROCS.
	Workers int
}

// Entry is the node count below one root move.
type Entry struct {
	Move  board.Move
	Nodes uint64
}

// Counter runs perft with a generator and optional cache. It holds no
// per-call state and may be used from several goroutines.
type Counter struct {
	g    *movegen.Generator
	opts Options
}

// NewCounter returns a counter over g.
func NewCounter(g *movegen.Generator, opts Options) *Counter {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Counter{g: g, opts: opts}
}

// Perft counts leaf nodes at depth with no cache.
func Perft(ctx context.Context, g *movegen.Generator, pos *position.Position, depth int) (uint64, error) {
	return NewCounter(g, Options{}).Perft(ctx, pos, depth)
}

// Divide returns the node count below each root move, sorted by move text.
func Divide(ctx context.Context, g *movegen.Generator, pos *position.Position, depth int) ([]Entry, error) {
	return NewCounter(g, Options{}).Divide(ctx, pos, depth)
}

// Parallel splits the root moves over workers goroutines.
func Parallel(ctx context.Context, g *movegen.Generator, pos *position.Position, depth, workers int) (uint64, error) {
	return NewCounter(g, Options{Workers: workers}).Parallel(ctx, pos, depth)
}

// Perft counts leaf nodes at depth. pos is restored before returning.
func (c *Counter) Perft(ctx context.Context, pos *position.Position, depth int) (uint64, error) {
	switch {
	case depth < 0:
		return 0, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	case depth == 0:
		return 1, nil
	}
	return c.perft(ctx, pos, depth)
}

func (c *Counter) perft(ctx context.Context, pos *position.Position, depth int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Bulk counting: the leaves are the legal moves themselves.
	if depth == 1 {
		n, err := c.g.Count(pos)
		return uint64(n), err
	}

	if c.opts.Cache != nil {
		if nodes, ok := c.opts.Cache.Get(pos.Hash(), depth); ok {
			return nodes, nil
		}
	}

	var moves board.MoveList
	if err := c.g.Legal(pos, &moves); err != nil {
		return 0, err
	}

	var nodes uint64
	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		n, err := c.perft(ctx, pos, depth-1)
		pos.UnmakeMove(undo)
		if err != nil {
			return 0, err
		}
		nodes += n
	}

	if c.opts.Cache != nil {
		c.opts.Cache.Put(pos.Hash(), depth, nodes)
	}
	return nodes, nil
}

// Divide returns the node count below each root move, sorted by the move's
// long algebraic text.
func (c *Counter) Divide(ctx context.Context, pos *position.Position, depth int) ([]Entry, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: divide needs depth >= 1, got %d", ErrInvalidDepth, depth)
	}

	var moves board.MoveList
	if err := c.g.Legal(pos, &moves); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, moves.Len())
	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		n, err := c.Perft(ctx, pos, depth-1)
		pos.UnmakeMove(undo)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Move: m, Nodes: n})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Move.String(), b.Move.String())
	})
	return entries, nil
}

// Parallel counts leaf nodes at depth, giving each root move to a worker
// with its own copy of the position. The first error cancels the rest.
func (c *Counter) Parallel(ctx context.Context, pos *position.Position, depth int) (uint64, error) {
	if depth < 2 {
		return c.Perft(ctx, pos, depth)
	}

	var moves board.MoveList
	if err := c.g.Legal(pos, &moves); err != nil {
		return 0, err
	}

	counts := make([]uint64, moves.Len())
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.opts.Workers)

	for i, m := range moves.Slice() {
		eg.Go(func() error {
			child := pos.Copy()
			child.MakeMove(m)
			n, err := c.perft(ctx, child, depth-1)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	var nodes uint64
	for _, n := range counts {
		nodes += n
	}
	return nodes, nil
}

// Total sums the node counts of a divide.
func Total(entries []Entry) uint64 {
	var nodes uint64
	for _, e := range entries {
		nodes += e.Nodes
	}
	return nodes
}
