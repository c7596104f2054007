package movegen

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/hailam/chessmg/internal/board"
)

// GameStatus is the outcome of a position by the rules of movement alone.
type GameStatus uint8

const (
	Ongoing GameStatus = iota
	Checkmate
	Stalemate
)

func (s GameStatus) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Legal appends every legal move of pos to ml.
func (g *Generator) Legal(pos Position, ml *board.MoveList) error {
	_, err := Fold(g, pos, ml, func(ml *board.MoveList, m board.Move) Step[*board.MoveList] {
		ml.Add(m)
		return Continue(ml)
	})
	return err
}

// Count returns the number of legal moves.
func (g *Generator) Count(pos Position) (int, error) {
	return Fold(g, pos, 0, func(n int, _ board.Move) Step[int] {
		return Continue(n + 1)
	})
}

// HasLegalMoves stops at the first legal move it finds.
func (g *Generator) HasLegalMoves(pos Position) (bool, error) {
	return Fold(g, pos, false, func(bool, board.Move) Step[bool] {
		return Stop(true)
	})
}

// Status reports checkmate, stalemate or neither.
func (g *Generator) Status(pos Position) (GameStatus, error) {
	movable, err := g.HasLegalMoves(pos)
	switch {
	case err != nil:
		return Ongoing, err
	case movable:
		return Ongoing, nil
	case pos.Checkers() != 0:
		return Checkmate, nil
	default:
		return Stalemate, nil
	}
}

// RandomMove picks a legal move uniformly at random in one pass
// (reservoir sampling). ok is false when there are no legal moves.
func (g *Generator) RandomMove(pos Position, rng *rand.Rand) (m board.Move, ok bool, err error) {
	type reservoir struct {
		seen int
		pick board.Move
	}
	r, err := Fold(g, pos, reservoir{}, func(r reservoir, m board.Move) Step[reservoir] {
		r.seen++
		if rng.Intn(r.seen) == 0 {
			r.pick = m
		}
		return Continue(r)
	})
	return r.pick, r.seen > 0, err
}

// ParseUCI returns the legal move written in long algebraic notation,
// e.g. "e2e4" or "e7e8q".
func (g *Generator) ParseUCI(pos Position, s string) (board.Move, error) {
	found, err := Fold(g, pos, board.NoMove, func(acc board.Move, m board.Move) Step[board.Move] {
		if m.String() == s {
			return Stop(m)
		}
		return Continue(acc)
	})
	if err != nil {
		return board.NoMove, err
	}
	if found == board.NoMove {
		return board.NoMove, fmt.Errorf("%q: %w", s, ErrIllegalMove)
	}
	return found, nil
}
