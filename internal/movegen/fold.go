package movegen

import (
	"iter"

	"github.com/hailam/chessmg/internal/board"
)

// Step is what a fold callback returns: the new accumulator and whether
// enumeration should go on.
type Step[A any] struct {
	value A
	stop  bool
}

// Continue keeps enumerating with accumulator v.
func Continue[A any](v A) Step[A] {
	return Step[A]{value: v}
}

// Stop ends enumeration with the final result v.
func Stop[A any](v A) Step[A] {
	return Step[A]{value: v, stop: true}
}

// Value returns the accumulator carried by the step.
func (s Step[A]) Value() A {
	return s.value
}

// Stopped reports whether the step ends enumeration.
func (s Step[A]) Stopped() bool {
	return s.stop
}

// StepFunc folds one legal move into the accumulator.
type StepFunc[A any] func(acc A, m board.Move) Step[A]

// Fold passes every legal move of pos through step, starting from acc, and
// returns the final accumulator. Enumeration ends early as soon as step
// returns Stop. The only error is ErrNoKing.
//
// Moves come in a fixed order: castling, then rooks, bishops, queens, the
// king, knights and pawns; squares ascending within a piece type; captures
// before quiet moves for each piece.
func Fold[A any](g *Generator, pos Position, acc A, step StepFunc[A]) (A, error) {
	err := g.generate(pos, func(m board.Move) bool {
		s := step(acc, m)
		acc = s.value
		return !s.stop
	})
	return acc, err
}

// Moves returns the legal moves of pos as a lazy sequence. Breaking out of
// the range loop stops generation.
func (g *Generator) Moves(pos Position) (iter.Seq[board.Move], error) {
	if pos.Pieces(pos.SideToMove(), board.King) == 0 {
		return nil, ErrNoKing
	}
	return func(yield func(board.Move) bool) {
		_ = g.generate(pos, yield)
	}, nil
}
