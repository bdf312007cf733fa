package search

import (
	"context"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/eval"
)

// Minimax implements naive full-enumeration search: no pruning and no transposition table, but
// with the same capture-only extension past the horizon as the alpha-beta search. Used in tests
// to check the alpha-beta search's soundness -- at the same depth, both must report the same
// score for the side to move.
type Minimax struct {
	Eval eval.Evaluator
}

func (m Minimax) Search(ctx context.Context, b *board.Board, depth int) (uint64, eval.Score) {
	run := &runMinimax{eval: m.Eval, ctx: ctx}
	score := run.search(b, depth)
	return run.nodes, score
}

type runMinimax struct {
	eval  eval.Evaluator
	ctx   context.Context
	nodes uint64
}

// search returns the score from the perspective of the side to move.
func (m *runMinimax) search(b *board.Board, depth int) eval.Score {
	m.nodes++

	if b.Result().Outcome == board.Draw {
		return 0
	}
	if depth == 0 {
		return m.quiescence(b, 0)
	}

	hasLegalMove := false
	best := eval.NegInf

	for _, move := range b.Position().PseudoLegalMoves(b.Turn()) {
		if !b.PushMove(move) {
			continue
		}
		hasLegalMove = true

		s := eval.IncrementMateDistance(-m.search(b, depth-1))
		b.PopMove()

		if s > best {
			best = s
		}
	}

	if !hasLegalMove {
		if result := b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.MinScore
		}
		return 0
	}

	return best
}

// quiescence is the full-enumeration counterpart of the alpha-beta quiescence: the side to move
// may stand pat on the static evaluation or play any capture, whichever is better.
func (m *runMinimax) quiescence(b *board.Board, qdepth int) eval.Score {
	m.nodes++

	if b.Result().Outcome == board.Draw {
		return 0
	}

	best := eval.Unit(b.Turn()) * m.eval.Evaluate(m.ctx, b)
	if qdepth >= MaxQuiescenceDepth {
		return best
	}

	for _, move := range captureMoves(b.Position(), b.Turn()) {
		if !b.PushMove(move) {
			continue
		}

		s := eval.IncrementMateDistance(-m.quiescence(b, qdepth+1))
		b.PopMove()

		if s > best {
			best = s
		}
	}

	return best
}
