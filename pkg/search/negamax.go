package search

import (
	"context"
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/eval"
)

// Negamax runs the negamax/alpha-beta search directly to a fixed depth, bypassing PlayMove's
// book probe, root shortcuts and iterative deepening. Used in tests to check the search's
// soundness against Minimax's full-enumeration result at the same depth.
type Negamax struct {
	Eval eval.Evaluator
	TT   TranspositionTable
}

func (n Negamax) Search(ctx context.Context, b *board.Board, depth int) (uint64, eval.Score) {
	tt := n.TT
	if tt == nil {
		tt = NoTranspositionTable{}
	}
	st := NewState(tt, b.HashHistory(), time.Hour)
	score := search(ctx, n.Eval, b, st, eval.NegInf, eval.Inf, depth, true)
	return st.Nodes, score
}

// nullMoveReduction is the depth reduction R applied to the verification search in null-move
// pruning: the null-moved side is searched R plies shallower than a real move would be.
const nullMoveReduction = 2

// lateMoveReductionStart is the 0-indexed move number (in sorted order) from which quiet,
// non-check moves become Late-Move-Reduction candidates.
const lateMoveReductionStart = 4

// lateMoveReductionMinDepth is the minimum remaining depth for LMR to apply; below it the
// reduced search would collapse straight into quiescence and gain nothing.
const lateMoveReductionMinDepth = 3

// search is the negamax/alpha-beta core: it returns the score of b's current position from the
// perspective of the side to move, searched to depth plies with quiescence extension at the
// horizon. allowNull permits one null-move probe on this line (disabled for the reply to a
// null move, and implicitly whenever the side to move is in check, since NullMove then fails).
func search(ctx context.Context, e eval.Evaluator, b *board.Board, st *State, alpha, beta eval.Score, depth int, allowNull bool) eval.Score {
	if st.Stopped {
		return 0
	}

	st.Nodes++
	st.checkTime()
	if st.Stopped {
		return 0
	}

	if b.Result().Outcome == board.Draw {
		return 0
	}
	if st.repetitionCount(b.Hash()) >= 2 {
		return 0
	}

	alpha0, beta0 := alpha, beta

	var ttMove board.Move
	if bound, ttDepth, score, move, ok := st.TT.Read(b.Hash()); ok {
		ttMove = move
		if ttDepth >= depth {
			switch bound {
			case ExactBound:
				return score
			case LowerBound:
				if score >= beta {
					return score
				}
				alpha = eval.Max(alpha, score)
			case UpperBound:
				if score <= alpha {
					return score
				}
				beta = eval.Min(beta, score)
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return quiescence(ctx, e, b, st, alpha, beta, 0)
	}

	turn := b.Turn()
	inCheck := b.Position().IsChecked(turn)

	// Null-move pruning: pretend to pass and see if the opponent is still in trouble even with
	// a free move. If so, this node is not worth searching fully.
	if allowNull && !inCheck && depth >= 3 && hasNonPawnMaterial(b.Position(), turn) {
		if b.PushNullMove() {
			st.pushHistory(b.Hash())
			score := -search(ctx, e, b, st, -beta, -beta+1, depth-1-nullMoveReduction, false)
			st.popHistory()
			b.PopNullMove()

			if st.Stopped {
				return 0
			}
			if score >= beta {
				return beta
			}
		}
	}

	moves := board.NewMoveList(b.Position().PseudoLegalMoves(turn), orderMoves(ttMove))

	best := eval.NegInf
	var bestMove board.Move
	hasLegalMove := false
	i := 0

	for {
		m, ok := moves.Next()
		if !ok {
			break
		}
		if !b.PushMove(m) {
			continue // pseudo-legal only: rejects moves leaving own king in check
		}
		hasLegalMove = true

		st.pushHistory(b.Hash())

		quiet := isQuietMove(m)
		givesCheck := b.Position().IsChecked(b.Turn())

		var score eval.Score
		if i >= lateMoveReductionStart && depth >= lateMoveReductionMinDepth && quiet && !givesCheck && !inCheck {
			score = -search(ctx, e, b, st, -alpha-1, -alpha, depth-2, true)
			if score > alpha {
				score = -search(ctx, e, b, st, -beta, -alpha, depth-1, true)
			}
		} else {
			score = -search(ctx, e, b, st, -beta, -alpha, depth-1, true)
		}
		score = eval.IncrementMateDistance(score)

		st.popHistory()
		b.PopMove()
		i++

		if st.Stopped {
			return 0
		}

		if score > best {
			best = score
			bestMove = m
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break // beta cutoff
		}
	}

	if !hasLegalMove {
		result := b.AdjudicateNoLegalMoves()
		if result.Reason == board.Checkmate {
			return eval.MinScore
		}
		return 0
	}

	if !st.Stopped {
		bound := ExactBound
		switch {
		case best <= alpha0:
			bound = UpperBound
		case best >= beta0:
			bound = LowerBound
		}
		st.TT.Write(b.Hash(), bound, b.Ply(), depth, best, bestMove)
	}

	return best
}

// quiescence resolves captures past the search horizon so the static evaluator is only ever
// consulted at quiet positions, avoiding the horizon effect.
func quiescence(ctx context.Context, e eval.Evaluator, b *board.Board, st *State, alpha, beta eval.Score, qdepth int) eval.Score {
	if st.Stopped {
		return 0
	}

	st.Nodes++
	st.checkTime()
	if st.Stopped {
		return 0
	}

	if b.Result().Outcome == board.Draw {
		return 0
	}

	standPat := eval.Unit(b.Turn()) * e.Evaluate(ctx, b)
	if qdepth >= MaxQuiescenceDepth {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	turn := b.Turn()
	moves := board.NewMoveList(captureMoves(b.Position(), turn), orderMoves(board.Move{}))

	for {
		m, ok := moves.Next()
		if !ok {
			break
		}
		if !b.PushMove(m) {
			continue
		}

		score := -quiescence(ctx, e, b, st, -beta, -alpha, qdepth+1)
		score = eval.IncrementMateDistance(score)

		b.PopMove()

		if st.Stopped {
			return 0
		}

		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			return beta
		}
	}

	return alpha
}

// captureMoves filters the pseudo-legal move list down to captures, including en passant, the
// only moves quiescence ever considers.
func captureMoves(pos *board.Position, turn board.Color) []board.Move {
	all := pos.PseudoLegalMoves(turn)
	ret := make([]board.Move, 0, len(all))
	for _, m := range all {
		if m.IsCapture() {
			ret = append(ret, m)
		}
	}
	return ret
}
