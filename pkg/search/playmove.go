package search

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/eval"
)

// Book looks up opening moves previously recorded for a position hash. Implementations are
// read-only and must be safe to query from a single goroutine at a time (PlayMove never calls
// Find concurrently).
type Book interface {
	Find(hash board.ZobristHash) ([]board.Move, bool)
}

// rootMove pairs a legal root move with the score its most recent completed iteration assigned
// it, so moves can be re-sorted between iterations to improve pruning.
type rootMove struct {
	move  board.Move
	score eval.Score
}

// PlayMove chooses a move for b's side to move within the given time budget: it consults book
// first, shortcuts the zero/one-legal-move cases, and otherwise iterative-deepens, discarding
// the current iteration entirely if the clock runs out mid-iteration. history is the game's
// position hashes so far (including the current position), copied into the search state so
// PlayMove never mutates the caller's slice. Returns the chosen move, its score from the
// perspective of the side to move, and node/time statistics for diagnostics.
func PlayMove(ctx context.Context, e eval.Evaluator, b *board.Board, book Book, tt TranspositionTable, history []board.ZobristHash, budget time.Duration) (board.Move, eval.Score, uint64, time.Duration) {
	if book != nil {
		if moves, ok := book.Find(b.Hash()); ok && len(moves) > 0 {
			return moves[rand.Intn(len(moves))], 0, 0, 0
		}
	}

	turn := b.Turn()
	roots := legalRootMoves(b, turn)
	if len(roots) == 0 {
		return board.Move{}, 0, 0, 0
	}
	if len(roots) == 1 {
		return roots[0].move, eval.Unit(turn) * e.Evaluate(ctx, b), 0, 0
	}

	st := NewState(tt, history, budget)

	best := roots[0]
	for depth := 1; ; depth++ {
		iterBest, ok := searchRootIteration(ctx, e, b, st, roots, depth)
		if !ok {
			break // time ran out mid-iteration: discard, keep the previous iteration's best
		}

		best = iterBest
		sort.SliceStable(roots, func(i, j int) bool {
			return roots[i].score > roots[j].score
		})

		if best.score.IsMate() {
			break
		}
	}

	return best.move, best.score, st.Nodes, st.Elapsed()
}

// searchRootIteration searches every root move to the given depth with a full window, in the
// order roots is currently sorted. It returns ok=false, discarding all scores computed so far,
// if the clock expires before every move has been searched.
func searchRootIteration(ctx context.Context, e eval.Evaluator, b *board.Board, st *State, roots []rootMove, depth int) (rootMove, bool) {
	best := roots[0]
	haveBest := false

	for i := range roots {
		m := roots[i].move

		if !b.PushMove(m) {
			continue // legalRootMoves only returns legal moves; defensive only
		}
		st.pushHistory(b.Hash())

		score := -search(ctx, e, b, st, eval.NegInf, eval.Inf, depth-1, true)
		score = eval.IncrementMateDistance(score)

		st.popHistory()
		b.PopMove()

		if st.Stopped {
			return rootMove{}, false
		}

		roots[i].score = score
		if !haveBest || score > best.score {
			best = roots[i]
			haveBest = true
		}
	}

	return best, true
}

// legalRootMoves filters the pseudo-legal move list down to moves that don't leave the mover's
// own king in check, the set play_move actually chooses among.
func legalRootMoves(b *board.Board, turn board.Color) []rootMove {
	var ret []rootMove
	for _, m := range b.Position().PseudoLegalMoves(turn) {
		if b.PushMove(m) {
			b.PopMove()
			ret = append(ret, rootMove{move: m})
		}
	}
	return ret
}
