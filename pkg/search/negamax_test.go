package search_test

import (
	"context"
	"testing"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/board/fen"
	"github.com/hsaikia/xewali-go/pkg/eval"
	"github.com/hsaikia/xewali-go/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T, f string) *board.Board {
	t.Helper()

	pos, turn, np, fm, err := fen.Decode(f)
	require.NoError(t, err)

	return board.NewBoard(board.NewZobristTable(0), pos, turn, np, fm)
}

func TestNegamax(t *testing.T) {
	ctx := context.Background()

	// Depths are kept at 2 for the tactical positions so that neither null-move pruning nor
	// Late-Move Reduction is in play and the alpha-beta result is provably identical to full
	// minimax with the same quiescence extension.
	tests := []struct {
		fen   string
		depth int
	}{
		{fen.Initial, 2},
		{fen.Initial, 3},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 2},
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 1},
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 2},
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 3},
	}

	negamax := search.Negamax{Eval: eval.Material{}}
	minimax := search.Minimax{Eval: eval.Material{}}

	t.Run("soundness", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping minimax comparison")
		}

		for _, tt := range tests {
			b := newTestBoard(t, tt.fen)

			n, actual := negamax.Search(ctx, b, tt.depth)
			m, expected := minimax.Search(ctx, newTestBoard(t, tt.fen), tt.depth)
			t.Logf("POS: %v; NODES: %v (minimax %v)", tt.fen, n, m)

			assert.LessOrEqualf(t, n, m, "more than minimax nodes: %v", tt.fen)
			assert.Equalf(t, expected, actual, "failed: %v", tt.fen)
		}
	})

	t.Run("expected", func(t *testing.T) {
		expectations := []struct {
			fen      string
			depth    int
			expected eval.Score
		}{
			{fen.Initial, 3, 0},
			{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 1, eval.HeuristicScore(10)},
			{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 2, eval.MateInXScore(1)},
			{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 3, eval.MateInXScore(1)},
		}

		for _, tt := range expectations {
			b := newTestBoard(t, tt.fen)

			_, actual := negamax.Search(ctx, b, tt.depth)
			assert.Equalf(t, tt.expected, actual, "failed: %v", tt.fen)
		}
	})
}

// TestNegamaxRepetitionDraw checks that a position whose hash already occurs twice in the game
// history scores as an immediate draw, regardless of the material on the board.
func TestNegamaxRepetitionDraw(t *testing.T) {
	ctx := context.Background()

	b := newTestBoard(t, "7k/8/8/8/8/8/R7/K7 w - - 0 1")
	for _, str := range []string{"a2b2", "h8g8", "b2a2", "g8h8"} {
		pushMove(t, b, str)
	}

	_, score := search.Negamax{Eval: eval.Material{}}.Search(ctx, b, 3)
	assert.Equal(t, eval.Score(0), score)
}

func pushMove(t *testing.T, b *board.Board, str string) {
	t.Helper()

	m, err := board.ParseMove(str)
	require.NoError(t, err)

	for _, candidate := range b.Position().PseudoLegalMoves(b.Turn()) {
		if candidate.Equals(m) {
			require.True(t, b.PushMove(candidate))
			return
		}
	}
	t.Fatalf("move %v not found", str)
}
