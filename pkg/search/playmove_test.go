package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/board/fen"
	"github.com/hsaikia/xewali-go/pkg/eval"
	"github.com/hsaikia/xewali-go/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedBook map[board.ZobristHash][]board.Move

func (b fixedBook) Find(hash board.ZobristHash) ([]board.Move, bool) {
	moves, ok := b[hash]
	return moves, ok
}

func TestPlayMoveBook(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, fen.Initial)

	e2e4, err := board.ParseMove("e2e4")
	require.NoError(t, err)

	book := fixedBook{b.Hash(): []board.Move{e2e4}}

	m, score, nodes, _ := search.PlayMove(ctx, eval.Material{}, b, book, search.NoTranspositionTable{}, b.HashHistory(), 10*time.Millisecond)
	assert.True(t, e2e4.Equals(m))
	assert.Equal(t, eval.Score(0), score)
	assert.Equal(t, uint64(0), nodes)
}

func TestPlayMoveSingleLegalMove(t *testing.T) {
	ctx := context.Background()

	// The white king is in check from the undefended queen; capturing it is the only legal move.
	b := newTestBoard(t, "7k/8/8/8/8/8/6q1/7K w - - 0 1")

	m, _, nodes, elapsed := search.PlayMove(ctx, eval.Material{}, b, nil, search.NoTranspositionTable{}, b.HashHistory(), 50*time.Millisecond)
	assert.Equal(t, "h1g2", m.String())
	assert.Equal(t, uint64(0), nodes)
	assert.Zero(t, elapsed)
}

func TestPlayMoveFindsMateInOne(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, "k7/7R/6R1/8/8/8/8/7K w - - 0 1")

	m, score, _, _ := search.PlayMove(ctx, eval.Material{}, b, nil, search.NoTranspositionTable{}, b.HashHistory(), 200*time.Millisecond)
	require.True(t, b.PushMove(m))

	mate, ok := score.MateIn()
	assert.True(t, ok)
	assert.Equal(t, 1, mate)
}

func TestPlayMoveFindsMateInTwo(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, "k7/7R/7R/8/8/8/8/7K w - - 0 1")

	m, score, _, _ := search.PlayMove(ctx, eval.Material{}, b, nil, search.NoTranspositionTable{}, b.HashHistory(), time.Second)
	require.True(t, b.PushMove(m))

	mate, ok := score.MateIn()
	assert.True(t, ok)
	assert.Equal(t, 2, mate)
}

func TestPlayMoveNoLegalMoves(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, "7k/5QQ1/8/8/8/8/8/K7 b - - 0 1")

	var zero board.Move
	m, score, nodes, elapsed := search.PlayMove(ctx, eval.Material{}, b, nil, search.NoTranspositionTable{}, b.HashHistory(), 10*time.Millisecond)
	assert.Equal(t, zero, m)
	assert.Zero(t, score)
	assert.Zero(t, nodes)
	assert.Zero(t, elapsed)
}

// TestPlayMoveAvoidsRepetition puts the winning side one shuffle away from a three-fold
// repetition: moving the rook back to b2 would repeat the position reached after the first
// a2b2, which the search scores as a draw (zero), while any other move keeps the extra rook. The engine must keep the material score.
func TestPlayMoveAvoidsRepetition(t *testing.T) {
	ctx := context.Background()

	b := newTestBoard(t, "7k/8/8/8/8/8/R7/K7 w - - 0 1")
	for _, str := range []string{"a2b2", "h8g8", "b2a2", "g8h8"} {
		pushMove(t, b, str)
	}

	m, score, _, _ := search.PlayMove(ctx, eval.Material{}, b, nil, search.NoTranspositionTable{}, b.HashHistory(), 500*time.Millisecond)
	assert.NotEqual(t, "a2b2", m.String())
	assert.Greater(t, float64(score), 0.0)
}

// TestPlayMoveRespectsBudget checks the time-abort contract: the search must come back within
// the budget plus the slack of one polling interval's worth of node visits.
func TestPlayMoveRespectsBudget(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	budget := 100 * time.Millisecond
	start := time.Now()
	m, _, _, _ := search.PlayMove(ctx, eval.Heuristic{}, b, nil, search.NoTranspositionTable{}, b.HashHistory(), budget)
	elapsed := time.Since(start)

	assert.NotEqual(t, board.Move{}, m)
	assert.Less(t, elapsed, 2*time.Second)
}
