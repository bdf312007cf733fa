package uci_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/board/fen"
	"github.com/hsaikia/xewali-go/pkg/engine"
	"github.com/hsaikia/xewali-go/pkg/engine/uci"
	"github.com/hsaikia/xewali-go/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDriverRoundTrip drives the protocol end to end: handshake, position setup, a short
// timed search, and quit. The reply to 1.e4 e5 must be one of White's legal moves there.
func TestDriverRoundTrip(t *testing.T) {
	ctx := context.Background()

	e := engine.New(ctx, "xewali", "test", eval.Heuristic{}, engine.WithOptions(engine.Options{Hash: 1}))

	in := make(chan string, 10)
	in <- "isready"
	in <- "position startpos moves e2e4 e7e5"
	in <- "go movetime 200"
	in <- "quit"
	close(in)

	_, out := uci.NewDriver(ctx, e, in)

	var lines []string
	for line := range out {
		lines = append(lines, line)
	}

	require.GreaterOrEqual(t, len(lines), 6)
	assert.True(t, strings.HasPrefix(lines[0], "id name xewali"))
	assert.True(t, strings.HasPrefix(lines[1], "id author"))
	assert.Equal(t, "uciok", lines[2])
	assert.Contains(t, lines, "readyok")
	assert.Contains(t, lines, "info Thinking...")

	var bestmove string
	for _, line := range lines {
		if strings.HasPrefix(line, "bestmove ") {
			bestmove = strings.TrimPrefix(line, "bestmove ")
		}
	}
	require.NotEmpty(t, bestmove)

	// The reply must be legal in the position after 1.e4 e5.
	pos, turn, _, _, err := fen.Decode("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 2")
	require.NoError(t, err)
	require.Equal(t, board.White, turn)

	reply, err := board.ParseMove(bestmove)
	require.NoError(t, err)

	legal := false
	for _, m := range pos.PseudoLegalMoves(turn) {
		if m.Equals(reply) {
			if _, ok := pos.Move(m); ok {
				legal = true
			}
		}
	}
	assert.True(t, legal, "bestmove %v is not a legal reply", bestmove)
}

// TestDriverMalformedFEN checks the fallback contract: a position command with a FEN that does
// not parse leaves the engine on the standard starting position.
func TestDriverMalformedFEN(t *testing.T) {
	ctx := context.Background()

	e := engine.New(ctx, "xewali", "test", eval.Heuristic{})

	in := make(chan string, 10)
	in <- "position fen this is not a fen at all"
	in <- "quit"
	close(in)

	_, out := uci.NewDriver(ctx, e, in)
	for range out {
	}

	assert.Equal(t, fen.Initial, e.Position())
}
