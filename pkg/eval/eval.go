// Package eval contains position evaluation logic and utilities.
package eval

import (
	"context"

	"github.com/hsaikia/xewali-go/pkg/board"
)

// Evaluator is a static position evaluator.
type Evaluator interface {
	// Evaluate returns the position score from White's perspective. The unit depends on the
	// evaluator: Heuristic scores in centipawns, Material in pawns.
	Evaluate(ctx context.Context, b *board.Board) Score
}

// Material returns the nominal material advantage balance, from White's perspective.
type Material struct{}

func (Material) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()

	var score Score
	for p := board.ZeroPiece; p < board.NumPieces; p++ {
		score += Score(pos.Piece(board.White, p).PopCount()-pos.Piece(board.Black, p).PopCount()) * NominalValue(p)
	}
	return score
}

// NominalValue is the absolute nominal value in pawns of a piece, used for simple material
// comparisons. The King has an arbitrary large value so it is never traded away in such
// comparisons.
func NominalValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return 1
	case board.Bishop, board.Knight:
		return 3
	case board.Rook:
		return 5
	case board.Queen:
		return 9
	case board.King:
		return 200
	default:
		return 0
	}
}
