package search

import (
	"github.com/hsaikia/xewali-go/pkg/board"
)

// Move ordering priorities, highest first. A TT move from a previous, possibly shallower,
// search is tried first since it is the most likely to be best again; then promotions, then
// captures scored MVV-LVA, then everything else. Moves of equal priority come out of the
// MoveList heap in no particular order.
const (
	ttMovePriority board.MovePriority = 100000
	promotionBase  board.MovePriority = 9000
)

// orderValue is the centipawn piece value used for move-ordering scores. The King's large
// value makes every king capture score below zero, so king captures come after even the quiet
// moves.
func orderValue(p board.Piece) board.MovePriority {
	switch p {
	case board.Pawn:
		return 100
	case board.Knight:
		return 320
	case board.Bishop:
		return 330
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	case board.King:
		return 20000
	default:
		return 0
	}
}

// orderMoves returns a priority function scoring moves: the transposition-table move highest,
// then promotions by promoted piece, then captures by 10*victim - attacker. En passant falls
// out of the capture formula as a pawn-takes-pawn at 900. Quiet moves score zero.
func orderMoves(ttMove board.Move) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		if ttMove.From != ttMove.To && m.Equals(ttMove) {
			return ttMovePriority
		}
		if m.IsPromotion() {
			return promotionBase + orderValue(m.Promotion)
		}
		if m.IsCapture() {
			return 10*orderValue(m.Capture) - orderValue(m.Piece)
		}
		return 0
	}
}

// isQuietMove returns true iff the move is neither a capture nor a promotion, the criterion
// Late-Move Reduction uses to decide whether a move is a reduction candidate.
func isQuietMove(m board.Move) bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// hasNonPawnMaterial returns true iff the color has at least one piece other than pawns and
// king, the condition under which null-move pruning is considered safe (zugzwang is rare
// outside of pawn-and-king endings).
func hasNonPawnMaterial(pos *board.Position, c board.Color) bool {
	return pos.Piece(c, board.Knight)|pos.Piece(c, board.Bishop)|pos.Piece(c, board.Rook)|pos.Piece(c, board.Queen) != 0
}
