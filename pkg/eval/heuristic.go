package eval

import (
	"context"
	"math"

	"github.com/hsaikia/xewali-go/pkg/board"
)

// endgameMaterialThreshold is the raw material (Queen/Rook/Bishop/Knight/Pawn, excluding King)
// below which a side is considered to be in the endgame for King piece-square table purposes.
const endgameMaterialThreshold = 2000

// pieceValue is the base material value of a piece in centipawns. The King has no base value:
// only its piece-square placement contributes to the score, since it is never traded.
func pieceValue(p board.Piece) int {
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
	default:
		return 0
	}
}

// hasAnyLegalMove returns true iff turn has at least one pseudo-legal move that does not leave
// its own king in check, the test for checkmate/stalemate.
func hasAnyLegalMove(pos *board.Position, turn board.Color) bool {
	for _, m := range pos.PseudoLegalMoves(turn) {
		if _, ok := pos.Move(m); ok {
			return true
		}
	}
	return false
}

// rawMaterial sums the base material value of a color's non-King pieces, used only to
// determine whether a position should be treated as an endgame.
func rawMaterial(pos *board.Position, c board.Color) int {
	total := 0
	for _, p := range []board.Piece{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen} {
		total += pos.Piece(c, p).PopCount() * pieceValue(p)
	}
	return total
}

// Heuristic is the engine's primary static evaluator: material plus piece-square placement,
// a mobility term, and a king safety term, expressed from White's perspective. Terminal
// positions (checkmate, stalemate, insufficient material) are recognized fresh on every call,
// since a Board's incremental Result bookkeeping only ever reflects moves played through
// PushMove and says nothing about a position loaded directly (e.g. from FEN).
type Heuristic struct{}

func (Heuristic) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()
	turn := b.Turn()

	if !hasAnyLegalMove(pos, turn) {
		if pos.IsChecked(turn) {
			if turn == board.White {
				return MinScore
			}
			return MaxScore
		}
		return 0 // stalemate
	}
	if pos.HasInsufficientMaterial() {
		return 0
	}

	endgame := rawMaterial(pos, board.White) < endgameMaterialThreshold && rawMaterial(pos, board.Black) < endgameMaterialThreshold

	var score int
	for c := board.ZeroColor; c < board.NumColors; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for _, p := range board.KingQueenRookKnightBishop {
			for _, sq := range pos.Piece(c, p).ToSquares() {
				score += sign * (pieceValue(p) + pieceSquareValue(c, p, sq, endgame))
			}
		}
		for _, sq := range pos.Piece(c, board.Pawn).ToSquares() {
			score += sign * (pieceValue(board.Pawn) + pieceSquareValue(c, board.Pawn, sq, endgame))
		}
	}

	score += kingSafety(pos, board.White) - kingSafety(pos, board.Black)

	whiteMobility := mobility(pos, board.White)
	blackMobility := mobility(pos, board.Black)

	return HeuristicScore(float64(score) + 10.0*math.Log(mobilityRatio(whiteMobility, blackMobility)))
}

// mobilityRatio mirrors the canonical influence-ratio tie-breaks: if the opponent has zero
// mobility, a mover with any mobility is given a large fixed ratio, and a position where
// neither side can move at all is treated as balanced.
func mobilityRatio(white, black int) float64 {
	switch {
	case black > 0:
		return float64(white) / float64(black)
	case white > 0:
		return 10.0
	default:
		return 1.0
	}
}

// mobility counts the pseudo-attacked squares for a color's pieces, a cheap proxy for legal
// mobility that avoids generating and filtering full legal move lists during evaluation.
func mobility(pos *board.Position, c board.Color) int {
	total := 0
	rotated := pos.Rotated()

	for _, sq := range pos.Piece(c, board.Pawn).ToSquares() {
		total += board.PawnCaptureboard(c, board.BitMask(sq)).PopCount()
	}
	for _, p := range board.KingQueenRookKnightBishop {
		for _, sq := range pos.Piece(c, p).ToSquares() {
			total += board.Attackboard(rotated, sq, p).PopCount()
		}
	}
	return total
}

// kingSafety scores how exposed a color's king is, evaluated over the king's file and its two
// neighbouring files (clamped to the board edge): an open-file penalty/pawn-shield bonus per
// file, plus a per-piece-type penalty for every enemy piece attacking the king's zone.
func kingSafety(pos *board.Position, c board.Color) int {
	kings := pos.Piece(c, board.King)
	if kings == 0 {
		return 0
	}
	king := kings.LastPopSquare()
	opponent := c.Opponent()

	score := 0
	kf := int(king.File())
	for f := kf - 1; f <= kf+1; f++ {
		if f < 0 || f > int(board.FileA) {
			continue
		}
		score += kingFileScore(pos, c, board.File(f))
	}

	zone := board.KingAttackboard(king) | board.BitMask(king)
	rotated := pos.Rotated()
	for _, sq := range pos.Piece(opponent, board.Knight).ToSquares() {
		if board.KnightAttackboard(sq)&zone != 0 {
			score -= 10
		}
	}
	for _, sq := range pos.Piece(opponent, board.Bishop).ToSquares() {
		if board.BishopAttackboard(rotated, sq)&zone != 0 {
			score -= 10
		}
	}
	for _, sq := range pos.Piece(opponent, board.Rook).ToSquares() {
		if board.RookAttackboard(rotated, sq)&zone != 0 {
			score -= 15
		}
	}
	for _, sq := range pos.Piece(opponent, board.Queen).ToSquares() {
		if board.QueenAttackboard(rotated, sq)&zone != 0 {
			score -= 25
		}
	}

	return score
}

// kingFileScore applies the open-file and pawn-shield terms for a single file of a color's king
// safety zone: an absent friendly pawn costs -15 (a further -10 if the enemy has no pawn there
// either, since the file can never be challenged back open); a friendly pawn still on its home
// rank is worth +10, one square advanced +5.
func kingFileScore(pos *board.Position, c board.Color, f board.File) int {
	file := board.BitFile(f)
	friendlyPawns := pos.Piece(c, board.Pawn) & file
	enemyPawns := pos.Piece(c.Opponent(), board.Pawn) & file

	score := 0
	if friendlyPawns == 0 {
		score -= 15
		if enemyPawns == 0 {
			score -= 10
		}
		return score
	}

	home, advanced := kingHomeRanks(c)
	if (friendlyPawns & board.BitRank(home)) != 0 {
		score += 10
	} else if (friendlyPawns & board.BitRank(advanced)) != 0 {
		score += 5
	}
	return score
}

// kingHomeRanks returns a color's pawn home rank (2 for White, 7 for Black) and the rank one
// step further advanced, the two ranks the king-safety pawn-shield bonus checks.
func kingHomeRanks(c board.Color) (home, advanced board.Rank) {
	if c == board.White {
		return board.Rank2, board.Rank3
	}
	return board.Rank7, board.Rank6
}
