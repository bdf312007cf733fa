package eval

import (
	"fmt"

	"github.com/hsaikia/xewali-go/pkg/board"
)

// Score is a signed move or position score, positive favoring White. The heuristic evaluator
// produces centipawn-scale values (a pawn of material is worth 100), so even an absurd
// all-pawns-promoted material advantage stays well within +/- 1,000,000. Scores near
// MaxScore/MinScore encode a forced mate, with the magnitude decreasing by one per ply as the
// mate unwinds up the search tree, so that the engine always prefers the fastest mate and the
// slowest loss.
type Score float64

const (
	NegInf         = MinScore - 1
	MinScore Score = -1000000
	MaxScore Score = 1000000
	Inf            = MaxScore + 1

	// mateThreshold is the boundary beyond which a score is considered a mate score rather than
	// a heuristic one. MinScore itself means the side to move is already checkmated.
	mateThreshold Score = MaxScore - 1000
)

func (s Score) String() string {
	if mate, ok := s.MateIn(); ok {
		return fmt.Sprintf("mate %d", mate)
	}
	return fmt.Sprintf("%.2f", float64(s))
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// HeuristicScore constructs a plain (non-mate) evaluation score.
func HeuristicScore(v float64) Score {
	return Score(v)
}

// MateInXScore returns the score for a checkmate X plies away: MaxScore - X for X >= 0, where
// the side to move delivers the mate, and MinScore - X (that is, MinScore + |X|) for negative X,
// where the side to move gets mated. The checkmated position itself scores MinScore, and the
// magnitude shrinks by one per ply as the mate unwinds up the search tree.
func MateInXScore(plies int) Score {
	if plies >= 0 {
		return MaxScore - Score(plies)
	}
	return MinScore - Score(plies)
}

// IsMate returns true iff the score represents a forced mate (for or against the side to move).
func (s Score) IsMate() bool {
	return s > mateThreshold || s < -mateThreshold
}

// MateIn returns the number of full moves to mate, if this is a mate score. Positive values favor
// the side to move; negative values mean the side to move is getting mated.
func (s Score) MateIn() (int, bool) {
	if !s.IsMate() {
		return 0, false
	}
	if s > 0 {
		plies := int(MaxScore - s)
		return (plies + 1) / 2, true
	}
	plies := int(s - MinScore)
	return -((plies + 1) / 2), true
}

// IncrementMateDistance lengthens a mate score by one ply, used when a mate score is propagated
// up through a parent node in the search tree. Non-mate scores are returned unchanged.
func IncrementMateDistance(s Score) Score {
	switch {
	case s > mateThreshold:
		return s - 1
	case s < -mateThreshold:
		return s + 1
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
