package eval

import (
	"context"
	"math/rand"

	"github.com/hsaikia/xewali-go/pkg/board"
)

// Random is a randomized noise generator. It is used to add a small amount of randomness to
// evaluations, so the engine does not play the identical game every time from the same position.
// The limit specifies how many millipawns to add/remove in the range [-limit/2; limit/2]. The
// default value always returns zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) Evaluate(ctx context.Context, b *board.Board) Score {
	if n.limit <= 0 {
		return 0
	}
	return Score(n.rand.Intn(n.limit)-n.limit/2) / 10 // millipawns to centipawns
}

// noisy adds Random noise on top of a base Evaluator, so otherwise-tied positions are broken
// differently from game to game.
type noisy struct {
	base  Evaluator
	noise Random
}

func (n noisy) Evaluate(ctx context.Context, b *board.Board) Score {
	score := n.base.Evaluate(ctx, b)
	if score.IsMate() {
		return score // keep mate scores exact
	}
	return score + n.noise.Evaluate(ctx, b)
}

// Randomize wraps base with millipawns of additive noise, seeded from seed. A non-positive
// millipawns returns base unchanged.
func Randomize(base Evaluator, millipawns int, seed int64) Evaluator {
	if millipawns <= 0 {
		return base
	}
	return noisy{base: base, noise: NewRandom(millipawns, seed)}
}
