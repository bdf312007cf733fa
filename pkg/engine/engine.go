package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/board/fen"
	"github.com/hsaikia/xewali-go/pkg/eval"
	"github.com/hsaikia/xewali-go/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 9, 0)

// Options are engine creation and runtime options.
type Options struct {
	// Hash is the transposition table size in MB. If zero, the engine does not use one.
	Hash uint
	// Noise adds millipawns of randomness to the leaf evaluations, so the engine does not
	// play the identical game every time from the same position.
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%v, noise=%v}", o.Hash, o.Noise)
}

// Engine encapsulates game-playing logic: the current board, evaluator, transposition table
// and opening book, and the synchronous move-choosing driver search.PlayMove.
type Engine struct {
	name, author string

	base    eval.Evaluator
	factory search.TranspositionTableFactory
	book    search.Book
	zt      *board.ZobristTable
	seed    int64
	opts    Options

	b         *board.Board
	tt        search.TranspositionTable
	evaluator eval.Evaluator
	lastScore eval.Score
	mu        sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of the default seed
// of zero, for both the Zobrist table and evaluation noise.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithBook configures the engine to consult the given opening book before searching.
func WithBook(book search.Book) Option {
	return func(e *Engine) {
		e.book = book
	}
}

// New creates an engine with the given name, author and base evaluator, starting from the
// standard starting position.
func New(ctx context.Context, name, author string, base eval.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		name:    name,
		author:  author,
		base:    base,
		factory: search.NewTranspositionTable,
		book:    NoBook,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
	e.tt = e.newTableLocked()
}

func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
	e.evaluator = eval.Randomize(e.base, int(e.opts.Noise), e.seed)
}

// Board returns a forked board, safe for the caller to inspect without racing the engine.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// LastScore returns the score returned by the most recently completed Play call, from the
// perspective of the side that moved.
func (e *Engine) LastScore() eval.Score {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastScore
}

// Reset resets the engine to a new starting position in FEN format, clearing the transposition
// table and re-seeding evaluation noise.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, hash=%vMB, noise=%vcp", position, e.opts.Hash, e.opts.Noise/10)

	pos, turn, noprogress, fullmoves, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(e.zt, pos, turn, noprogress, fullmoves)
	e.tt = e.newTableLocked()
	e.evaluator = eval.Randomize(e.base, int(e.opts.Noise), e.seed)
	e.lastScore = 0

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

func (e *Engine) newTableLocked() search.TranspositionTable {
	if e.opts.Hash == 0 {
		return search.NoTranspositionTable{}
	}
	return e.factory(context.Background(), uint64(e.opts.Hash)<<20)
}

// Move applies the given move, usually an opponent move, to the board.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	for _, m := range e.b.Position().PseudoLegalMoves(e.b.Turn()) {
		if !candidate.Equals(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Play chooses and plays a move for the current side to move, within the given time budget. It
// commits the chosen move to the engine's own board before returning, so the caller need not
// separately call Move. Returns the chosen move, its score from the mover's perspective, and
// node/time statistics for diagnostics.
func (e *Engine) Play(ctx context.Context, budget time.Duration) (board.Move, eval.Score, uint64, time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	history := e.b.HashHistory()
	m, score, nodes, elapsed := search.PlayMove(ctx, e.evaluator, e.b, e.book, e.tt, history, budget)

	var zero board.Move
	if m == zero {
		return board.Move{}, 0, nodes, elapsed, fmt.Errorf("no legal move")
	}
	if !e.b.PushMove(m) {
		return board.Move{}, 0, nodes, elapsed, fmt.Errorf("search returned illegal move: %v", m)
	}

	e.lastScore = score
	logw.Infof(ctx, "Played %v (score=%v, nodes=%v, time=%v): %v", m, score, nodes, elapsed, e.b)
	return m, score, nodes, elapsed, nil
}
