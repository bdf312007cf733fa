package search

import (
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
)

// MaxQuiescenceDepth bounds the capture-only extension past the search horizon, preventing
// pathological tactical sequences from recursing forever.
const MaxQuiescenceDepth = 8

// nodePollInterval is how often, in visited nodes, the wall clock is checked against the
// deadline. Checking on every node would make the clock call dominate node throughput.
const nodePollInterval = 4096

// State is the per-move ephemeral record threaded through one PlayMove call: the transposition
// table, the repetition-detection history stack, the deadline, and a node counter. It is
// constructed fresh at the start of PlayMove and discarded when PlayMove returns -- nothing in
// it survives across moves.
type State struct {
	TT TranspositionTable

	// History holds the Zobrist hashes of positions that have occurred in the game so far,
	// including the current root, plus whatever hashes the search has pushed while descending
	// the current line. It is mutated only by push-before-recurse / pop-after-return.
	History []board.ZobristHash

	start   time.Time
	budget  time.Duration
	Nodes   uint64
	Stopped bool
}

// NewState constructs a fresh search state. history is copied so that mutations performed
// during the search (push on descent, pop on ascent) never escape to the caller.
func NewState(tt TranspositionTable, history []board.ZobristHash, budget time.Duration) *State {
	h := make([]board.ZobristHash, len(history))
	copy(h, history)

	return &State{
		TT:      tt,
		History: h,
		start:   now(),
		budget:  budget,
	}
}

// now is the search's sole source of wall-clock time, kept as a package variable so tests can
// swap it out; production code never needs to.
var now = time.Now

// checkTime polls the wall clock and flips Stopped once the budget is exhausted. Called on
// every node, but the clock itself is only read every nodePollInterval nodes.
func (s *State) checkTime() {
	if s.Nodes%nodePollInterval == 0 && now().Sub(s.start) > s.budget {
		s.Stopped = true
	}
}

// Elapsed returns the time spent since the search started.
func (s *State) Elapsed() time.Duration {
	return now().Sub(s.start)
}

// repetitionCount returns how many times the hash already occurs in the history stack,
// including the entry the caller just pushed (so a count >= 2 means this is at least the
// hash's second occurrence before this node is even searched).
func (s *State) repetitionCount(hash board.ZobristHash) int {
	n := 0
	for _, h := range s.History {
		if h == hash {
			n++
		}
	}
	return n
}

// pushHistory records a descent into a child position, for repetition detection.
func (s *State) pushHistory(hash board.ZobristHash) {
	s.History = append(s.History, hash)
}

// popHistory undoes the most recent pushHistory, on ascent back out of a child position.
func (s *State) popHistory() {
	s.History = s.History[:len(s.History)-1]
}
