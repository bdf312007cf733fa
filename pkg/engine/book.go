package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/board/fen"
)

// Book represents an opening book: a position hash maps to every move played from it across the
// games the book was built from. Satisfies search.Book.
type Book interface {
	// Find returns the moves recorded for the position hash, if any.
	Find(hash board.ZobristHash) ([]board.Move, bool)
}

// NoBook is an empty opening book.
var NoBook Book = book{}

type book map[board.ZobristHash][]board.Move

func (b book) Find(hash board.ZobristHash) ([]board.Move, bool) {
	moves, ok := b[hash]
	return moves, ok
}

// LoadBook reads the opening book file at path: UTF-8 text, one game per line, space-separated
// UCI moves applied to the standard starting position. For every pre-move position, the
// hash->move pair is recorded, so any position reached in any game maps to every move played
// from it across games. A missing file returns NoBook; a malformed move ends that line only,
// without failing the whole load.
func LoadBook(zt *board.ZobristTable, path string) (Book, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NoBook, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open book %v: %w", path, err)
	}
	defer f.Close()

	b := book{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		addLine(zt, b, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read book %v: %w", path, err)
	}
	return b, nil
}

// addLine replays one game's moves from the starting position, recording each pre-move
// position's hash -> move pair. It stops at the first malformed or illegal move, keeping
// whatever was already recorded for this line.
func addLine(zt *board.ZobristTable, b book, moves []string) {
	pos, turn, _, _, _ := fen.Decode(fen.Initial)
	hash := zt.Hash(pos, turn)

	for _, str := range moves {
		candidate, err := board.ParseMove(str)
		if err != nil {
			return
		}

		found := false
		for _, m := range pos.PseudoLegalMoves(turn) {
			if !m.Equals(candidate) {
				continue
			}

			next, ok := pos.Move(m)
			if !ok {
				return
			}

			found = true
			if !containsMove(b[hash], m) {
				b[hash] = append(b[hash], m)
			}

			hash = zt.Move(hash, pos, m)
			pos = next
			turn = turn.Opponent()
			break
		}
		if !found {
			return
		}
	}
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, o := range moves {
		if o.Equals(m) {
			return true
		}
	}
	return false
}
