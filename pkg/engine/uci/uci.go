// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/board/fen"
	"github.com/hsaikia/xewali-go/pkg/engine"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// defaultBudget is used when a "go" command carries neither movetime nor a time control.
const defaultBudget = time.Second

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active atomic.Bool // a search is in flight
	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver starts a driver reading UCI commands from in and writing responses to the returned
// channel. The go handler calls engine.Play synchronously and blocks until it returns: the
// engine's search is itself time-bounded, so no external cancellation is needed.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		out:  out,
		quit: make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(line)
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				d.out <- "readyok"

			case "ucinewgame":
				if err := d.e.Reset(ctx, fen.Initial); err != nil {
					logw.Errorf(ctx, "Failed to reset: %v", err)
				}

			case "position":
				d.handlePosition(ctx, args, line)

			case "go":
				d.handleGo(ctx, args, line)

			case "eval":
				d.out <- fmt.Sprintf("%v", d.e.LastScore())

			case "d", "display":
				d.printBoard(ctx)

			case "quit":
				return

			default:
				// Ignore unknown commands and sub-tokens.
			}

		case <-d.quit:
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// handlePosition implements "position startpos|fen <6 fields> [moves m1 m2 ...]".
func (d *Driver) handlePosition(ctx context.Context, args []string, line string) {
	if len(args) == 0 {
		logw.Errorf(ctx, "Malformed position command: %v", line)
		return
	}

	position := fen.Initial
	rest := args[1:]
	if args[0] == "fen" {
		if len(args) < 7 {
			logw.Errorf(ctx, "Malformed position command: %v", line)
			return
		}
		position = strings.Join(args[1:7], " ")
		rest = args[7:]
	}

	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "Malformed FEN, falling back to starting position: %v", line)
		if err := d.e.Reset(ctx, fen.Initial); err != nil {
			logw.Errorf(ctx, "Failed to reset to starting position: %v", err)
			return
		}
	}

	applyingMoves := false
	for _, arg := range rest {
		if arg == "moves" {
			applyingMoves = true
			continue
		}
		if !applyingMoves {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
			return
		}
	}
}

// handleGo parses the "go" time-control sub-tokens, searches and prints "info Thinking..."
// followed by "bestmove <uci>".
func (d *Driver) handleGo(ctx context.Context, args []string, line string) {
	if !d.active.CAS(false, true) {
		logw.Errorf(ctx, "Search already in flight, ignoring: %v", line)
		return
	}
	defer d.active.Store(false)

	budget := parseBudget(ctx, d.e.Board().Turn() == board.White, args, line)

	d.out <- "info Thinking..."

	m, _, _, _, err := d.e.Play(ctx, budget)
	if err != nil {
		logw.Errorf(ctx, "Search failed: %v", err)
		d.out <- "bestmove"
		return
	}

	d.out <- fmt.Sprintf("bestmove %v", m)
}

// parseBudget implements the time-control formula: movetime takes precedence; otherwise
// T/30000 + I/1000 seconds from the side-to-move's clock and increment; default 1.0s.
func parseBudget(ctx context.Context, whiteToMove bool, args []string, line string) time.Duration {
	var wtime, btime, winc, binc int
	var movetime int
	haveMovetime, haveClock := false, false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime", "btime", "winc", "binc", "movetime":
			tok := args[i]
			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v: %v", tok, line)
				continue
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", tok, line)
				continue
			}
			switch tok {
			case "wtime":
				wtime, haveClock = n, true
			case "btime":
				btime, haveClock = n, true
			case "winc":
				winc = n
			case "binc":
				binc = n
			case "movetime":
				movetime, haveMovetime = n, true
			}
		default:
			// Ignore unrecognized sub-tokens (searchmoves, ponder, depth, nodes, infinite, ...).
		}
	}

	if haveMovetime {
		return time.Duration(movetime) * time.Millisecond
	}
	if haveClock {
		t, inc := wtime, winc
		if !whiteToMove {
			t, inc = btime, binc
		}
		seconds := float64(t)/30000 + float64(inc)/1000
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultBudget
}

func (d *Driver) printBoard(ctx context.Context) {
	b := d.e.Board()
	d.out <- fmt.Sprintf("%v", b.Position())
	d.out <- fmt.Sprintf("fen: %v", d.e.Position())
	d.out <- fmt.Sprintf("result: %v, ply: %v, hash: 0x%x", b.Result(), b.Ply(), b.Hash())
}
