// xewali is a UCI chess engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hsaikia/xewali-go/pkg/board"
	"github.com/hsaikia/xewali-go/pkg/engine"
	"github.com/hsaikia/xewali-go/pkg/engine/console"
	"github.com/hsaikia/xewali-go/pkg/engine/uci"
	"github.com/hsaikia/xewali-go/pkg/eval"
	"github.com/seekerror/logw"
)

var (
	hash  = flag.Uint("hash", 64, "Transposition table size in MB (zero disables it)")
	noise = flag.Uint("noise", 10, "Evaluation noise in millipawns (zero if deterministic)")
	book  = flag.String("book", "", "Opening book file, one line of UCI moves per book line")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: xewali [options]

xewali is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	seed := time.Now().UnixNano()
	zt := board.NewZobristTable(seed)

	b, err := engine.LoadBook(zt, *book)
	if err != nil {
		logw.Errorf(ctx, "Failed to load book %v, using none: %v", *book, err)
		b = engine.NoBook
	}

	e := engine.New(ctx, "xewali", "hsaikia", eval.Heuristic{},
		engine.WithZobrist(seed),
		engine.WithOptions(engine.Options{Hash: *hash, Noise: *noise}),
		engine.WithBook(b),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
