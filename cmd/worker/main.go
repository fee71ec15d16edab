// worker is a CLI worker for the distributed Mandelbrot renderer.
// It connects to the Mandelbrot server and renders the row bands the server sends it until the
// image is complete.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/wire"
)

var (
	addr    = flag.String("addr", "tcp://localhost:8081", "server address, tcp://host:port or ws://host:port/ws")
	conns   = flag.Int("conns", runtime.GOMAXPROCS(0), "parallel connections, each renders one band at a time")
	verbose = flag.Bool("v", false, "log every band")
)

// main is the entry point for the CLI worker.
// It runs the worker logic and logs any fatal errors.
func main() {
	flag.Parse()
	log.Printf("Starting worker...")
	if err := run(*addr, *conns, *verbose); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run opens the connections and serves jobs on each of them until the server hangs up.
func run(addr string, conns int, verbose bool) error {
	if conns <= 0 {
		return fmt.Errorf("conns %d: must be positive", conns)
	}
	if verbose {
		mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Connecting %d times to Mandelbrot server at %s...", conns, addr)
	g, ctx := errgroup.WithContext(ctx)
	for i := range conns {
		g.Go(func() error {
			return serve(ctx, addr, i, verbose)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serve(ctx context.Context, addr string, conn int, verbose bool) error {
	ep, err := wire.Dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer ep.Close()

	// The server calls back into our renderer to have bands rendered on our CPU
	renderer := mandel.LocalRenderer{OnJob: func(j mandel.Job) {
		if verbose {
			log.Printf("conn %d: rendering rows [%d,%d)", conn, j.Band.RowMin, j.Band.RowMax)
		}
	}}
	if err := ep.Serve(ctx, renderer); err != nil {
		return fmt.Errorf("conn %d: %w", conn, err)
	}
	log.Printf("conn %d: server has no more work", conn)
	return nil
}
