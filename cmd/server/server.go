package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/imgio"
	"github.com/marben/gray_mandel/internal/scheduler"
	"github.com/marben/gray_mandel/internal/wire"
)

var configFile = flag.String("f", "", "config file (yaml, json or toml)")

// main is the entry point for the Mandelbrot server.
// The server splits one image into row bands and hands them to every worker that connects,
// over tcp or websocket. It renders nothing itself unless LocalWorkers is set.
func main() {
	flag.Parse()
	if err := run(*configFile); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run(configFile string) error {
	c, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := c.Bounds()
	if err != nil {
		return err
	}
	if b.Width > mandel.MaxJobPixels/min(c.BandRows, b.Height) {
		return fmt.Errorf("bands of %d rows of %d pixels exceed %d", c.BandRows, b.Width, mandel.MaxJobPixels)
	}
	v, err := c.Viewport()
	if err != nil {
		return err
	}

	if c.Verbose {
		mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if c.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("gops agent: %w", err)
		}
		defer agent.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(b, v, c.Limit, c.BandRows)
	log.Printf("rendering %dx%d of %v .. %v in bands of %d rows", b.Width, b.Height, v.UpperLeft, v.LowerRight, c.BandRows)

	for i := range c.LocalWorkers {
		go func() {
			if err := sched.Render(ctx, mandel.LocalRenderer{}); err != nil {
				log.Printf("local worker %d: %v", i, err)
			}
		}()
	}

	// TCP
	log.Printf("tcp listening on %s", c.TCPAddr)
	tcpListener, err := net.Listen("tcp", c.TCPAddr)
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}
	defer tcpListener.Close()

	// WEBSOCKET
	websocketListener, httpServer := webServer(ctx, c, sched)
	defer websocketListener.Close()

	httpListener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	// httpServer provides static files, /progress and /render along with the websocket endpoint
	httpErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	// Workers arrive on both listeners and share the same scheduler
	go serveWorkers(ctx, tcpListener, sched)
	go serveWorkers(ctx, websocketListener, sched)

	log.Printf("mb server waiting for tcp and websocket connections")
	pixels, err := sched.Wait(ctx)
	if err != nil {
		select {
		case err := <-httpErr:
			return fmt.Errorf("http server: %w", err)
		default:
		}
		log.Printf("render interrupted at %.1f%%", 100*sched.Progress().Finished)
		return nil
	}

	if err := imgio.WriteImage(c.Output, pixels, b); err != nil {
		return err
	}
	log.Printf("fully rendered image saved to %q", c.Output)

	if c.KeepServing {
		<-ctx.Done()
	}
	return nil
}

// serveWorkers accepts connections on l and uses each one as a worker until no bands are left.
func serveWorkers(ctx context.Context, l net.Listener, sched *scheduler.Scheduler) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("accept on %s: %v", l.Addr(), err)
			}
			return
		}

		go func() {
			ep := wire.NewEndpoint(conn)
			defer ep.Close()
			log.Printf("got connection from: %s", ep.RemoteAddr())

			if err := sched.Render(ctx, ep); err != nil {
				log.Printf("err: render on client %q: %v", ep.RemoteAddr(), err)
				return
			}
			log.Printf("client %q done", ep.RemoteAddr())
		}()
	}
}
