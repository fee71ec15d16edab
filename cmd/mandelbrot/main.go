// mandelbrot renders a region of the Mandelbrot set to a grayscale image file on this machine.
//
//	mandelbrot mandel.png 1000x750 -1.20,0.35 -1,0.20
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
	"time"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/imgio"
)

var errUsage = errors.New("usage")

type options struct {
	workers     int
	limit       int
	bandRows    int
	supersample int
}

func main() {
	var o options
	flag.IntVar(&o.workers, "workers", 0, "bands rendered at once (0 = GOMAXPROCS)")
	flag.IntVar(&o.limit, "limit", mandel.DefaultLimit, "escape iteration limit")
	flag.IntVar(&o.bandRows, "bands", mandel.DefaultBandRows, "rows per band")
	flag.IntVar(&o.supersample, "ss", 1, "supersampling factor")
	verbose := flag.Bool("v", false, "log render timings")
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Args(), o); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		log.Fatalf("run: %v", err)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE PIXELS UPPERLEFT LOWERRIGHT\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "Example: %s mandel.png 1000x750 -1.20,0.35 -1,0.20\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "FILE may end in .png, .bmp, .tif or .tiff\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, args []string, o options) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: want 4 arguments, got %d", errUsage, len(args))
	}
	filename := args[0]
	b, ok := mandel.ParseBounds(args[1])
	if !ok {
		return fmt.Errorf("%w: error parsing image dimensions %q", errUsage, args[1])
	}
	ul, ok := mandel.ParseComplex(args[2])
	if !ok {
		return fmt.Errorf("%w: error parsing upper left corner point %q", errUsage, args[2])
	}
	lr, ok := mandel.ParseComplex(args[3])
	if !ok {
		return fmt.Errorf("%w: error parsing lower right corner point %q", errUsage, args[3])
	}
	if o.limit <= 0 {
		return fmt.Errorf("%w: limit %d must be positive", errUsage, o.limit)
	}
	if o.supersample < 1 {
		return fmt.Errorf("%w: supersampling factor %d must be at least 1", errUsage, o.supersample)
	}
	// Fail before rendering if the file name has no encoder.
	if _, err := imgio.FormatFromFilename(filename); err != nil {
		return err
	}

	start := time.Now()
	rb := mandel.Bounds{Width: b.Width * o.supersample, Height: b.Height * o.supersample}
	pixels := make([]byte, rb.Pixels())
	err := mandel.RenderParallel(ctx, pixels, rb, mandel.Viewport{UpperLeft: ul, LowerRight: lr},
		mandel.WithWorkers(o.workers),
		mandel.WithLimit(o.limit),
		mandel.WithBandRows(o.bandRows*o.supersample))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	pixels, rb = imgio.Downsample(pixels, rb, o.supersample)

	if err := imgio.WriteImage(filename, pixels, rb); err != nil {
		return err
	}
	log.Printf("%dx%d image saved to %q in %s", rb.Width, rb.Height, filename, time.Since(start))
	return nil
}
