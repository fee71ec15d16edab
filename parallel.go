package mandel

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// SplitRows splits height rows into bands of bandRows rows.
// The last band is shorter if height is not divisible.
func SplitRows(height, bandRows int) []Band {
	if bandRows <= 0 {
		panic("band height must be positive")
	}

	bands := make([]Band, 0, (height+bandRows-1)/bandRows)
	for oy := 0; oy < height; oy += bandRows {
		th := bandRows
		if oy+th > height {
			th = height - oy
		}
		bands = append(bands, Band{RowMin: oy, RowMax: oy + th})
	}
	return bands
}

// RenderParallel renders like RenderViewport, spreading row bands over a bounded number of
// goroutines. Each band writes to its own slice of pixels, so no locking is needed.
// It returns ctx.Err() if ctx is cancelled before every band is rendered.
func RenderParallel(ctx context.Context, pixels []byte, b Bounds, v Viewport, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	mustFit(pixels, b)

	start := time.Now()
	bands := SplitRows(b.Height, o.bandRows)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, band := range bands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			RenderRows(pixels[band.RowMin*b.Width:band.RowMax*b.Width], b, band, v, o.limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	Logger().Debug("render finished",
		"width", b.Width, "height", b.Height,
		"bands", len(bands), "workers", o.workers,
		"elapsed", time.Since(start))
	return nil
}
