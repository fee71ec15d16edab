package mandel

import "runtime"

// DefaultBandRows is the height of the row bands a parallel render is split into.
const DefaultBandRows = 16

// Option configures RenderParallel.
//
// Example:
//
//	err := mandel.RenderParallel(ctx, pixels, bounds, mandel.BookView,
//		mandel.WithWorkers(4), mandel.WithBandRows(8))
type Option func(*renderOptions)

type renderOptions struct {
	limit    int
	workers  int
	bandRows int
}

func defaultOptions() renderOptions {
	return renderOptions{
		limit:    DefaultLimit,
		workers:  runtime.GOMAXPROCS(0),
		bandRows: DefaultBandRows,
	}
}

// WithLimit sets the escape iteration cap. Limits above 255 render every point that needs
// 255 or more iterations black.
func WithLimit(limit int) Option {
	return func(o *renderOptions) {
		o.limit = limit
	}
}

// WithWorkers sets how many bands are rendered at once.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *renderOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithBandRows sets the number of rows per band. Zero or negative keeps DefaultBandRows.
func WithBandRows(rows int) Option {
	return func(o *renderOptions) {
		if rows > 0 {
			o.bandRows = rows
		}
	}
}
