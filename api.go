package mandel

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidJob is returned for jobs whose band, bounds or limit cannot be rendered.
var ErrInvalidJob = errors.New("invalid job")

// MaxJobPixels caps the rows a single job may ask for.
const MaxJobPixels = 32 << 20

// Job asks a Renderer for the rows of Band of a Bounds sized raster showing Viewport.
type Job struct {
	ID       uint64
	Viewport Viewport
	Bounds   Bounds
	Band     Band
	Limit    int
}

func (j Job) Validate() error {
	if !j.Bounds.Valid() {
		return fmt.Errorf("%w: bounds %dx%d", ErrInvalidJob, j.Bounds.Width, j.Bounds.Height)
	}
	if j.Band.RowMin < 0 || j.Band.RowMax > j.Bounds.Height || j.Band.Rows() <= 0 {
		return fmt.Errorf("%w: band [%d,%d) of %d rows", ErrInvalidJob, j.Band.RowMin, j.Band.RowMax, j.Bounds.Height)
	}
	if j.Bounds.Width > MaxJobPixels/j.Band.Rows() {
		return fmt.Errorf("%w: %d rows of %d pixels exceed %d", ErrInvalidJob, j.Band.Rows(), j.Bounds.Width, MaxJobPixels)
	}
	if !j.Viewport.Finite() {
		return fmt.Errorf("%w: viewport %v .. %v", ErrInvalidJob, j.Viewport.UpperLeft, j.Viewport.LowerRight)
	}
	if j.Limit <= 0 {
		return fmt.Errorf("%w: limit %d", ErrInvalidJob, j.Limit)
	}
	return nil
}

// Renderer renders jobs, either in process or on a remote worker.
type Renderer interface {
	RenderJob(ctx context.Context, job Job) ([]byte, error)
}

// LocalRenderer renders jobs on the calling goroutine.
type LocalRenderer struct {
	// OnJob, if set, is called before each job is rendered.
	OnJob func(Job)
}

func (lr LocalRenderer) RenderJob(ctx context.Context, job Job) ([]byte, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lr.OnJob != nil {
		lr.OnJob(job)
	}

	pixels := make([]byte, job.Bounds.Width*job.Band.Rows())
	RenderRows(pixels, job.Bounds, job.Band, job.Viewport, job.Limit)
	return pixels, nil
}

var _ Renderer = LocalRenderer{}
