// Package scheduler hands out the row bands of one image to any number of renderers and
// assembles their results.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	mandel "github.com/marben/gray_mandel"
)

// Progress is a snapshot of a render in progress.
type Progress struct {
	Finished      float32 `json:"finished"`
	Workers       int     `json:"workers"`
	FinishedBands int     `json:"finished_bands"`
	TotalBands    int     `json:"total_bands"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
}

type Scheduler struct {
	workers int
	bounds  mandel.Bounds
	view    mandel.Viewport
	limit   int
	pixels  []byte
	nextID  atomic.Uint64

	ctx       context.Context
	ctxCancel context.CancelFunc

	totalPixels    int
	finishedPixels int
	totalBands     int
	finishedBands  int

	unstarted map[mandel.Band]struct{}
	inProcess map[mandel.Band]struct{}
	m         sync.Mutex
}

// New prepares the render of a b sized image of v, split into bands of bandRows rows.
func New(b mandel.Bounds, v mandel.Viewport, limit, bandRows int) *Scheduler {
	if !b.Valid() {
		panic(fmt.Sprintf("scheduler: invalid bounds %dx%d", b.Width, b.Height))
	}
	allBands := mandel.SplitRows(b.Height, bandRows)
	unstarted := make(map[mandel.Band]struct{}, len(allBands))
	for _, band := range allBands {
		unstarted[band] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		bounds:      b,
		view:        v,
		limit:       limit,
		pixels:      make([]byte, b.Pixels()),
		unstarted:   unstarted,
		inProcess:   make(map[mandel.Band]struct{}),
		totalPixels: b.Pixels(),
		totalBands:  len(allBands),
		ctx:         ctx,
		ctxCancel:   cancel,
	}
}

func (s *Scheduler) Bounds() mandel.Bounds {
	return s.bounds
}

func (s *Scheduler) popBand() (band mandel.Band, found bool) {
	s.m.Lock()
	defer s.m.Unlock()

	// Get unstarted band
	if len(s.unstarted) > 0 {
		for band = range s.unstarted {
			break
		}
		delete(s.unstarted, band)

		// Move popped band to currently processed bands
		s.inProcess[band] = struct{}{}
		return band, true
	}

	// If there is no unstarted band, we work again on a started one
	if len(s.inProcess) > 0 {
		for band = range s.inProcess {
			break
		}

		return band, true
	}

	return mandel.Band{}, false
}

// Wait blocks until every band has been rendered and returns the finished image.
func (s *Scheduler) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-s.ctx.Done():
		return s.pixels, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed when the image is complete.
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Scheduler) Progress() Progress {
	s.m.Lock()
	defer s.m.Unlock()
	return Progress{
		Finished:      float32(s.finishedPixels) / float32(s.totalPixels),
		Workers:       s.workers,
		FinishedBands: s.finishedBands,
		TotalBands:    s.totalBands,
		Width:         s.bounds.Width,
		Height:        s.bounds.Height,
	}
}

func (s *Scheduler) bandFinished(band mandel.Band, rows []byte) {
	s.m.Lock()
	defer s.m.Unlock()

	// Only the first result for a band counts. A band re-issued to a second worker may
	// come back twice; both copies hold the same bytes.
	if _, found := s.inProcess[band]; !found {
		return
	}
	copy(s.pixels[band.RowMin*s.bounds.Width:band.RowMax*s.bounds.Width], rows)
	s.finishedPixels += band.Rows() * s.bounds.Width
	s.finishedBands++
	delete(s.inProcess, band)

	mandel.Logger().Debug("band finished",
		"rows", fmt.Sprintf("[%d,%d)", band.RowMin, band.RowMax),
		"finished", float32(s.finishedPixels)/float32(s.totalPixels))

	if len(s.unstarted) == 0 && len(s.inProcess) == 0 {
		s.ctxCancel()
	}
}

func (s *Scheduler) incActiveWorkers() {
	s.m.Lock()
	s.workers++
	w := s.workers
	s.m.Unlock()

	mandel.Logger().Info("worker joined", "workers", w)
}

func (s *Scheduler) decActiveWorkers() {
	s.m.Lock()
	s.workers--
	w := s.workers
	s.m.Unlock()

	mandel.Logger().Info("worker left", "workers", w)
}

// Render renders unfinished bands on r until none are left.
// It can be called from multiple goroutines in parallel, one per renderer.
// A failing renderer stops only its own loop; its band is picked up by the others.
func (s *Scheduler) Render(ctx context.Context, r mandel.Renderer) error {
	s.incActiveWorkers()
	defer s.decActiveWorkers()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		band, found := s.popBand()
		if !found {
			return nil
		}

		job := mandel.Job{
			ID:       s.nextID.Add(1),
			Viewport: s.view,
			Bounds:   s.bounds,
			Band:     band,
			Limit:    s.limit,
		}
		rows, err := r.RenderJob(ctx, job)
		if err != nil {
			mandel.Logger().Warn("band failed",
				"rows", fmt.Sprintf("[%d,%d)", band.RowMin, band.RowMax), "err", err)
			return fmt.Errorf("render rows [%d,%d): %w", band.RowMin, band.RowMax, err)
		}
		if len(rows) != s.bounds.Width*band.Rows() {
			return fmt.Errorf("render rows [%d,%d): got %d bytes", band.RowMin, band.RowMax, len(rows))
		}
		s.bandFinished(band, rows)
	}
}
