package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mandel "github.com/marben/gray_mandel"
)

func fullRender(b mandel.Bounds, v mandel.Viewport) []byte {
	pixels := make([]byte, b.Pixels())
	mandel.RenderViewport(pixels, b, v, mandel.DefaultLimit)
	return pixels
}

func TestSchedulerSingleRenderer(t *testing.T) {
	b := mandel.Bounds{Width: 64, Height: 50}
	s := New(b, mandel.SeahorseValley, mandel.DefaultLimit, 8)

	if err := s.Render(context.Background(), mandel.LocalRenderer{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !bytes.Equal(got, fullRender(b, mandel.SeahorseValley)) {
		t.Error("scheduled image differs from a full render")
	}

	p := s.Progress()
	if p.Finished != 1 || p.FinishedBands != 7 || p.TotalBands != 7 || p.Workers != 0 {
		t.Errorf("Progress() = %+v, want all 7 bands finished and no workers", p)
	}
}

func TestSchedulerManyRenderers(t *testing.T) {
	b := mandel.Bounds{Width: 80, Height: 61}
	s := New(b, mandel.ElephantValley, mandel.DefaultLimit, 4)

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Render(context.Background(), mandel.LocalRenderer{}); err != nil {
				t.Errorf("Render() error = %v", err)
			}
		}()
	}
	wg.Wait()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done() not closed after all renderers returned")
	}
	got, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !bytes.Equal(got, fullRender(b, mandel.ElephantValley)) {
		t.Error("scheduled image differs from a full render")
	}
}

// failingRenderer fails after ok successful jobs.
type failingRenderer struct {
	ok    int
	calls atomic.Int32
}

var errBroken = errors.New("broken worker")

func (f *failingRenderer) RenderJob(ctx context.Context, job mandel.Job) ([]byte, error) {
	if int(f.calls.Add(1)) > f.ok {
		return nil, errBroken
	}
	return mandel.LocalRenderer{}.RenderJob(ctx, job)
}

func TestSchedulerFailedBandIsReissued(t *testing.T) {
	b := mandel.Bounds{Width: 32, Height: 32}
	s := New(b, mandel.TripleSpiral, mandel.DefaultLimit, 8)

	err := s.Render(context.Background(), &failingRenderer{ok: 2})
	if !errors.Is(err, errBroken) {
		t.Fatalf("Render() error = %v, want %v", err, errBroken)
	}
	if p := s.Progress(); p.FinishedBands != 2 {
		t.Fatalf("Progress().FinishedBands = %d, want 2", p.FinishedBands)
	}

	if err := s.Render(context.Background(), mandel.LocalRenderer{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !bytes.Equal(got, fullRender(b, mandel.TripleSpiral)) {
		t.Error("image differs from a full render after a worker failed")
	}
}

func TestSchedulerWaitCancelled(t *testing.T) {
	s := New(mandel.Bounds{Width: 4, Height: 4}, mandel.FullSet, mandel.DefaultLimit, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want %v", err, context.Canceled)
	}
}

func TestSchedulerRenderCancelled(t *testing.T) {
	s := New(mandel.Bounds{Width: 4, Height: 4}, mandel.FullSet, mandel.DefaultLimit, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Render(ctx, mandel.LocalRenderer{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want %v", err, context.Canceled)
	}
	if p := s.Progress(); p.FinishedBands != 0 {
		t.Errorf("Progress().FinishedBands = %d, want 0", p.FinishedBands)
	}
}

func TestSchedulerDuplicateResultIgnored(t *testing.T) {
	b := mandel.Bounds{Width: 8, Height: 8}
	s := New(b, mandel.FullSet, mandel.DefaultLimit, 8)

	band, ok := s.popBand()
	if !ok {
		t.Fatal("popBand() found nothing")
	}
	again, ok := s.popBand()
	if !ok || again != band {
		t.Fatalf("popBand() = (%v, %v), want the in-process band %v", again, ok, band)
	}

	rows := bytes.Repeat([]byte{1}, b.Pixels())
	s.bandFinished(band, rows)
	s.bandFinished(again, bytes.Repeat([]byte{2}, b.Pixels()))

	got, _ := s.Wait(context.Background())
	if !bytes.Equal(got, rows) {
		t.Error("second result for a band overwrote the first")
	}
	if p := s.Progress(); p.FinishedBands != 1 {
		t.Errorf("Progress().FinishedBands = %d, want 1", p.FinishedBands)
	}
}
