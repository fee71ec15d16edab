package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/scheduler"
	"github.com/marben/gray_mandel/internal/wire"
)

// acceptWorkers hands every connection on l to sched until l is closed.
func acceptWorkers(ctx context.Context, l net.Listener, sched *scheduler.Scheduler) {
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		go func() {
			ep := wire.NewEndpoint(conn)
			defer ep.Close()
			sched.Render(ctx, ep)
		}()
	}
}

func TestRunRendersWholeImage(t *testing.T) {
	b := mandel.Bounds{Width: 80, Height: 60}
	sched := scheduler.New(b, mandel.SpiralMinibrot, mandel.DefaultLimit, 4)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go acceptWorkers(ctx, l, sched)

	done := make(chan error, 1)
	go func() { done <- run("tcp://"+l.Addr().String(), 3, false) }()

	got, err := sched.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	want := make([]byte, b.Pixels())
	mandel.RenderViewport(want, b, mandel.SpiralMinibrot, mandel.DefaultLimit)
	if !bytes.Equal(got, want) {
		t.Error("image rendered by the worker differs from a local render")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v, want nil once the server hangs up", err)
		}
	case <-ctx.Done():
		t.Fatal("run() did not return after the image was complete")
	}
}

func TestRunErrors(t *testing.T) {
	if err := run("tcp://127.0.0.1:1", 0, false); err == nil {
		t.Error("run() accepted zero connections")
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()
	if err := run("tcp://"+addr, 2, false); err == nil {
		t.Error("run() succeeded without a server")
	}
	if err := run("udp://"+addr, 1, false); err == nil {
		t.Error("run() accepted an unsupported scheme")
	}
}
