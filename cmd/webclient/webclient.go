//go:build js && wasm

// webclient.go is a WASM worker for the distributed Mandelbrot renderer.
// It connects to the Mandelbrot server, renders the bands it is sent, draws them on the page
// and displays rendering progress in the browser.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"syscall/js"
	"time"

	"github.com/bytedance/sonic"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/scheduler"
	"github.com/marben/gray_mandel/internal/wire"
)

// canvasRenderer renders in the browser and paints each band it finishes.
type canvasRenderer struct {
	mandel.LocalRenderer
}

func (cr canvasRenderer) RenderJob(ctx context.Context, job mandel.Job) ([]byte, error) {
	pixels, err := cr.LocalRenderer.RenderJob(ctx, job)
	if err != nil {
		return nil, err
	}
	drawBandToCanvas(job, pixels)
	return pixels, nil
}

// main is the entry point for the WASM web client.
// It connects to the Mandelbrot server, serves render jobs and keeps the HUD up to date.
func main() {
	logScreenf("Starting WASM web client...")

	// Step 1: Determine server address for WebSocket connection
	loc := js.Global().Get("window").Get("location")
	host := loc.Get("host").String()
	proto := "ws"
	if loc.Get("protocol").String() == "https:" {
		proto = "wss"
	}
	websocketUrl := proto + "://" + host + "/ws"
	progressUrl := loc.Get("origin").String() + "/progress"

	// Step 2: Initialize canvas with full image dimensions
	logScreenf("Requesting image dimensions from server...")
	p, err := fetchProgress(progressUrl)
	if err != nil {
		logFatalf("Failed to get progress: %v", err)
	}
	initCanvas(p.Width, p.Height, "#3a3a6e")
	logScreenf("Canvas initialized to dimensions %dx%d", p.Width, p.Height)

	// Step 3: Connect to server via WebSocket
	logScreenf("Connecting to Mandelbrot server at %s...", websocketUrl)
	websocket := js.Global().Get("WebSocket").New(websocketUrl)
	websocketRWC := NewWebsocketReadWriteCloser(websocket)

	// Step 4: Serve render jobs on our CPU
	renderer := canvasRenderer{mandel.LocalRenderer{OnJob: func(j mandel.Job) {
		logScreenf("Rendering rows [%d,%d)", j.Band.RowMin, j.Band.RowMax)
	}}}
	endpoint := wire.NewEndpoint(websocketRWC)
	go func() {
		if err := endpoint.Serve(context.Background(), renderer); err != nil {
			logScreenf("Serve: %v", err)
			return
		}
		logScreenf("Server has no more work.")
	}()

	// Step 5: Start progress loop
	if err := progressLoop(progressUrl); err != nil {
		logFatalf("progressLoop: %v", err)
	}

	// Step 6: Block main goroutine to keep WASM running
	select {}
}

// logScreenf appends a formatted message to the log element in the DOM,
func logScreenf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	doc := js.Global().Get("document")
	logElem := doc.Call("getElementById", "log")
	logElem.Set("textContent", logElem.Get("textContent").String()+msg+"\n")
}

// logFatalf logs a fatal error to the log window and terminates the program.
func logFatalf(format string, a ...any) {
	logScreenf("FATAL: "+format, a...)
	log.Fatalf(format, a...)
}

func fetchProgress(url string) (scheduler.Progress, error) {
	var p scheduler.Progress
	resp, err := http.Get(url)
	if err != nil {
		return p, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p, err
	}
	if err := sonic.Unmarshal(body, &p); err != nil {
		return p, fmt.Errorf("decode progress: %w", err)
	}
	return p, nil
}

// progressLoop polls the server for progress and updates the HUD until the image is complete.
func progressLoop(url string) error {
	for {
		p, err := fetchProgress(url)
		if err != nil {
			return fmt.Errorf("fetch progress: %w", err)
		}
		hudSetTotalBands(p.TotalBands)
		hudSetFinishedBands(p.FinishedBands)
		hudSetWorkers(p.Workers)

		if p.FinishedBands == p.TotalBands {
			logScreenf("Image complete.")
			return nil
		}

		// Sleep a bit. We are polling for brevity, instead of pushing updates from the server
		time.Sleep(250 * time.Millisecond)
	}
}

// hudSetWorkers updates the HUD to show the number of currently running workers.
func hudSetWorkers(workers int) {
	js.Global().Get("document").Call("getElementById", "workersRunning").Set("textContent", workers)
}

// hudSetFinishedBands updates the HUD to show the number of finished bands.
func hudSetFinishedBands(finished int) {
	js.Global().Get("document").Call("getElementById", "bandsDone").Set("textContent", finished)
}

// hudSetTotalBands updates the HUD to show the total number of bands to be rendered.
func hudSetTotalBands(total int) {
	js.Global().Get("document").Call("getElementById", "bandsTotal").Set("textContent", total)
}
