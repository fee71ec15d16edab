//go:build js && wasm

package main

import (
	"syscall/js"

	mandel "github.com/marben/gray_mandel"
)

func initCanvas(width, height int, color string) {
	doc := js.Global().Get("document")
	canvas := doc.Call("getElementById", "myCanvas")

	canvas.Set("width", width)
	canvas.Set("height", height)

	ctx := canvas.Call("getContext", "2d")

	ctx.Set("fillStyle", color)
	ctx.Call("fillRect", 0, 0, width, height)
}

// drawBandToCanvas paints the gray rows of a finished job at their place in the image.
func drawBandToCanvas(job mandel.Job, gray []byte) {
	// 1. Get the browser context
	document := js.Global().Get("document")
	canvas := document.Call("getElementById", "myCanvas")
	ctx := canvas.Call("getContext", "2d")

	// 2. Expand gray to the RGBA layout ImageData expects
	rgba := make([]byte, 4*len(gray))
	for i, g := range gray {
		rgba[4*i] = g
		rgba[4*i+1] = g
		rgba[4*i+2] = g
		rgba[4*i+3] = 255
	}
	jsData := js.Global().Get("Uint8ClampedArray").New(len(rgba))
	js.CopyBytesToJS(jsData, rgba)

	// 3. Create the ImageData object
	// Note: ImageData always expects width/height of the buffer provided
	imageData := js.Global().Get("ImageData").New(jsData, job.Bounds.Width, job.Band.Rows())

	// 4. Draw to the canvas at the band's first row
	ctx.Call("putImageData", imageData, 0, job.Band.RowMin)
}
