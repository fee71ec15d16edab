package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zeromicro/go-zero/core/syncx"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/imgio"
)

const maxRenderLimit = 10000

// renderHandler renders images in process on request:
//
//	/render?size=800x600&ul=-1.2,0.35&lr=-1,0.2&limit=255&format=png
//	/render?size=800x600&region=triple-spiral
//
// Identical requests arriving while one is being rendered share its result.
type renderHandler struct {
	ctx       context.Context
	flight    syncx.SingleFlight
	maxPixels int
}

func newRenderHandler(ctx context.Context, maxPixels int) *renderHandler {
	return &renderHandler{
		ctx:       ctx,
		flight:    syncx.NewSingleFlight(),
		maxPixels: maxPixels,
	}
}

type renderRequest struct {
	bounds mandel.Bounds
	view   mandel.Viewport
	limit  int
	format imgio.Format
}

func (rr renderRequest) key() string {
	return fmt.Sprintf("%dx%d|%v|%v|%d|%s",
		rr.bounds.Width, rr.bounds.Height, rr.view.UpperLeft, rr.view.LowerRight, rr.limit, rr.format)
}

func parseRenderRequest(q url.Values, maxPixels int) (renderRequest, error) {
	rr := renderRequest{
		bounds: mandel.Bounds{Width: 800, Height: 600},
		view:   mandel.FullSet,
		limit:  mandel.DefaultLimit,
		format: imgio.PNG,
	}

	if s := q.Get("size"); s != "" {
		b, ok := mandel.ParseBounds(s)
		if !ok {
			return rr, fmt.Errorf("size %q: want WIDTHxHEIGHT", s)
		}
		rr.bounds = b
	}
	if rr.bounds.Width > maxPixels/rr.bounds.Height {
		return rr, fmt.Errorf("size %dx%d: more than %d pixels", rr.bounds.Width, rr.bounds.Height, maxPixels)
	}

	if name := q.Get("region"); name != "" {
		v, ok := mandel.LookupRegion(name)
		if !ok {
			return rr, fmt.Errorf("unknown region %q", name)
		}
		rr.view = v
	}
	if s := q.Get("ul"); s != "" {
		ul, ok := mandel.ParseComplex(s)
		if !ok {
			return rr, fmt.Errorf("ul %q: want re,im", s)
		}
		rr.view.UpperLeft = ul
	}
	if s := q.Get("lr"); s != "" {
		lr, ok := mandel.ParseComplex(s)
		if !ok {
			return rr, fmt.Errorf("lr %q: want re,im", s)
		}
		rr.view.LowerRight = lr
	}
	if !rr.view.Finite() {
		return rr, fmt.Errorf("viewport %v .. %v: corners must be finite", rr.view.UpperLeft, rr.view.LowerRight)
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 || limit > maxRenderLimit {
			return rr, fmt.Errorf("limit %q: want 1..%d", s, maxRenderLimit)
		}
		rr.limit = limit
	}

	if s := q.Get("format"); s != "" {
		f, err := imgio.ParseFormat(s)
		if err != nil {
			return rr, err
		}
		rr.format = f
	}
	return rr, nil
}

func (h *renderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rr, err := parseRenderRequest(r.URL.Query(), h.maxPixels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	val, err := h.flight.Do(rr.key(), func() (any, error) {
		return h.render(rr)
	})
	if err != nil {
		log.Printf("render %s: %v", rr.key(), err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", rr.format.ContentType())
	w.Write(val.([]byte))
}

func (h *renderHandler) render(rr renderRequest) ([]byte, error) {
	pixels := make([]byte, rr.bounds.Pixels())
	if err := mandel.RenderParallel(h.ctx, pixels, rr.bounds, rr.view, mandel.WithLimit(rr.limit)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imgio.Encode(&buf, rr.format, pixels, rr.bounds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
