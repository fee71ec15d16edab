package main

import (
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"

	mandel "github.com/marben/gray_mandel"
)

// Config is read from the file given with -f. Every field has a usable default, so the
// server also runs without a file.
type Config struct {
	// Output receives the finished image; the extension picks the format.
	Output string `json:",default=mandel.png"`
	// Size is WIDTHxHEIGHT.
	Size string `json:",default=1920x1080"`
	// Region names a landmark, see mandel.RegionNames. UpperLeft and LowerRight ("re,im")
	// override it when both are set.
	Region     string `json:",default=seahorse-valley"`
	UpperLeft  string `json:",optional"`
	LowerRight string `json:",optional"`
	Limit      int    `json:",default=255"`
	BandRows   int    `json:",default=16"`

	// LocalWorkers render in the server process next to remote workers.
	LocalWorkers int `json:",optional"`
	// KeepServing keeps the listeners and /render up after the image is written.
	KeepServing bool `json:",optional"`

	TCPAddr   string `json:",default=:8081"`
	HTTPPort  int    `json:",default=8080"`
	StaticDir string `json:",default=./static"`
	// MaxRenderPixels bounds the images /render produces.
	MaxRenderPixels int `json:",default=16777216"`

	Gops    bool `json:",optional"`
	Verbose bool `json:",optional"`
}

func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		if err := conf.FillDefault(&c); err != nil {
			return Config{}, fmt.Errorf("config defaults: %w", err)
		}
		return c, nil
	}
	if err := conf.Load(path, &c); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	return c, nil
}

func (c Config) Bounds() (mandel.Bounds, error) {
	b, ok := mandel.ParseBounds(c.Size)
	if !ok {
		return mandel.Bounds{}, fmt.Errorf("size %q: want WIDTHxHEIGHT", c.Size)
	}
	return b, nil
}

func (c Config) Viewport() (mandel.Viewport, error) {
	if c.UpperLeft != "" || c.LowerRight != "" {
		ul, ok := mandel.ParseComplex(c.UpperLeft)
		if !ok {
			return mandel.Viewport{}, fmt.Errorf("upper left %q: want re,im", c.UpperLeft)
		}
		lr, ok := mandel.ParseComplex(c.LowerRight)
		if !ok {
			return mandel.Viewport{}, fmt.Errorf("lower right %q: want re,im", c.LowerRight)
		}
		v := mandel.Viewport{UpperLeft: ul, LowerRight: lr}
		if !v.Finite() {
			return mandel.Viewport{}, fmt.Errorf("viewport %v .. %v: corners must be finite", ul, lr)
		}
		return v, nil
	}

	v, ok := mandel.LookupRegion(c.Region)
	if !ok {
		return mandel.Viewport{}, fmt.Errorf("unknown region %q, known: %v", c.Region, mandel.RegionNames())
	}
	return v, nil
}

func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit %d: must be positive", c.Limit)
	}
	if c.BandRows <= 0 {
		return fmt.Errorf("band rows %d: must be positive", c.BandRows)
	}
	if c.LocalWorkers < 0 {
		return fmt.Errorf("local workers %d: must not be negative", c.LocalWorkers)
	}
	return nil
}
