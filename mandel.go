package mandel

import (
	"math/cmplx"
	"sort"
	"strings"
)

// DefaultLimit is the escape iteration cap. It keeps the escape count within one byte.
const DefaultLimit = 255

// Bounds is the pixel size of a raster.
type Bounds struct {
	Width, Height int
}

// Pixels returns the number of bytes a buffer for b must hold.
func (b Bounds) Pixels() int {
	return b.Width * b.Height
}

func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Viewport is the rectangle of the complex plane mapped onto the raster.
// UpperLeft is the point shown at pixel (0, 0).
type Viewport struct {
	UpperLeft, LowerRight complex128
}

// Finite reports whether both corners are free of infinities and NaNs.
func (v Viewport) Finite() bool {
	return finite(v.UpperLeft) && finite(v.LowerRight)
}

func finite(c complex128) bool {
	return !cmplx.IsInf(c) && !cmplx.IsNaN(c)
}

// Band is the half-open row range [RowMin, RowMax) of a raster.
type Band struct {
	RowMin, RowMax int
}

func (b Band) Rows() int {
	return b.RowMax - b.RowMin
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Viewport{
		UpperLeft:  complex(-0.8, 0.15),
		LowerRight: complex(-0.7, 0.05),
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Viewport{
		UpperLeft:  complex(-1.85, -0.02),
		LowerRight: complex(-1.75, -0.10),
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Viewport{
		UpperLeft:  complex(-0.7435, 0.1325),
		LowerRight: complex(-0.7420, 0.1310),
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Viewport{
		UpperLeft:  complex(-0.7480, 0.0980),
		LowerRight: complex(-0.7450, 0.0950),
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Viewport{
		UpperLeft:  complex(-0.7400, 0.1850),
		LowerRight: complex(-0.7350, 0.1800),
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Viewport{
		UpperLeft:  complex(-1.7390, -0.0220),
		LowerRight: complex(-1.7375, -0.0235),
	}

	// Book view – the region just left of the main cardioid's upper neck
	BookView = Viewport{
		UpperLeft:  complex(-1.20, 0.35),
		LowerRight: complex(-1.00, 0.20),
	}

	// Full set
	FullSet = Viewport{
		UpperLeft:  complex(-2.5, 1.25),
		LowerRight: complex(1.0, -1.25),
	}
)

var regions = map[string]Viewport{
	"seahorsevalley":       SeahorseValley,
	"elephantvalley":       ElephantValley,
	"spiralminibrot":       SpiralMinibrot,
	"triplespiral":         TripleSpiral,
	"valleyofthedragon":    ValleyOfTheDragon,
	"minibrotinminispiral": MinibrotInMiniSpiral,
	"bookview":             BookView,
	"fullset":              FullSet,
}

// LookupRegion returns the landmark viewport with the given name.
// Matching ignores case, dashes and underscores, so "seahorse-valley" finds SeahorseValley.
func LookupRegion(name string) (Viewport, bool) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	v, ok := regions[key]
	return v, ok
}

// RegionNames lists the names accepted by LookupRegion.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
