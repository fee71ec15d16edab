package mandel

import "fmt"

// Render writes the gray level of every pixel of a raster of size b showing the rectangle
// between upperLeft and lowerRight, using DefaultLimit. len(pixels) must equal b.Pixels().
func Render(pixels []byte, b Bounds, upperLeft, lowerRight complex128) {
	RenderViewport(pixels, b, Viewport{UpperLeft: upperLeft, LowerRight: lowerRight}, DefaultLimit)
}

// RenderViewport is Render with an explicit viewport and iteration limit.
func RenderViewport(pixels []byte, b Bounds, v Viewport, limit int) {
	mustFit(pixels, b)
	RenderRows(pixels, b, Band{RowMin: 0, RowMax: b.Height}, v, limit)
}

// RenderRows renders only the rows of band into dst, which holds exactly those rows.
// Rendering disjoint bands into the matching slices of a full buffer gives the same bytes
// as rendering the whole raster at once.
func RenderRows(dst []byte, b Bounds, band Band, v Viewport, limit int) {
	if !b.Valid() {
		panic(fmt.Sprintf("mandel: invalid bounds %dx%d", b.Width, b.Height))
	}
	if band.RowMin < 0 || band.RowMax > b.Height || band.RowMin > band.RowMax {
		panic(fmt.Sprintf("mandel: band [%d,%d) outside %d rows", band.RowMin, band.RowMax, b.Height))
	}
	if len(dst) != b.Width*band.Rows() {
		panic(fmt.Sprintf("mandel: buffer of %d bytes for %d rows of width %d", len(dst), band.Rows(), b.Width))
	}

	for row := band.RowMin; row < band.RowMax; row++ {
		line := dst[(row-band.RowMin)*b.Width : (row-band.RowMin+1)*b.Width]
		for column := range line {
			point := PixelToPoint(b, column, row, v)
			line[column] = Shade(EscapeTime(point, limit))
		}
	}
}

func mustFit(pixels []byte, b Bounds) {
	if !b.Valid() {
		panic(fmt.Sprintf("mandel: invalid bounds %dx%d", b.Width, b.Height))
	}
	if len(pixels) != b.Pixels() {
		panic(fmt.Sprintf("mandel: buffer of %d bytes for %dx%d raster", len(pixels), b.Width, b.Height))
	}
}
