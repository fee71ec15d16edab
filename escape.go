package mandel

// PixelToPoint returns the point of the plane shown at pixel (column, row) of a raster of
// size b displaying v. Rows grow downwards while the imaginary axis grows upwards.
// Pixels outside b are not checked.
func PixelToPoint(b Bounds, column, row int, v Viewport) complex128 {
	width := real(v.LowerRight) - real(v.UpperLeft)
	height := imag(v.UpperLeft) - imag(v.LowerRight)
	return complex(
		real(v.UpperLeft)+float64(column)*width/float64(b.Width),
		imag(v.UpperLeft)-float64(row)*height/float64(b.Height),
	)
}

// EscapeTime iterates z = z*z + c from zero and returns the iteration at which |z| first
// exceeded 2. The magnitude is checked before each update. If z stays bounded for limit
// iterations, c is taken to be a member of the set and escaped is false.
func EscapeTime(c complex128, limit int) (count int, escaped bool) {
	if limit <= 0 {
		panic("mandel: escape limit must be positive")
	}
	var z complex128
	for i := range limit {
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			return i, true
		}
		z = z*z + c
	}
	return 0, false
}

// Shade maps an escape result to a gray level. Fast escapes are bright; members of the
// set and counts past the byte range are black.
func Shade(count int, escaped bool) uint8 {
	if !escaped || count >= 255 || count < 0 {
		return 0
	}
	return uint8(255 - count)
}
