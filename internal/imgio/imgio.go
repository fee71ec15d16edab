// Package imgio persists rendered gray buffers as image files.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	mandel "github.com/marben/gray_mandel"
)

// ErrUnsupportedFormat is returned for file names or formats without an encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat accepts a format name such as "png" or "tif".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(filename string) (Format, error) {
	return ParseFormat(filepath.Ext(filename))
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	}
	return "image/png"
}

// Gray wraps pixels as an image without copying them.
func Gray(pixels []byte, b mandel.Bounds) *image.Gray {
	return &image.Gray{
		Pix:    pixels,
		Stride: b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Encode writes pixels as a single channel 8-bit image.
func Encode(w io.Writer, f Format, pixels []byte, b mandel.Bounds) error {
	if len(pixels) != b.Pixels() {
		return fmt.Errorf("buffer of %d bytes for %dx%d image", len(pixels), b.Width, b.Height)
	}
	img := Gray(pixels, b)

	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// WriteImage writes pixels to filename in the format named by its extension.
func WriteImage(filename string, pixels []byte, b mandel.Bounds) (err error) {
	f, err := FormatFromFilename(filename)
	if err != nil {
		return err
	}

	out, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %q: %w", filename, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", filename, cerr)
		}
	}()

	if err := Encode(out, f, pixels, b); err != nil {
		return fmt.Errorf("encode %q: %w", filename, err)
	}
	return nil
}

// Downsample shrinks a supersampled buffer by factor in both directions.
// A factor of 1 or less returns pixels unchanged.
func Downsample(pixels []byte, b mandel.Bounds, factor int) ([]byte, mandel.Bounds) {
	if factor <= 1 {
		return pixels, b
	}
	out := mandel.Bounds{Width: max(b.Width/factor, 1), Height: max(b.Height/factor, 1)}
	dst := image.NewGray(image.Rect(0, 0, out.Width, out.Height))
	src := Gray(pixels, b)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst.Pix, out
}
