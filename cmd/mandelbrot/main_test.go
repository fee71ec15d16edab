package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	mandel "github.com/marben/gray_mandel"
	"github.com/marben/gray_mandel/internal/imgio"
)

func defaultOptions() options {
	return options{limit: mandel.DefaultLimit, bandRows: mandel.DefaultBandRows, supersample: 1}
}

func decodeGray(t *testing.T, path string) (image.Image, []byte) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode %q: %v", path, err)
	}
	r := img.Bounds()
	var out []byte
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			gr, _, _, _ := img.At(x, y).RGBA()
			out = append(out, byte(gr>>8))
		}
	}
	return img, out
}

func TestRunWritesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandel.png")
	args := []string{path, "100x75", "-1.20,0.35", "-1,0.20"}
	if err := run(context.Background(), args, defaultOptions()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	_, got := decodeGray(t, path)
	b := mandel.Bounds{Width: 100, Height: 75}
	want := make([]byte, b.Pixels())
	mandel.Render(want, b, complex(-1.20, 0.35), complex(-1, 0.20))
	if !bytes.Equal(got, want) {
		t.Error("written image differs from a single threaded render")
	}
}

func TestRunBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandel.bmp")
	args := []string{path, "33x21", "-2,1", "1,-1"}
	if err := run(context.Background(), args, defaultOptions()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := bmp.DecodeConfig(f)
	if err != nil {
		t.Fatalf("bmp.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 33 || cfg.Height != 21 {
		t.Errorf("image is %dx%d, want 33x21", cfg.Width, cfg.Height)
	}
}

func TestRunSupersample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandel.png")
	o := defaultOptions()
	o.supersample = 3
	if err := run(context.Background(), []string{path, "40x30", "-2,1.25", "1,-1.25"}, o); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	img, _ := decodeGray(t, path)
	if r := img.Bounds(); r.Dx() != 40 || r.Dy() != 30 {
		t.Errorf("image is %dx%d, want 40x30", r.Dx(), r.Dy())
	}
}

func TestRunUsageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		o    func(*options)
	}{
		{"too few", []string{"a.png", "10x10"}, nil},
		{"bad size", []string{"a.png", "10by10", "-1,1", "1,-1"}, nil},
		{"bad upper left", []string{"a.png", "10x10", "-1;1", "1,-1"}, nil},
		{"bad lower right", []string{"a.png", "10x10", "-1,1", "1"}, nil},
		{"zero limit", []string{"a.png", "10x10", "-1,1", "1,-1"}, func(o *options) { o.limit = 0 }},
		{"zero supersample", []string{"a.png", "10x10", "-1,1", "1,-1"}, func(o *options) { o.supersample = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			if tt.o != nil {
				tt.o(&o)
			}
			args := append([]string(nil), tt.args...)
			args[0] = filepath.Join(dir, args[0])
			if err := run(context.Background(), args, o); !errors.Is(err, errUsage) {
				t.Errorf("run(%q) error = %v, want %v", tt.args, err, errUsage)
			}
		})
	}
}

func TestRunUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandel.jpg")
	err := run(context.Background(), []string{path, "10x10", "-1,1", "1,-1"}, defaultOptions())
	if !errors.Is(err, imgio.ErrUnsupportedFormat) {
		t.Errorf("run() error = %v, want %v", err, imgio.ErrUnsupportedFormat)
	}
}
