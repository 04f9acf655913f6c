// Package debug holds developer tooling for the viewer host.
package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// PixelReader reads back the current framebuffer as bottom-up RGBA rows.
type PixelReader interface {
	ReadPixels(width, height int) []byte
}

// Capturer writes framebuffer captures as timestamped PNG files.
type Capturer struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewCapturer returns a Capturer writing <prefix>_<timestamp>.png into dir.
// An empty dir writes into the working directory.
func NewCapturer(dir, prefix string) *Capturer {
	return &Capturer{dir: dir, prefix: prefix, now: time.Now}
}

// Capture reads a width×height framebuffer from r and saves it.
func (c *Capturer) Capture(r PixelReader, width, height int) (string, error) {
	img, err := FlipRGBA(r.ReadPixels(width, height), width, height)
	if err != nil {
		return "", err
	}
	return c.Save(img)
}

// Save writes img and returns its path. Captures taken within the same
// millisecond get a numeric suffix instead of overwriting each other.
func (c *Capturer) Save(img image.Image) (string, error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	base := c.Filename()
	path := base
	var f *os.File
	for n := 1; ; n++ {
		var err error
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || n > 99 {
			return "", fmt.Errorf("creating file: %w", err)
		}
		path = fmt.Sprintf("%s-%d.png", base[:len(base)-len(".png")], n)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return path, f.Close()
}

// Filename returns the path the next capture is written to.
func (c *Capturer) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.dir != "" {
		name = filepath.Join(c.dir, name)
	}
	return name
}

// FlipRGBA copies width*height RGBA pixels into an image, reversing row order.
func FlipRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid screenshot size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}
