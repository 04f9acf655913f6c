package debug

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFlipRGBA(t *testing.T) {
	// Two rows, bottom row first as OpenGL returns them.
	pixels := []byte{
		1, 1, 1, 255, 2, 2, 2, 255,
		3, 3, 3, 255, 4, 4, 4, 255,
	}

	img, err := FlipRGBA(pixels, 2, 2)
	if err != nil {
		t.Fatalf("FlipRGBA failed: %v", err)
	}
	if got := img.RGBAAt(0, 0).R; got != 3 {
		t.Errorf("top-left: expected 3, got %d", got)
	}
	if got := img.RGBAAt(1, 1).R; got != 2 {
		t.Errorf("bottom-right: expected 2, got %d", got)
	}
}

func TestFlipRGBAErrors(t *testing.T) {
	tests := []struct {
		name   string
		pixels []byte
		w, h   int
	}{
		{"short buffer", make([]byte, 7), 1, 2},
		{"zero width", nil, 0, 2},
		{"negative height", nil, 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FlipRGBA(tt.pixels, tt.w, tt.h); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type framebuffer []byte

func (f framebuffer) ReadPixels(width, height int) []byte { return f }

func fixedClock() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6e6, time.UTC) }

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	c := NewCapturer(dir, "walkview")
	c.now = fixedClock

	path, err := c.Capture(framebuffer(make([]byte, 3*2*4)), 3, 2)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if want := filepath.Join(dir, "walkview_2026-01-02_03-04-05.006.png"); path != want {
		t.Errorf("expected %s, got %s", want, path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("expected 3x2, got %v", b)
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	c := NewCapturer(t.TempDir(), "walkview")
	if _, err := c.Capture(framebuffer(make([]byte, 4)), 3, 2); err == nil {
		t.Error("expected error for short read-back")
	}
}

func TestSaveDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	c := NewCapturer(dir, "walkview")
	c.now = fixedClock

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	first, err := c.Save(img)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := c.Save(img)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first == second {
		t.Fatalf("second capture overwrote %s", first)
	}
	if want := filepath.Join(dir, "walkview_2026-01-02_03-04-05.006-1.png"); second != want {
		t.Errorf("expected %s, got %s", want, second)
	}
}

func TestFilenameWithoutDir(t *testing.T) {
	name := NewCapturer("", "shot").Filename()
	if !strings.HasPrefix(name, "shot_") || !strings.HasSuffix(name, ".png") {
		t.Errorf("unexpected filename %s", name)
	}
	if strings.Contains(name, string(filepath.Separator)) {
		t.Errorf("expected a bare filename, got %s", name)
	}
}
