package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"

	"selectbox/src/geometry"
)

// Region is a screen rectangle in absolute virtual-screen pixels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RegionFromResult converts a surface-local selection into absolute screen
// pixels. surface is the bounds the selection was made on; fractional edges
// are widened outward so the capture covers the whole selection.
func RegionFromResult(r geometry.Result, surface geometry.Bounds) Region {
	abs := r.Rect().Offset(surface.Left, surface.Top)
	left := math.Floor(abs.Left)
	top := math.Floor(abs.Top)
	right := math.Ceil(abs.Right())
	bottom := math.Ceil(abs.Bottom())
	return Region{
		X:      int(left),
		Y:      int(top),
		Width:  int(right - left),
		Height: int(bottom - top),
	}
}

// Rectangle returns the region as an image.Rectangle.
func (r Region) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// VirtualBounds returns the union of all active displays, used as the
// surface for screen-wide selection.
func VirtualBounds() (geometry.Bounds, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return geometry.Bounds{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return geometry.Bounds{
		Left:   float64(union.Min.X),
		Top:    float64(union.Min.Y),
		Width:  float64(union.Dx()),
		Height: float64(union.Dy()),
	}, nil
}

// CaptureRegion captures a specific region of the screen as PNG bytes.
func CaptureRegion(region Region) ([]byte, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}

	img, err := screenshot.CaptureRect(region.Rectangle())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}

	return encodePNG(img)
}

// SaveRegion captures region and writes it under dir with a timestamped
// name, returning the file path.
func SaveRegion(dir string, region Region) (string, error) {
	data, err := CaptureRegion(region)
	if err != nil {
		return "", err
	}
	return WritePNG(dir, region, data, time.Now())
}

// WritePNG stores already-encoded PNG data under dir.
func WritePNG(dir string, region Region, data []byte, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	name := fmt.Sprintf("selection_%s_%dx%d.png", at.Format("20060102_150405"), region.Width, region.Height)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
