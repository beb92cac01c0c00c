// Package capture grabs screen regions for the "capture" glue surface. It
// resolves the display stack through github.com/kbinani/screenshot, which
// handles X11, Windows and macOS without cgo on the common paths.
package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Region grabs the w x h screen rectangle whose top-left corner is (x, y).
//
// Coordinates are in the virtual-screen space that spans all displays.
// Fails when the rectangle is degenerate or the platform capture fails
// (e.g. no display server).
func Region(x, y, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("capture region must have positive size, got %dx%d", w, h)
	}
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+w, y+h))
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}
	return img, nil
}

// Display grabs an entire display by index (0 is the primary display).
func Display(index int) (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if index < 0 || index >= n {
		return nil, fmt.Errorf("display index %d out of range (have %d)", index, n)
	}
	bounds := screenshot.GetDisplayBounds(index)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}
	return img, nil
}
