// Package clipboard wraps the system clipboard for the solver's two needs:
// reading CAPTCHA images in and writing decoded text out. It also exposes a
// watch channel used by the auto-monitor loop.
//
// The underlying golang.design/x/clipboard package requires a one-time Init
// that can fail on headless hosts without a display server; callers treat
// that as "clipboard features unavailable" rather than a fatal error.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	xclipboard "golang.design/x/clipboard"

	"github.com/parsolve/parsolve/internal/imaging"
)

// ErrNoImage is returned by ReadImage when the clipboard holds no image.
var ErrNoImage = errors.New("no image in clipboard")

var (
	initOnce sync.Once
	initErr  error
)

// Init prepares the system clipboard. Safe to call more than once; the
// first error is sticky.
func Init() error {
	initOnce.Do(func() {
		initErr = xclipboard.Init()
	})
	if initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", initErr)
	}
	return nil
}

// ReadImage returns the image currently on the clipboard, or ErrNoImage
// when the clipboard is empty or holds non-image content.
func ReadImage() (image.Image, error) {
	data := xclipboard.Read(xclipboard.FmtImage)
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("clipboard image: %w", err)
	}
	return img, nil
}

// WriteText places text on the clipboard, replacing its current content.
func WriteText(text string) {
	xclipboard.Write(xclipboard.FmtText, []byte(text))
}

// WatchImages returns a channel that delivers the PNG payload of every new
// image placed on the clipboard until ctx is cancelled. The channel closes
// on cancellation.
func WatchImages(ctx context.Context) <-chan []byte {
	return xclipboard.Watch(ctx, xclipboard.FmtImage)
}
