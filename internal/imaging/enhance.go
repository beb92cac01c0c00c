package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Enhance applies a contrast/sharpness cleanup chain that helps with faint
// or noisy CAPTCHAs: grayscale conversion, aggressive contrast boost, a
// sharpen pass, and a mild brightness lift.
//
// The chain is optional; the model tolerates raw input, but low-contrast
// screen captures decode more reliably after it.
func Enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.5)
	out = imaging.AdjustBrightness(out, 10)
	return out
}
