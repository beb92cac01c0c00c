package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// HSVRange selects pixels by hue/saturation/value. Hue is in degrees
// (0-360), saturation and value in [0,1]. A range with MinHue > MaxHue
// wraps around 0 degrees (useful for reds).
type HSVRange struct {
	MinHue, MaxHue float64
	MinSat, MaxSat float64
	MinVal, MaxVal float64
}

// contains reports whether the HSV triple falls inside the range.
func (r HSVRange) contains(h, s, v float64) bool {
	if s < r.MinSat || s > r.MaxSat || v < r.MinVal || v > r.MaxVal {
		return false
	}
	if r.MinHue <= r.MaxHue {
		return h >= r.MinHue && h <= r.MaxHue
	}
	return h >= r.MinHue || h <= r.MaxHue
}

// namedRanges maps the color names accepted by FilterColor to HSV windows.
// The windows mirror common CAPTCHA ink palettes.
var namedRanges = map[string]HSVRange{
	"black":  {0, 360, 0, 1, 0, 0.35},
	"white":  {0, 360, 0, 0.15, 0.85, 1},
	"red":    {330, 30, 0.3, 1, 0.2, 1},
	"orange": {15, 45, 0.3, 1, 0.2, 1},
	"yellow": {45, 75, 0.3, 1, 0.2, 1},
	"green":  {75, 165, 0.3, 1, 0.2, 1},
	"cyan":   {165, 200, 0.3, 1, 0.2, 1},
	"blue":   {200, 260, 0.3, 1, 0.2, 1},
	"purple": {260, 330, 0.3, 1, 0.2, 1},
}

// FilterColor keeps only the pixels whose color matches the named range,
// rendering them as black ink on a white background. Multi-color CAPTCHAs
// often hide the answer in one ink color while noise lives in the others;
// filtering before decode strips that noise.
//
// Recognized names: black, white, red, orange, yellow, green, cyan, blue,
// purple.
func FilterColor(img image.Image, name string) (image.Image, error) {
	r, ok := namedRanges[name]
	if !ok {
		return nil, fmt.Errorf("unknown color %q", name)
	}
	return FilterHSV(img, r), nil
}

// FilterHSV keeps only the pixels inside the given HSV range, rendering
// them as black ink on white.
func FilterHSV(img image.Image, r HSVRange) image.Image {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				// Fully transparent pixel, treat as background.
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 255})
				continue
			}
			h, s, v := c.Hsv()
			if r.contains(h, s, v) {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 0})
			} else {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
