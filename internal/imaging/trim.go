package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// TrimToInk locates the glyph band inside a larger image and crops to it.
//
// Screen captures and clipboard grabs usually carry margins, borders, or
// surrounding page chrome around the actual CAPTCHA text. TrimToInk
// binarizes the image with an Otsu-derived threshold and crops to the
// bounding box of the dark (ink) pixels, expanded by pad pixels on every
// side.
//
// Returns the cropped image and the crop rectangle in source coordinates.
// Fails when the image contains no ink at all (e.g. a blank capture).
func TrimToInk(img image.Image, pad int) (image.Image, image.Rectangle, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, image.Rectangle{}, fmt.Errorf("cannot trim empty image")
	}
	if pad < 0 {
		pad = 0
	}

	level := otsuLevel(img)
	mask := segment.Threshold(img, level)

	// Bounding box of ink pixels. Threshold maps values above the level to
	// white, so ink is the black side of the mask.
	mb := mask.Bounds()
	minX, minY := mb.Max.X, mb.Max.Y
	maxX, maxY := mb.Min.X-1, mb.Min.Y-1
	for y := mb.Min.Y; y < mb.Max.Y; y++ {
		for x := mb.Min.X; x < mb.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return nil, image.Rectangle{}, fmt.Errorf("no ink found in image")
	}

	rect := image.Rect(minX-pad, minY-pad, maxX+1+pad, maxY+1+pad)
	// The mask bounds start at the origin regardless of the source bounds.
	rect = rect.Add(bounds.Min).Intersect(bounds)

	cropped := imaging.Crop(img, rect)
	return cropped, rect, nil
}

// otsuLevel computes the Otsu binarization threshold from the image's
// grayscale histogram: the level that maximizes between-class variance of
// the ink and background populations.
func otsuLevel(img image.Image) uint8 {
	bounds := img.Bounds()
	var hist [256]int
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luminance on 8-bit components.
			lum := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			hist[lum]++
			total++
		}
	}
	if total == 0 {
		return 127
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	maxVariance := -1.0
	bestLo, bestHi := 127, 127
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		switch {
		case variance > maxVariance:
			maxVariance = variance
			bestLo, bestHi = i, i
		case variance == maxVariance:
			bestHi = i
		}
	}
	// Ties (flat variance plateaus, e.g. clean two-tone images) resolve to
	// the plateau midpoint.
	return uint8((bestLo + bestHi) / 2)
}
