package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ToTensor resizes img to height x width and flattens it into the model's
// NCHW float32 input layout (1 batch, 3 RGB channels).
//
// Pixel values are normalized to [-1,1]: (v/255 - 0.5) / 0.5 per channel,
// the exact constants the bundled model was trained with. Alpha is ignored;
// transparent source pixels are composited the way the decoder produced
// them.
//
// The returned slice has length 3*height*width, indexed
// [channel*height*width + y*width + x].
func ToTensor(img image.Image, height, width int) ([]float32, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid tensor dimensions %dx%d", width, height)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("cannot build tensor from empty image")
	}

	// Catmull-Rom is the bicubic family filter the model's training
	// pipeline used.
	resized := imaging.Resize(img, width, height, imaging.CatmullRom)

	plane := height * width
	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := resized.PixOffset(x, y)
			r := resized.Pix[i]
			g := resized.Pix[i+1]
			b := resized.Pix[i+2]
			data[0*plane+y*width+x] = float32(r)/127.5 - 1
			data[1*plane+y*width+x] = float32(g)/127.5 - 1
			data[2*plane+y*width+x] = float32(b)/127.5 - 1
		}
	}
	return data, nil
}
