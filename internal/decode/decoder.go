package decode

import (
	"image"
)

// Result is the outcome of one decode call.
type Result struct {
	// Text is the decoded CAPTCHA string.
	Text string `json:"text"`

	// Confidence is the mean probability of the predicted characters
	// (0.0 to 1.0). Engines that cannot score predictions report 0.
	Confidence float64 `json:"confidence"`

	// Engine names the engine that produced the result.
	Engine string `json:"engine"`
}

// Engine runs recognition on a preprocessed-ready image. Implementations own
// their model resources and must be safe for repeated sequential calls.
type Engine interface {
	// Recognize performs a single synchronous recognition pass. The image
	// is guaranteed non-empty by the calling Decoder.
	Recognize(img image.Image) (*Result, error)

	// Name identifies the engine (e.g. "onnx", "tesseract").
	Name() string

	// Close releases model resources. The engine is unusable afterwards.
	Close() error
}

// Decoder is the front door of the decode pipeline. It validates input
// images and delegates recognition to the injected Engine, wrapping any
// failure in *DecodeError.
//
// A Decoder holds no mutable state of its own; it is as safe for concurrent
// use as its Engine. The bundled engines expect sequential calls, which the
// CLI and the clipboard monitor guarantee by construction.
type Decoder struct {
	engine Engine
}

// NewDecoder wraps an Engine. The Decoder does not take ownership; the
// caller closes the engine when done.
func NewDecoder(engine Engine) *Decoder {
	return &Decoder{engine: engine}
}

// Decode runs one image through the pipeline and returns the decoded text.
//
// It fails with *DecodeError when the image is nil, has zero width or
// height, or when the engine cannot complete inference. There are no
// retries; the caller decides how to surface the failure.
func (d *Decoder) Decode(img image.Image) (*Result, error) {
	if img == nil {
		return nil, decodeErrorf("image is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, decodeErrorf("image is empty (%dx%d)", bounds.Dx(), bounds.Dy())
	}

	result, err := d.engine.Recognize(img)
	if err != nil {
		if _, ok := err.(*DecodeError); ok {
			return nil, err
		}
		return nil, wrapDecodeError("inference failed", err)
	}
	return result, nil
}

// EngineName reports the name of the underlying engine.
func (d *Decoder) EngineName() string {
	return d.engine.Name()
}
