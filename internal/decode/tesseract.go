package decode

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig configures the fallback engine.
type TesseractConfig struct {
	// Charset restricts recognition to the CAPTCHA alphabet via
	// Tesseract's character whitelist. Defaults to DefaultCharset.
	Charset string

	// Language is the Tesseract language code. Defaults to "eng".
	Language string
}

// TesseractEngine recognizes CAPTCHAs with the Tesseract OCR engine.
//
// It is the fallback for hosts without an ONNX Runtime shared library.
// Tesseract is a general document OCR engine, not a CAPTCHA model, so
// accuracy on heavily distorted text is lower than the ONNX engine's; the
// single-line page segmentation mode and charset whitelist recover some of
// the gap.
//
// Tesseract must be installed on the system together with the language
// data for the configured language.
type TesseractEngine struct {
	charset  string
	language string
}

// NewTesseractEngine prepares a Tesseract-backed engine.
func NewTesseractEngine(cfg TesseractConfig) (*TesseractEngine, error) {
	if cfg.Charset == "" {
		cfg.Charset = DefaultCharset
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &TesseractEngine{
		charset:  cfg.Charset,
		language: cfg.Language,
	}, nil
}

// Recognize runs single-line OCR over the image. Whitespace is stripped
// from the result; CAPTCHA answers never contain spaces.
func (e *TesseractEngine) Recognize(img image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, wrapDecodeError("failed to encode image for OCR", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, wrapDecodeError("failed to set OCR language", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return nil, wrapDecodeError("failed to set page segmentation mode", err)
	}
	if err := client.SetWhitelist(e.charset); err != nil {
		return nil, wrapDecodeError("failed to set character whitelist", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, wrapDecodeError("failed to set OCR image", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, wrapDecodeError("OCR failed", err)
	}

	cleaned := stripWhitespace(text)
	if cleaned == "" {
		return nil, decodeErrorf("no text recognized")
	}

	return &Result{
		Text:       cleaned,
		Confidence: wordConfidence(client),
		Engine:     e.Name(),
	}, nil
}

// Name reports "tesseract".
func (e *TesseractEngine) Name() string {
	return "tesseract"
}

// Close is a no-op; clients are created per call.
func (e *TesseractEngine) Close() error {
	return nil
}

// Version returns the installed Tesseract version string.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// wordConfidence averages Tesseract's word-level confidence scores into the
// 0-1 range. Returns 0 when boxes are unavailable.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, box := range boxes {
		sum += float64(box.Confidence)
	}
	return sum / float64(len(boxes)) / 100.0
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

var _ Engine = (*TesseractEngine)(nil)
var _ Engine = (*ONNXEngine)(nil)
