// Package decode implements the CAPTCHA decode pipeline: image validation,
// preprocessing to the model's input tensor, a single forward inference pass,
// and sequence decoding of the output into text.
//
// The entry point is Decoder, which validates input images and delegates
// recognition to an Engine. Two engines are provided:
//
//   - ONNXEngine: runs a pre-trained scene-text-recognition model through
//     ONNX Runtime. This is the primary engine and matches the model artifact
//     the tool ships with (32x128 input, 94-character printable-ASCII
//     vocabulary).
//   - TesseractEngine: a fallback built on the Tesseract OCR engine for hosts
//     without an ONNX Runtime shared library.
//
// Engines are dependency-injected into Decoder, so tests can substitute a
// fake engine without a model artifact on disk.
//
// # Error Handling
//
// All recognition failures surface as *DecodeError, detectable with
// errors.As. An empty or zero-dimension image, a tensor/model shape mismatch,
// and an inference failure all produce a DecodeError rather than a partial or
// garbage result. A missing model artifact is reported at engine construction
// time, before any decode is attempted.
//
// # Determinism
//
// Decoding is deterministic: the same image through the same engine yields
// the same string. There is no sampling, no retry, and no batching; each call
// is a single-shot synchronous inference.
package decode
