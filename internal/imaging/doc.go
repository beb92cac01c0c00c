// Package imaging provides the image handling side of the CAPTCHA pipeline:
// loading and caching source images, converting them to the model's input
// tensor, and the optional cleanup passes (margin trimming, enhancement,
// color filtering) applied before recognition.
//
// All operations treat images as immutable: every transform returns a new
// image and never mutates its input. Coordinates are 0-based with (0,0) at
// the top-left corner.
//
// # Tensor Layout
//
// ToTensor produces the fixed NCHW float32 layout the bundled model expects:
// batch 1, 3 RGB channels, rows then columns, each value normalized from
// [0,255] to [-1,1] ((v/255 - 0.5) / 0.5). The resize uses Catmull-Rom
// resampling, matching the bicubic interpolation the model was trained with.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The stateless transforms can be
// called concurrently on different images.
package imaging
