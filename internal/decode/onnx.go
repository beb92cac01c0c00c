package decode

import (
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/parsolve/parsolve/internal/imaging"
)

// ONNXConfig configures the ONNX engine. Zero values fall back to the
// bundled model's contract: 32x128 input and the 94-character printable
// ASCII charset.
type ONNXConfig struct {
	// ModelPath is the path to the pre-trained .onnx artifact. Required.
	ModelPath string

	// Charset overrides the model vocabulary for custom models.
	Charset string

	// InputHeight and InputWidth override the model's fixed input size.
	InputHeight int
	InputWidth  int

	// LibraryPath points at the ONNX Runtime shared library. Empty uses
	// the platform default search path.
	LibraryPath string
}

func (c *ONNXConfig) applyDefaults() {
	if c.Charset == "" {
		c.Charset = DefaultCharset
	}
	if c.InputHeight == 0 {
		c.InputHeight = 32
	}
	if c.InputWidth == 0 {
		c.InputWidth = 128
	}
}

// session abstracts the runtime call behind the ONNX engine so tests can
// substitute a fake that returns canned scores.
type session interface {
	// run executes one forward pass. input is the NCHW tensor data with
	// the given shape; the result is per-position class scores.
	run(input []float32, shape []int64) ([][]float32, error)
	destroy() error
}

// ONNXEngine runs CAPTCHA recognition through a pre-trained ONNX model.
//
// The model is loaded once at construction and treated as read-only for the
// engine's lifetime. Calls must be sequential; the engine reuses no
// per-call state but ONNX Runtime sessions are not guaranteed re-entrant
// under this binding.
type ONNXEngine struct {
	sess      session
	tokenizer *Tokenizer
	height    int
	width     int
	modelPath string
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// NewONNXEngine loads the model artifact and prepares an inference session.
//
// A missing or unreadable model file fails here, before any decode is
// attempted, so startup can abort with a clear message.
func NewONNXEngine(cfg ONNXConfig) (*ONNXEngine, error) {
	cfg.applyDefaults()

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path not configured")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file %s is not readable: %w", cfg.ModelPath, err)
	}

	tokenizer, err := NewTokenizer(cfg.Charset)
	if err != nil {
		return nil, fmt.Errorf("invalid charset: %w", err)
	}

	sess, err := newORTSession(cfg)
	if err != nil {
		return nil, err
	}

	return &ONNXEngine{
		sess:      sess,
		tokenizer: tokenizer,
		height:    cfg.InputHeight,
		width:     cfg.InputWidth,
		modelPath: cfg.ModelPath,
	}, nil
}

// Recognize preprocesses img into the model's input tensor, runs one
// forward pass and decodes the output into text.
func (e *ONNXEngine) Recognize(img image.Image) (*Result, error) {
	tensor, err := imaging.ToTensor(img, e.height, e.width)
	if err != nil {
		return nil, wrapDecodeError("preprocessing failed", err)
	}

	scores, err := e.sess.run(tensor, []int64{1, 3, int64(e.height), int64(e.width)})
	if err != nil {
		return nil, wrapDecodeError("inference failed", err)
	}

	text, confidence, err := e.tokenizer.Decode(scores)
	if err != nil {
		return nil, wrapDecodeError("sequence decoding failed", err)
	}

	return &Result{
		Text:       text,
		Confidence: confidence,
		Engine:     e.Name(),
	}, nil
}

// Name reports "onnx".
func (e *ONNXEngine) Name() string {
	return "onnx"
}

// ModelPath reports the loaded artifact's path.
func (e *ONNXEngine) ModelPath() string {
	return e.modelPath
}

// Close releases the inference session.
func (e *ONNXEngine) Close() error {
	return e.sess.destroy()
}

// ortSession wraps a real ONNX Runtime session.
type ortSession struct {
	sess       *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

func newORTSession(cfg ONNXConfig) (*ortSession, error) {
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", ortInitErr)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata from %s: %w", cfg.ModelPath, err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("model %s declares %d inputs, expected exactly 1", cfg.ModelPath, len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no outputs", cfg.ModelPath)
	}

	// The configured tensor shape must match the model's declared input
	// shape exactly; a mismatch fails now instead of producing garbage at
	// decode time. Negative dimensions are dynamic and accept any size.
	want := []int64{1, 3, int64(cfg.InputHeight), int64(cfg.InputWidth)}
	declared := inputs[0].Dimensions
	if len(declared) != len(want) {
		return nil, fmt.Errorf("model input %s has rank %d, expected 4 (NCHW)",
			inputs[0].Name, len(declared))
	}
	for i, d := range declared {
		if d > 0 && d != want[i] {
			return nil, fmt.Errorf("model input %s dimension %d is %d, configured pipeline produces %d",
				inputs[0].Name, i, d, want[i])
		}
	}

	sess, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference session for %s: %w", cfg.ModelPath, err)
	}

	return &ortSession{
		sess:       sess,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

func (s *ortSession) run(input []float32, shape []int64) ([][]float32, error) {
	in, err := ort.NewTensor(ort.NewShape(shape...), input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	outputs := []ort.Value{nil}
	if err := s.sess.Run([]ort.Value{in}, outputs); err != nil {
		return nil, fmt.Errorf("inference run failed: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer out.Destroy()

	return reshapeScores(out.GetShape(), out.GetData())
}

func (s *ortSession) destroy() error {
	return s.sess.Destroy()
}

// reshapeScores converts the flat model output into per-position score rows.
// Accepts [1, T, V] (batched) or [T, V] output shapes.
func reshapeScores(shape []int64, data []float32) ([][]float32, error) {
	var positions, vocab int64
	switch len(shape) {
	case 3:
		if shape[0] != 1 {
			return nil, fmt.Errorf("unexpected output batch size %d", shape[0])
		}
		positions, vocab = shape[1], shape[2]
	case 2:
		positions, vocab = shape[0], shape[1]
	default:
		return nil, fmt.Errorf("unexpected output rank %d", len(shape))
	}
	if positions <= 0 || vocab <= 0 {
		return nil, fmt.Errorf("degenerate output shape %v", shape)
	}
	if int64(len(data)) != positions*vocab {
		return nil, fmt.Errorf("output data has %d values, shape %v needs %d",
			len(data), shape, positions*vocab)
	}

	scores := make([][]float32, positions)
	for t := int64(0); t < positions; t++ {
		scores[t] = data[t*vocab : (t+1)*vocab]
	}
	return scores, nil
}
