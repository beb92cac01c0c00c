package monitor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/parsolve/parsolve/internal/decode"
)

// seqEngine returns a different text for every call, so tests can tell how
// many decodes actually ran.
type seqEngine struct {
	calls int
}

func (e *seqEngine) Recognize(img image.Image) (*decode.Result, error) {
	e.calls++
	return &decode.Result{Text: "solved", Confidence: 1, Engine: "fake"}, nil
}

func (e *seqEngine) Name() string { return "fake" }
func (e *seqEngine) Close() error { return nil }

func encodePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func runMonitor(t *testing.T, m *Monitor, payloads ...[]byte) {
	t.Helper()
	images := make(chan []byte, len(payloads))
	for _, p := range payloads {
		images <- p
	}
	close(images)

	if err := m.Run(context.Background(), images); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_SolvesNewImages(t *testing.T) {
	engine := &seqEngine{}
	var solved []string
	m := New(decode.NewDecoder(engine), func(r *decode.Result) {
		solved = append(solved, r.Text)
	})

	runMonitor(t, m,
		encodePNG(t, color.RGBA{255, 0, 0, 255}),
		encodePNG(t, color.RGBA{0, 255, 0, 255}),
	)

	if len(solved) != 2 {
		t.Fatalf("solutions: got %d, want 2", len(solved))
	}
	if engine.calls != 2 {
		t.Errorf("engine calls: got %d, want 2", engine.calls)
	}
}

func TestRun_DedupesIdenticalPayloads(t *testing.T) {
	engine := &seqEngine{}
	count := 0
	m := New(decode.NewDecoder(engine), func(*decode.Result) { count++ })

	same := encodePNG(t, color.RGBA{255, 0, 0, 255})
	runMonitor(t, m, same, same, same)

	if engine.calls != 1 {
		t.Errorf("engine calls: got %d, want 1 (identical payloads must dedupe)", engine.calls)
	}
	if count != 1 {
		t.Errorf("solutions: got %d, want 1", count)
	}
}

func TestRun_ResolvesAlternatingPayloads(t *testing.T) {
	// Dedupe only suppresses consecutive repeats; A, B, A decodes thrice.
	engine := &seqEngine{}
	m := New(decode.NewDecoder(engine), func(*decode.Result) {})

	a := encodePNG(t, color.RGBA{255, 0, 0, 255})
	b := encodePNG(t, color.RGBA{0, 0, 255, 255})
	runMonitor(t, m, a, b, a)

	if engine.calls != 3 {
		t.Errorf("engine calls: got %d, want 3", engine.calls)
	}
}

func TestRun_SkipsEmptyPayloads(t *testing.T) {
	engine := &seqEngine{}
	m := New(decode.NewDecoder(engine), func(*decode.Result) {})

	runMonitor(t, m, nil, []byte{})

	if engine.calls != 0 {
		t.Errorf("engine calls: got %d, want 0", engine.calls)
	}
}

func TestRun_BadPayloadReportsAndContinues(t *testing.T) {
	engine := &seqEngine{}
	var failures []error
	m := New(decode.NewDecoder(engine), func(*decode.Result) {})
	m.OnError = func(err error) { failures = append(failures, err) }

	runMonitor(t, m, []byte("not a png"), encodePNG(t, color.RGBA{255, 0, 0, 255}))

	if len(failures) != 1 {
		t.Fatalf("failures: got %d, want 1", len(failures))
	}
	if engine.calls != 1 {
		t.Errorf("engine calls: got %d, want 1 (loop must continue after a failure)", engine.calls)
	}
}

func TestRun_DecodeFailureNotRetried(t *testing.T) {
	failing := &failingEngine{}
	var failures []error
	m := New(decode.NewDecoder(failing), func(*decode.Result) {
		t.Error("OnSolve must not fire for a failed decode")
	})
	m.OnError = func(err error) { failures = append(failures, err) }

	payload := encodePNG(t, color.RGBA{255, 0, 0, 255})
	runMonitor(t, m, payload)

	if failing.calls != 1 {
		t.Errorf("engine calls: got %d, want 1 (no retries)", failing.calls)
	}
	if len(failures) != 1 {
		t.Fatalf("failures: got %d, want 1", len(failures))
	}
	var derr *decode.DecodeError
	if !errors.As(failures[0], &derr) {
		t.Errorf("failure type: got %T, want *decode.DecodeError", failures[0])
	}
}

type failingEngine struct {
	calls int
}

func (e *failingEngine) Recognize(image.Image) (*decode.Result, error) {
	e.calls++
	return nil, errors.New("inference broke")
}

func (e *failingEngine) Name() string { return "failing" }
func (e *failingEngine) Close() error { return nil }

func TestRun_StopsOnContextCancel(t *testing.T) {
	m := New(decode.NewDecoder(&seqEngine{}), func(*decode.Result) {})

	ctx, cancel := context.WithCancel(context.Background())
	images := make(chan []byte)

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx, images)
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
