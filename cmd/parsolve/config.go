package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/parsolve/parsolve/internal/decode"
)

// config collects the environment-driven settings. A .env file in the
// working directory is merged in first; real environment variables win.
type config struct {
	modelPath   string
	charset     string
	engine      string
	onnxLibPath string
	inputHeight int
	inputWidth  int
	tessLang    string
	debug       bool
}

func loadConfig() config {
	// Missing .env is fine; the environment alone is a valid setup.
	_ = godotenv.Load()

	return config{
		modelPath:   envOr("PARSOLVE_MODEL", "captcha.onnx"),
		charset:     os.Getenv("PARSOLVE_CHARSET"),
		engine:      envOr("PARSOLVE_ENGINE", "onnx"),
		onnxLibPath: os.Getenv("PARSOLVE_ONNX_LIB"),
		inputHeight: envIntOr("PARSOLVE_INPUT_HEIGHT", 32),
		inputWidth:  envIntOr("PARSOLVE_INPUT_WIDTH", 128),
		tessLang:    envOr("PARSOLVE_TESSERACT_LANG", "eng"),
		debug:       os.Getenv("PARSOLVE_LOG_LEVEL") == "debug",
	}
}

// newEngine builds the configured recognition engine. The model artifact is
// validated here, so a missing file aborts startup before any decode.
func newEngine(cfg config) (decode.Engine, error) {
	switch cfg.engine {
	case "onnx":
		return decode.NewONNXEngine(decode.ONNXConfig{
			ModelPath:   cfg.modelPath,
			Charset:     cfg.charset,
			InputHeight: cfg.inputHeight,
			InputWidth:  cfg.inputWidth,
			LibraryPath: cfg.onnxLibPath,
		})
	case "tesseract":
		return decode.NewTesseractEngine(decode.TesseractConfig{
			Charset:  cfg.charset,
			Language: cfg.tessLang,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q (want onnx or tesseract)", cfg.engine)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
