package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/parsolve/parsolve/internal/capture"
	"github.com/parsolve/parsolve/internal/clipboard"
	"github.com/parsolve/parsolve/internal/decode"
	"github.com/parsolve/parsolve/internal/imaging"
	"github.com/parsolve/parsolve/internal/monitor"
	"github.com/parsolve/parsolve/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("parsolve %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	// stdout carries results (and the MCP protocol in serve mode); all
	// logging goes to stderr.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := loadConfig()
	if cfg.debug {
		log.Printf("parsolve %s (built %s, commit %s), engine=%s model=%s",
			Version, BuildTime, GitCommit, cfg.engine, cfg.modelPath)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize solver: %v", err)
	}
	defer engine.Close()
	decoder := decode.NewDecoder(engine)

	switch os.Args[1] {
	case "solve":
		err = runSolve(decoder, os.Args[2:])
	case "clipboard":
		err = runClipboard(decoder)
	case "watch":
		err = runWatch(decoder)
	case "capture":
		err = runCapture(decoder, os.Args[2:])
	case "serve":
		err = server.New(decoder).Run(os.Stdin, os.Stdout)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func printUsage() {
	fmt.Println("parsolve - CAPTCHA solver")
	fmt.Println()
	fmt.Println("Usage: parsolve <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  solve FILE...    Decode image files and print the text")
	fmt.Println("  clipboard        Decode the image on the clipboard")
	fmt.Println("  watch            Auto-solve every image copied to the clipboard")
	fmt.Println("  capture X Y W H  Grab a screen region and decode it")
	fmt.Println("  serve            Run the MCP stdio server")
	fmt.Println("  version          Print version information")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PARSOLVE_MODEL          Path to the .onnx model (default captcha.onnx)")
	fmt.Println("  PARSOLVE_ENGINE         onnx or tesseract (default onnx)")
	fmt.Println("  PARSOLVE_CHARSET        Override the model vocabulary")
	fmt.Println("  PARSOLVE_ONNX_LIB       Path to the ONNX Runtime shared library")
	fmt.Println("  PARSOLVE_LOG_LEVEL      Set to debug for verbose logging")
	fmt.Println()
	fmt.Println("A .env file in the working directory is loaded at startup.")
}

// runSolve decodes one or more image files. With -copy, the first solution
// is also placed on the clipboard, matching the tool's copy-back behavior
// on the interactive surfaces.
func runSolve(decoder *decode.Decoder, args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	copyFirst := fs.Bool("copy", false, "copy the first solution to the clipboard")
	enhance := fs.Bool("enhance", false, "apply the contrast/sharpen cleanup chain first")
	color := fs.String("color", "", "keep only ink of this color before decoding")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("solve: no image files given")
	}

	for i, path := range fs.Args() {
		img, err := imaging.LoadFile(path)
		if err != nil {
			return err
		}
		img, err = prepare(img, *enhance, *color)
		if err != nil {
			return err
		}
		result, err := decoder.Decode(img)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Println(result.Text)

		if *copyFirst && i == 0 {
			if err := clipboard.Init(); err != nil {
				log.Printf("Solution not copied: %v", err)
			} else {
				clipboard.WriteText(result.Text)
			}
		}
	}
	return nil
}

// runClipboard decodes the image currently on the clipboard and copies the
// solution back as text.
func runClipboard(decoder *decode.Decoder) error {
	if err := clipboard.Init(); err != nil {
		return err
	}
	img, err := clipboard.ReadImage()
	if err != nil {
		return err
	}
	result, err := decoder.Decode(img)
	if err != nil {
		return err
	}
	fmt.Println(result.Text)
	clipboard.WriteText(result.Text)
	return nil
}

// runWatch runs the auto-monitor loop until interrupted. Each new clipboard
// image is decoded and the solution copied back, ready to paste.
func runWatch(decoder *decode.Decoder) error {
	if err := clipboard.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(decoder, func(result *decode.Result) {
		clipboard.WriteText(result.Text)
		log.Printf("Solved: %s (confidence %.2f)", result.Text, result.Confidence)
	})
	mon.OnError = func(err error) {
		log.Printf("Decode failed: %v", err)
	}

	log.Printf("Watching clipboard for CAPTCHA images (Ctrl-C to stop)")
	err := mon.Run(ctx, clipboard.WatchImages(ctx))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runCapture grabs a screen region, trims it to the glyph band and decodes
// it. The solution is copied to the clipboard when possible.
func runCapture(decoder *decode.Decoder, args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	noTrim := fs.Bool("no-trim", false, "decode the raw region without trimming margins")
	enhance := fs.Bool("enhance", false, "apply the contrast/sharpen cleanup chain first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 4 {
		return fmt.Errorf("capture: need exactly 4 arguments: X Y W H")
	}

	coords := make([]int, 4)
	for i, arg := range fs.Args() {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("capture: bad coordinate %q: %w", arg, err)
		}
		coords[i] = n
	}

	img, err := capture.Region(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return err
	}

	if !*noTrim {
		// Drag-selected rectangles are sloppy; crop to the ink band.
		trimmed, _, err := imaging.TrimToInk(img, 4)
		if err == nil {
			img = trimmed
		}
	}
	img, err = prepare(img, *enhance, "")
	if err != nil {
		return err
	}

	result, err := decoder.Decode(img)
	if err != nil {
		return err
	}
	fmt.Println(result.Text)

	if err := clipboard.Init(); err == nil {
		clipboard.WriteText(result.Text)
	}
	return nil
}

// prepare applies the optional pre-decode cleanup passes.
func prepare(img image.Image, enhance bool, color string) (image.Image, error) {
	var err error
	if color != "" {
		img, err = imaging.FilterColor(img, color)
		if err != nil {
			return nil, err
		}
	}
	if enhance {
		img = imaging.Enhance(img)
	}
	return img, nil
}
