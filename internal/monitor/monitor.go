// Package monitor implements the clipboard auto-monitor: a single loop that
// consumes new clipboard images, decodes them one at a time, and hands each
// solution to a sink (normally a clipboard text write).
//
// The loop is the only consumer of the image channel, so at most one decode
// is ever in flight; there is no other concurrency coordination. Identical
// consecutive payloads are deduplicated so re-copies of the same CAPTCHA do
// not trigger redundant inference.
package monitor

import (
	"context"
	"crypto/sha256"

	"github.com/parsolve/parsolve/internal/decode"
	"github.com/parsolve/parsolve/internal/imaging"
)

// Monitor drives the auto-monitor loop.
type Monitor struct {
	decoder *decode.Decoder

	// OnSolve receives every successful decode. Required.
	OnSolve func(*decode.Result)

	// OnError receives decode and payload failures. The loop keeps
	// running after a failure; a bad clipboard image is not fatal.
	// Optional.
	OnError func(error)

	lastDigest [sha256.Size]byte
	seen       bool
}

// New builds a Monitor around the given decoder and solution sink.
func New(decoder *decode.Decoder, onSolve func(*decode.Result)) *Monitor {
	return &Monitor{
		decoder: decoder,
		OnSolve: onSolve,
	}
}

// Run consumes image payloads (PNG bytes, as delivered by the clipboard
// watch channel) until ctx is cancelled or the channel closes. It never
// returns a decode failure; those go to OnError and the loop continues.
func (m *Monitor) Run(ctx context.Context, images <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-images:
			if !ok {
				return nil
			}
			m.handle(payload)
		}
	}
}

func (m *Monitor) handle(payload []byte) {
	if len(payload) == 0 {
		return
	}

	digest := sha256.Sum256(payload)
	if m.seen && digest == m.lastDigest {
		return
	}
	m.lastDigest = digest
	m.seen = true

	img, err := imaging.Decode(payload)
	if err != nil {
		m.reportError(err)
		return
	}

	result, err := m.decoder.Decode(img)
	if err != nil {
		// Surfaced once, never retried.
		m.reportError(err)
		return
	}

	m.OnSolve(result)
}

func (m *Monitor) reportError(err error) {
	if m.OnError != nil {
		m.OnError(err)
	}
}
