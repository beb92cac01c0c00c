package decode

import (
	"fmt"
	"math"
)

// DefaultCharset is the vocabulary of the bundled model: digits, lowercase,
// uppercase, then the printable ASCII punctuation characters, in model order.
// The order matters; class index i+1 maps to the i-th rune of this string.
const DefaultCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Tokenizer converts per-position model output scores into a text string.
//
// The vocabulary layout follows the model contract: class 0 is the
// end-of-sequence token, classes 1..len(charset) are the characters, and the
// two trailing classes are the begin-of-sequence and padding tokens used
// during training. Decoding stops at the first end-of-sequence prediction;
// begin/padding predictions are bookkeeping tokens and never emitted.
type Tokenizer struct {
	charset []rune
	eosID   int
	bosID   int
	padID   int
}

// NewTokenizer builds a Tokenizer for the given character set.
//
// The charset must be non-empty and list characters in the exact order the
// model was trained with.
func NewTokenizer(charset string) (*Tokenizer, error) {
	runes := []rune(charset)
	if len(runes) == 0 {
		return nil, fmt.Errorf("charset must not be empty")
	}
	seen := make(map[rune]bool, len(runes))
	for _, r := range runes {
		if seen[r] {
			return nil, fmt.Errorf("charset contains duplicate character %q", r)
		}
		seen[r] = true
	}
	return &Tokenizer{
		charset: runes,
		eosID:   0,
		bosID:   len(runes) + 1,
		padID:   len(runes) + 2,
	}, nil
}

// VocabSize returns the number of output classes the model must produce per
// position: the charset plus the three special tokens.
func (t *Tokenizer) VocabSize() int {
	return len(t.charset) + 3
}

// Decode greedily converts raw per-position scores into text.
//
// scores is indexed [position][class] and holds unnormalized logits (softmax
// is applied internally, so pre-normalized probabilities work too). Each
// position contributes its argmax class; decoding stops at the first
// end-of-sequence prediction. The returned confidence is the mean softmax
// probability of the chosen tokens, including the terminating one.
func (t *Tokenizer) Decode(scores [][]float32) (string, float64, error) {
	if len(scores) == 0 {
		return "", 0, fmt.Errorf("no output positions to decode")
	}

	var out []rune
	var probSum float64
	var probCount int

	for pos, row := range scores {
		if len(row) != t.VocabSize() {
			return "", 0, fmt.Errorf("position %d has %d classes, vocabulary needs %d",
				pos, len(row), t.VocabSize())
		}
		id, prob := argmaxSoftmax(row)
		if id == t.eosID {
			probSum += prob
			probCount++
			break
		}
		if id == t.bosID || id == t.padID {
			continue
		}
		out = append(out, t.charset[id-1])
		probSum += prob
		probCount++
	}

	confidence := 0.0
	if probCount > 0 {
		confidence = probSum / float64(probCount)
	}
	return string(out), confidence, nil
}

// argmaxSoftmax returns the index of the largest score and its softmax
// probability. The max is subtracted before exponentiation for numerical
// stability.
func argmaxSoftmax(row []float32) (int, float64) {
	maxIdx := 0
	maxVal := row[0]
	for i, v := range row {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}

	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v - maxVal))
	}
	// exp(max - max) == 1
	return maxIdx, 1.0 / sum
}
