package decode

import "fmt"

// DecodeError reports that a decode attempt failed: the input image was
// empty or malformed, preprocessing could not produce the model's input
// tensor, or inference itself failed.
//
// Callers can detect it with errors.As:
//
//	var derr *decode.DecodeError
//	if errors.As(err, &derr) { ... }
type DecodeError struct {
	// Reason is a short human-readable description of the failure.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// decodeErrorf builds a *DecodeError with a formatted reason and no cause.
func decodeErrorf(format string, args ...interface{}) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// wrapDecodeError builds a *DecodeError around an underlying cause.
func wrapDecodeError(reason string, err error) *DecodeError {
	return &DecodeError{Reason: reason, Err: err}
}
