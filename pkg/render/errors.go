package render

import (
	"errors"
	"fmt"
)

// ErrEncoderUnavailable is returned when no output format could be
// negotiated, even after trying the fallback. Not retried.
var ErrEncoderUnavailable = errors.New("render: no output format available")

// ErrCancelled is returned when the operation's context is cancelled
// before the render reaches a natural terminal state.
var ErrCancelled = errors.New("render: operation cancelled")

// SeekPrecisionError reports a seek that landed outside the accepted
// tolerance of the requested clip start. The decode source state is
// unreliable afterward, so the render is not retried.
type SeekPrecisionError struct {
	RequestedSec float64
	LandedSec    float64
	ToleranceSec float64
}

func (e *SeekPrecisionError) Error() string {
	return fmt.Sprintf("render: seek landed at %.3fs, requested %.3fs (tolerance %.3fs)",
		e.LandedSec, e.RequestedSec, e.ToleranceSec)
}

// DecodeError wraps a fatal source load or playback failure. All acquired
// resources are released before it reaches the caller.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("render: source decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
