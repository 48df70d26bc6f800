// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"image"
)

// MediaInfo describes a decodable source once its metadata is known.
type MediaInfo struct {
	Width       int
	Height      int
	DurationSec float64
	FPS         float64
	HasAudio    bool
}

// VideoFrame is a single decoded frame with its playback timestamp.
type VideoFrame struct {
	Image        image.Image
	TimestampSec float64
}

// MediaSource is a borrowed handle to a decodable video resource. A render
// operation uses it exclusively for its own duration and must not retain it
// afterward. Callers must not run concurrent renders against one handle.
type MediaSource interface {
	// Info blocks until the source metadata (dimensions, duration) is
	// available, or fails if it never becomes available.
	Info(ctx context.Context) (MediaInfo, error)

	// Seek positions playback at posSec and returns the position the
	// decoder actually landed on. Seeks are not always exact.
	Seek(ctx context.Context, posSec float64) (float64, error)

	// Play starts paced frame delivery from the current position. The
	// returned channel closes when the source ends or playback is paused.
	Play(ctx context.Context) (<-chan VideoFrame, error)

	// Position reports the current playback position in seconds. It is
	// monotonic while playing.
	Position() float64

	// Pause stops frame delivery without releasing the source.
	Pause() error

	// Location returns the underlying resource locator so that
	// collaborators such as the audio router can open their own tap on it.
	Location() string

	// Close releases decoder resources.
	Close() error
}
