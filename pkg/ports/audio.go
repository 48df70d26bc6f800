package ports

import (
	"context"
)

// AudioTrack is a capturable audio stream tapped from a media source,
// ready for attachment to an outgoing encode session.
type AudioTrack struct {
	Path        string // intermediate PCM/WAV resource
	SampleRate  int
	Channels    int
	DurationSec float64
}

// AudioRouter taps a source's decoded audio for a clip window into a
// capturable track without altering playback. Routing must only be
// attempted after the source metadata is available.
type AudioRouter interface {
	// Route extracts the [startSec, endSec) audio window from the origin
	// into a capturable track.
	Route(ctx context.Context, origin string, startSec, endSec float64) (*AudioTrack, error)

	// Release removes the intermediate resources behind a routed track.
	// Releasing a nil track is a no-op.
	Release(track *AudioTrack)
}
