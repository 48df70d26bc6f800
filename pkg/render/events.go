package render

import (
	"github.com/user/cliprender/pkg/ports"
)

// eventKind identifies a suspension point the controller reacts to. The
// state machine only ever advances in response to one of these; nothing
// polls.
type eventKind int

const (
	// evStart is the render invocation.
	evStart eventKind = iota
	// evSeekDone reports the position the source landed on.
	evSeekDone
	// evSeekVerified confirms the landed position is within tolerance.
	evSeekVerified
	// evPrimed reports the encoder started and playback began.
	evPrimed
	// evFrame delivers one decoded frame from the playback clock.
	evFrame
	// evBoundary reports the playback position reached the clip end.
	evBoundary
	// evSourceEnded reports the source naturally stopped playing.
	evSourceEnded
	// evFlushed reports the encoder stop-flush completed, with the bytes.
	evFlushed
	// evError carries a fatal failure from any collaborator.
	evError
	// evCancel reports the caller's context was cancelled.
	evCancel
)

func (k eventKind) String() string {
	switch k {
	case evStart:
		return "start"
	case evSeekDone:
		return "seek-done"
	case evSeekVerified:
		return "seek-verified"
	case evPrimed:
		return "primed"
	case evFrame:
		return "frame"
	case evBoundary:
		return "boundary"
	case evSourceEnded:
		return "source-ended"
	case evFlushed:
		return "flushed"
	case evError:
		return "error"
	case evCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// event is one message on the controller's queue.
type event struct {
	kind  eventKind
	frame ports.VideoFrame // evFrame
	pos   float64          // evSeekDone, evSourceEnded
	data  []byte           // evFlushed
	err   error            // evError
}
