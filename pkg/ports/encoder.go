package ports

import (
	"image"
)

// Format identifies a container/codec pair the environment may support.
type Format struct {
	Container string // "mp4" or "webm"
	Codec     string // "h264", "vp8"
	MIME      string // declared media type of the resulting artifact
}

// Extension returns the file extension matching the container.
func (f Format) Extension() string {
	if f.Container == "" {
		return ".bin"
	}
	return "." + f.Container
}

// String returns a short identifier such as "mp4/h264".
func (f Format) String() string {
	return f.Container + "/" + f.Codec
}

// EncodeSpec configures one encoding session.
type EncodeSpec struct {
	Format  Format
	Width   int
	Height  int
	FPS     float64
	Quality int         // CRF 0-63, lower is higher quality
	Bitrate int         // target bitrate in kbps, 0 uses the codec default
	Audio   *AudioTrack // optional audio attachment; nil encodes video-only
}

// StreamEncoder consumes live composited frames and produces one encoded
// artifact. Frames must be fed in timestamp order; the internal chunk buffer
// is append-only and owned by the caller only after End returns.
type StreamEncoder interface {
	// Begin initializes the encoder for the given session.
	Begin(spec EncodeSpec) error

	// EncodeFrame encodes a single frame at the given timestamp relative
	// to the start of the session.
	EncodeFrame(img image.Image, timestampMs int) error

	// End flushes the encoder and returns the finished container bytes.
	End() ([]byte, error)

	// Abort discards the session and its intermediate resources. It is
	// idempotent and safe to call after End.
	Abort()
}

// Canonical formats in the renderer's preference order.
var (
	FormatMP4H264  = Format{Container: "mp4", Codec: "h264", MIME: "video/mp4"}
	FormatWebMH264 = Format{Container: "webm", Codec: "h264", MIME: "video/webm;codecs=h264"}
	FormatWebMVP8  = Format{Container: "webm", Codec: "vp8", MIME: "video/webm"}
)

// FormatProbe reports which output formats the runtime can produce.
// Capability can vary per session, so callers query once per render
// operation and never cache results process-wide.
type FormatProbe interface {
	// Supports reports whether the runtime can encode the given format.
	Supports(f Format) bool

	// Fallback returns a format the runtime is guaranteed to produce,
	// or ok=false when not even a fallback is available.
	Fallback() (f Format, ok bool)
}

// ArtifactInfo is what an ArtifactProber can learn from finished bytes.
type ArtifactInfo struct {
	Codec       string
	DurationSec float64
}

// ArtifactProber inspects an encoded artifact's container.
type ArtifactProber interface {
	Inspect(data []byte) (ArtifactInfo, error)
}
