package render

// EncodedArtifact is the finished clip: an immutable byte buffer plus its
// declared media type. It is created only on successful completion and
// ownership transfers to the caller.
type EncodedArtifact struct {
	Data        []byte
	MIME        string
	FileName    string
	DurationSec float64 // probed from the container when possible, else the clip length
}

// Size returns the artifact size in bytes.
func (a EncodedArtifact) Size() int64 {
	return int64(len(a.Data))
}
