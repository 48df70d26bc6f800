// Package mp4probe inspects finished MP4 artifacts to confirm what was
// actually produced: the video codec and the container duration.
package mp4probe

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/cliprender/pkg/ports"
)

// Prober implements ports.ArtifactProber for MP4 containers.
type Prober struct{}

// New creates a Prober.
func New() *Prober {
	return &Prober{}
}

// Inspect parses the artifact and reports its codec and duration.
func (p *Prober) Inspect(data []byte) (ports.ArtifactInfo, error) {
	mp4File, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return ports.ArtifactInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	var info ports.ArtifactInfo

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return ports.ArtifactInfo{}, fmt.Errorf("no moov box found")
	}

	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		info.DurationSec = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
	}

	for _, trak := range moov.Traks {
		codec := videoCodec(trak)
		if codec != "" {
			info.Codec = codec
			break
		}
	}
	if info.Codec == "" {
		return ports.ArtifactInfo{}, fmt.Errorf("no video track found")
	}

	return info, nil
}

func videoCodec(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return ""
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ""
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "vp08":
			return "vp8"
		case "av01":
			return "av1"
		}
	}
	return ""
}

var _ ports.ArtifactProber = (*Prober)(nil)
