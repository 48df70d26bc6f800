// Package formatprobe answers format capability questions by querying the
// local ffmpeg's encoder list. Capability is queried per render and never
// cached process-wide, since the environment can change between sessions.
package formatprobe

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/user/cliprender/pkg/adapters/ffbin"
	"github.com/user/cliprender/pkg/ports"
)

// codec name to ffmpeg encoder name
var encoderNames = map[string]string{
	"h264": "libx264",
	"vp8":  "libvpx",
}

// FFmpegProbe implements ports.FormatProbe against an ffmpeg binary.
type FFmpegProbe struct {
	ffmpegPath string

	// run is swappable for tests.
	run func(path string) ([]byte, error)
}

// New creates an FFmpegProbe. An empty path resolves via the usual
// lookup order.
func New(ffmpegPath string) *FFmpegProbe {
	return &FFmpegProbe{
		ffmpegPath: ffmpegPath,
		run:        runEncoderList,
	}
}

func runEncoderList(path string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.Command(path, "-hide_banner", "-encoders")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Supports reports whether the local ffmpeg can produce the format.
func (p *FFmpegProbe) Supports(f ports.Format) bool {
	name, ok := encoderNames[f.Codec]
	if !ok {
		return false
	}
	path, err := ffbin.FindFFmpeg(p.ffmpegPath)
	if err != nil {
		return false
	}
	out, err := p.run(path)
	if err != nil {
		return false
	}
	return hasEncoder(out, name)
}

// Fallback returns the baseline WebM VP8 format when ffmpeg exists at
// all, mirroring the lowest capability tier.
func (p *FFmpegProbe) Fallback() (ports.Format, bool) {
	if _, err := ffbin.FindFFmpeg(p.ffmpegPath); err != nil {
		return ports.Format{}, false
	}
	return ports.FormatWebMVP8, true
}

// hasEncoder scans `ffmpeg -encoders` output for an encoder name. Lines
// look like " V....D libx264  libx264 H.264 ...", so match the second
// field exactly rather than substring-searching the whole output.
func hasEncoder(out []byte, name string) bool {
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

var _ ports.FormatProbe = (*FFmpegProbe)(nil)
