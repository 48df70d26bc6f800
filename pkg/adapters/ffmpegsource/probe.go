package ffmpegsource

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/cliprender/pkg/ports"
)

// probeOutput mirrors the ffprobe JSON we consume.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// probe runs ffprobe and reduces its output to MediaInfo.
func probe(ctx context.Context, ffprobePath, path string) (ports.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) (ports.MediaInfo, error) {
	var po probeOutput
	if err := json.Unmarshal(out, &po); err != nil {
		return ports.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := ports.MediaInfo{}
	for _, s := range po.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width = s.Width
				info.Height = s.Height
				info.FPS = parseRate(s.AvgFrameRate)
				if info.FPS <= 0 {
					info.FPS = parseRate(s.RFrameRate)
				}
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if d, err := strconv.ParseFloat(po.Format.Duration, 64); err == nil {
		info.DurationSec = d
	}

	if info.Width <= 0 || info.Height <= 0 {
		return ports.MediaInfo{}, fmt.Errorf("no video stream found")
	}
	return info, nil
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(r string) float64 {
	if r == "" || r == "0/0" {
		return 0
	}
	parts := strings.SplitN(r, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
