package ffmpegencoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/user/cliprender/pkg/adapters/ffbin"
	"github.com/user/cliprender/pkg/ports"
)

const (
	routedSampleRate = 44100
	routedChannels   = 2
)

// AudioRouter extracts the clip's audio window from the origin file into
// an intermediate PCM WAV that the encoder muxes as a second input.
type AudioRouter struct {
	ffmpegPath string
	logger     ports.Logger
}

// NewAudioRouter creates an AudioRouter.
func NewAudioRouter(opts Options) *AudioRouter {
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	return &AudioRouter{ffmpegPath: opts.FFmpegPath, logger: log.WithComponent("audio")}
}

// Route taps the [startSec, endSec) window of origin's audio into a temp
// WAV file and returns a track describing it.
func (r *AudioRouter) Route(ctx context.Context, origin string, startSec, endSec float64) (*ports.AudioTrack, error) {
	if endSec <= startSec {
		return nil, fmt.Errorf("audio window %.3f-%.3f is empty", startSec, endSec)
	}

	path, err := ffbin.FindFFmpeg(r.ffmpegPath)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "cliprender_audio_*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp audio: %w", err)
	}
	out := tmp.Name()
	tmp.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path,
		"-y",
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", startSec),
		"-to", fmt.Sprintf("%.3f", endSec),
		"-i", origin,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", routedSampleRate),
		"-ac", fmt.Sprintf("%d", routedChannels),
		out,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return nil, fmt.Errorf("route audio: %w\nstderr: %s", err, stderr.String())
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		os.Remove(out)
		return nil, fmt.Errorf("routed audio is empty")
	}

	r.logger.Debug("Routed %.3fs of audio to %s", endSec-startSec, out)
	return &ports.AudioTrack{
		Path:        out,
		SampleRate:  routedSampleRate,
		Channels:    routedChannels,
		DurationSec: endSec - startSec,
	}, nil
}

// Release removes the routed track's backing file. Safe on nil.
func (r *AudioRouter) Release(track *ports.AudioTrack) {
	if track == nil || track.Path == "" {
		return
	}
	os.Remove(track.Path)
}

var _ ports.AudioRouter = (*AudioRouter)(nil)
