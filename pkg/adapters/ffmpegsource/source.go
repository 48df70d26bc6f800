// Package ffmpegsource implements the media source port by decoding video
// through an external ffmpeg process, delivering frames paced to the
// playback clock the way a real decode pipeline would.
package ffmpegsource

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/user/cliprender/pkg/adapters/ffbin"
	"github.com/user/cliprender/pkg/ports"
)

// Options configures a Source.
type Options struct {
	FFmpegPath  string // optional explicit path
	FFprobePath string // optional explicit path
	Logger      ports.Logger
}

// Source implements ports.MediaSource for a local video file.
type Source struct {
	path        string
	ffmpegPath  string
	ffprobePath string
	logger      ports.Logger

	mu       sync.Mutex
	info     *ports.MediaInfo
	startAt  float64
	pos      float64
	cmd      *exec.Cmd
	stopPlay context.CancelFunc
	playing  bool
	closed   bool
}

// Open validates the path and resolves the decode tooling. Metadata is not
// probed yet; it becomes available through Info.
func Open(path string, opts Options) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	ffmpegPath, err := ffbin.FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	ffprobePath, err := ffbin.FindFFprobe(opts.FFprobePath)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	return &Source{
		path:        path,
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      log.WithComponent("source"),
	}, nil
}

// Info probes the source metadata on first use and caches it.
func (s *Source) Info(ctx context.Context) (ports.MediaInfo, error) {
	s.mu.Lock()
	if s.info != nil {
		info := *s.info
		s.mu.Unlock()
		return info, nil
	}
	s.mu.Unlock()

	info, err := probe(ctx, s.ffprobePath, s.path)
	if err != nil {
		return ports.MediaInfo{}, err
	}

	s.mu.Lock()
	s.info = &info
	s.mu.Unlock()
	s.logger.Debug("Probed %s: %dx%d %.2ffps %.2fs", s.path, info.Width, info.Height, info.FPS, info.DurationSec)
	return info, nil
}

// Seek stores the playback start position, clamped to the source bounds,
// and returns where the decoder will actually begin.
func (s *Source) Seek(ctx context.Context, posSec float64) (float64, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("source is closed")
	}
	if s.playing {
		return 0, fmt.Errorf("cannot seek while playing")
	}

	landed := posSec
	if landed < 0 {
		landed = 0
	}
	if info.DurationSec > 0 && landed > info.DurationSec {
		landed = info.DurationSec
	}
	s.startAt = landed
	s.pos = landed
	return landed, nil
}

// Play starts an ffmpeg decode at the seek position and delivers RGBA
// frames on the returned channel, paced to the source frame rate. The
// channel closes when the source ends or playback is paused.
func (s *Source) Play(ctx context.Context) (<-chan ports.VideoFrame, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("source is closed")
	}
	if s.playing {
		return nil, fmt.Errorf("already playing")
	}

	playCtx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(playCtx, s.ffmpegPath,
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", s.startAt),
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-an",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("decoder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start decoder: %w", err)
	}

	s.cmd = cmd
	s.stopPlay = cancel
	s.playing = true

	fps := info.FPS
	if fps <= 0 {
		fps = 30
	}

	frames := make(chan ports.VideoFrame)
	go s.deliver(playCtx, stdout, frames, info, fps)
	return frames, nil
}

// deliver reads raw frames and paces them to the playback clock so the
// consumer never gets ahead of real playback rate.
func (s *Source) deliver(ctx context.Context, stdout io.Reader, frames chan<- ports.VideoFrame, info ports.MediaInfo, fps float64) {
	defer close(frames)
	defer func() {
		s.mu.Lock()
		s.playing = false
		if s.cmd != nil {
			s.cmd.Wait()
			s.cmd = nil
		}
		s.mu.Unlock()
	}()

	frameSize := info.Width * info.Height * 4
	interval := time.Duration(float64(time.Second) / fps)
	start := s.startAt

	for n := 0; ; n++ {
		buf := make([]byte, frameSize)
		if _, err := io.ReadFull(stdout, buf); err != nil {
			// EOF: the source naturally stopped.
			return
		}

		img := &image.RGBA{
			Pix:    buf,
			Stride: info.Width * 4,
			Rect:   image.Rect(0, 0, info.Width, info.Height),
		}
		ts := start + float64(n)/fps

		s.mu.Lock()
		s.pos = ts
		s.mu.Unlock()

		select {
		case frames <- ports.VideoFrame{Image: img, TimestampSec: ts}:
		case <-ctx.Done():
			return
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}

// Position reports the current playback position in seconds.
func (s *Source) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Pause stops frame delivery without releasing the source. Safe to call
// repeatedly.
func (s *Source) Pause() error {
	s.mu.Lock()
	cancel := s.stopPlay
	s.stopPlay = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// Location returns the source file path.
func (s *Source) Location() string {
	return s.path
}

// Close releases decoder resources.
func (s *Source) Close() error {
	s.Pause()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ ports.MediaSource = (*Source)(nil)

// noopLogger avoids nil checks when no logger is supplied.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warn(string, ...interface{})       {}
func (noopLogger) Error(string, ...interface{})      {}
func (noopLogger) WithComponent(string) ports.Logger { return noopLogger{} }
