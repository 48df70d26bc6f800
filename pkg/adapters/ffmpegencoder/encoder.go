// Package ffmpegencoder implements the stream encoder port on an external
// ffmpeg process: composited RGBA frames stream over stdin, the routed
// audio track attaches as a second input, and the finished container is
// read back on flush.
package ffmpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/cliprender/pkg/adapters/ffbin"
	"github.com/user/cliprender/pkg/ports"
)

// ErrNotInitialized is returned when frames arrive before Begin.
var ErrNotInitialized = fmt.Errorf("ffmpegencoder: not initialized")

// Encoder implements ports.StreamEncoder.
type Encoder struct {
	ffmpegPath string
	logger     ports.Logger

	mu       sync.Mutex
	spec     ports.EncodeSpec
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	tempPath string
	frames   int
	closed   bool
}

// Options configures an Encoder.
type Options struct {
	FFmpegPath string // optional explicit path
	Logger     ports.Logger
}

// New creates an Encoder. The ffmpeg binary is resolved at Begin, since
// capability can change between sessions.
func New(opts Options) *Encoder {
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	return &Encoder{ffmpegPath: opts.FFmpegPath, logger: log.WithComponent("encoder")}
}

// Begin initializes one encoding session.
func (e *Encoder) Begin(spec ports.EncodeSpec) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path, err := ffbin.FindFFmpeg(e.ffmpegPath)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "cliprender_*"+spec.Format.Extension())
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	e.tempPath = tmp.Name()
	tmp.Close()

	args, err := buildArgs(spec, e.tempPath)
	if err != nil {
		os.Remove(e.tempPath)
		e.tempPath = ""
		return err
	}

	e.spec = spec
	e.frames = 0
	e.closed = false
	e.stderr.Reset()

	e.cmd = exec.Command(path, args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		e.tempPath = ""
		return fmt.Errorf("encoder stdin: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		os.Remove(e.tempPath)
		e.tempPath = ""
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	e.logger.Debug("Encoding %s %dx%d at %.2ffps", spec.Format, spec.Width, spec.Height, spec.FPS)
	return nil
}

// buildArgs assembles the ffmpeg invocation for one session.
func buildArgs(spec ports.EncodeSpec, outPath string) ([]string, error) {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", fmt.Sprintf("%.2f", spec.FPS),
		"-i", "pipe:0",
	}

	if spec.Audio != nil {
		args = append(args, "-i", spec.Audio.Path)
	}

	args = append(args, "-map", "0:v")
	if spec.Audio != nil {
		args = append(args, "-map", "1:a")
	}

	switch spec.Format.Codec {
	case "h264":
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-pix_fmt", "yuv420p",
			"-crf", fmt.Sprintf("%d", crfH264(spec.Quality)),
		)
		if spec.Audio != nil {
			args = append(args, "-c:a", "aac", "-b:a", "128k")
		}
	case "vp8":
		args = append(args,
			"-c:v", "libvpx",
			"-crf", fmt.Sprintf("%d", crfVP8(spec.Quality)),
		)
		if spec.Bitrate <= 0 {
			// libvpx requires a rate target.
			args = append(args, "-b:v", "2000k")
		}
		if spec.Audio != nil {
			args = append(args, "-c:a", "libvorbis")
		}
	default:
		return nil, fmt.Errorf("unsupported codec %q", spec.Format.Codec)
	}

	if spec.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", spec.Bitrate))
	}
	if spec.Audio != nil {
		// The audio tap can outlast the video by a frame; trim to the
		// shorter stream to keep the boundary tight.
		args = append(args, "-shortest")
	}

	switch spec.Format.Container {
	case "mp4":
		args = append(args, "-movflags", "+faststart", "-f", "mp4")
	case "webm":
		if spec.Format.Codec == "vp8" {
			args = append(args, "-f", "webm")
		} else {
			// WebM is a Matroska subset; h264-in-webm needs the full muxer.
			args = append(args, "-f", "matroska")
		}
	default:
		return nil, fmt.Errorf("unsupported container %q", spec.Format.Container)
	}

	return append(args, outPath), nil
}

// crfH264 converts the 0-63 quality scale to x264's 0-51 CRF.
func crfH264(quality int) int {
	if quality <= 0 || quality > 63 {
		return 23
	}
	crf := quality * 51 / 63
	if crf > 51 {
		crf = 51
	}
	return crf
}

// crfVP8 clamps quality into libvpx's 4-63 CRF range.
func crfVP8(quality int) int {
	if quality <= 0 {
		return 10
	}
	if quality < 4 {
		return 4
	}
	if quality > 63 {
		return 63
	}
	return quality
}

// EncodeFrame streams one frame to the encoder.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return ErrNotInitialized
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Dx() != e.spec.Width || rgba.Bounds().Dy() != e.spec.Height {
		converted := image.NewRGBA(image.Rect(0, 0, e.spec.Width, e.spec.Height))
		draw.Draw(converted, converted.Bounds(), img, img.Bounds().Min, draw.Src)
		rgba = converted
	}

	if _, err := e.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write frame at %dms: %w", timestampMs, err)
	}
	e.frames++
	return nil
}

// End flushes the encoder and returns the finished container bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return nil, ErrNotInitialized
	}

	e.stdin.Close()
	e.stdin = nil
	e.closed = true

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read encoded output: %w", err)
	}
	os.Remove(e.tempPath)
	e.tempPath = ""

	e.logger.Debug("Flushed %d frames into %d bytes", e.frames, len(data))
	return data, nil
}

// Abort discards the session. Idempotent, and a no-op after End.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil && !e.closed {
		e.cmd.Process.Kill()
		e.cmd.Wait()
	}
	e.closed = true
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
}

var _ ports.StreamEncoder = (*Encoder)(nil)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warn(string, ...interface{})       {}
func (noopLogger) Error(string, ...interface{})      {}
func (noopLogger) WithComponent(string) ports.Logger { return noopLogger{} }
