package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/cliprender/pkg/adapters/logger"
	"github.com/user/cliprender/pkg/clip"
	"github.com/user/cliprender/pkg/geometry"
	"github.com/user/cliprender/pkg/mocks"
	"github.com/user/cliprender/pkg/ports"
)

// fixture wires a renderer from mocks with sensible defaults. Individual
// tests override the behavior they exercise.
type fixture struct {
	src      *mocks.MediaSource
	encoder  *mocks.StreamEncoder
	audio    *mocks.AudioRouter
	probe    *mocks.FormatProbe
	surface  *mocks.Renderer
	prober   *mocks.ArtifactProber
	renderer *Renderer
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		src:     &mocks.MediaSource{},
		encoder: &mocks.StreamEncoder{},
		audio:   &mocks.AudioRouter{},
		probe:   &mocks.FormatProbe{},
		surface: &mocks.Renderer{},
		prober:  &mocks.ArtifactProber{},
	}
	f.renderer = New(f.encoder, f.audio, f.probe, f.surface, f.prober, logger.NewNoop(), opts)
	return f
}

// playFrames returns a PlayFunc that delivers frames at the given
// timestamps and then closes the channel.
func playFrames(timestamps ...float64) func(context.Context) (<-chan ports.VideoFrame, error) {
	return func(ctx context.Context) (<-chan ports.VideoFrame, error) {
		ch := make(chan ports.VideoFrame, len(timestamps))
		for _, ts := range timestamps {
			ch <- ports.VideoFrame{
				Image:        image.NewRGBA(image.Rect(0, 0, 192, 108)),
				TimestampSec: ts,
			}
		}
		close(ch)
		return ch, nil
	}
}

func TestRenderHappyPath(t *testing.T) {
	f := newFixture(Options{})
	f.src.InfoFunc = func(ctx context.Context) (ports.MediaInfo, error) {
		return ports.MediaInfo{Width: 192, Height: 108, DurationSec: 60, FPS: 30, HasAudio: true}, nil
	}
	f.src.PlayFunc = playFrames(10, 12.5, 15, 17.5, 20)
	f.src.PositionFunc = func() float64 { return 20 }
	f.prober.InspectFunc = func(data []byte) (ports.ArtifactInfo, error) {
		return ports.ArtifactInfo{Codec: "h264", DurationSec: 9.97}, nil
	}

	var percents []int
	c := clip.Clip{StartSec: 10, EndSec: 20, Title: "My Great Clip"}
	artifact, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, func(pct int) {
		percents = append(percents, pct)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(artifact.Data) != "encoded" {
		t.Errorf("unexpected artifact data %q", artifact.Data)
	}
	if artifact.MIME != "video/mp4" {
		t.Errorf("expected video/mp4, got %s", artifact.MIME)
	}
	if artifact.FileName != "my-great-clip.mp4" {
		t.Errorf("unexpected file name %s", artifact.FileName)
	}
	if artifact.DurationSec != 9.97 {
		t.Errorf("expected probed duration 9.97, got %v", artifact.DurationSec)
	}

	if !f.encoder.BeginCalled {
		t.Error("encoder was never started")
	}
	if f.encoder.BeginSpec.Audio == nil {
		t.Error("audio track was not attached to the encode spec")
	}
	if f.encoder.FrameCount() != 5 {
		t.Errorf("expected 5 encoded frames, got %d", f.encoder.FrameCount())
	}
	if !f.encoder.EndCalled {
		t.Error("encoder was never flushed")
	}
	if !f.src.Paused() {
		t.Error("source was not paused")
	}
	if f.src.CloseCalled {
		t.Error("source is borrowed and must not be closed")
	}
	if f.audio.ReleaseCount() != 1 {
		t.Errorf("expected 1 audio release, got %d", f.audio.ReleaseCount())
	}

	// Progress is monotonic, capped at 99 while running, and ends with a
	// single 100.
	if len(percents) == 0 {
		t.Fatal("no progress was reported")
	}
	prev := -1
	for i, pct := range percents {
		if pct <= prev {
			t.Fatalf("progress not monotonic: %v", percents)
		}
		if pct == 100 && i != len(percents)-1 {
			t.Fatalf("100 before completion: %v", percents)
		}
		prev = pct
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("expected terminal 100, got %v", percents)
	}
}

func TestRenderFrameTimestampsRebased(t *testing.T) {
	f := newFixture(Options{})
	f.src.PlayFunc = playFrames(10, 15, 20)
	f.src.PositionFunc = func() float64 { return 20 }

	c := clip.Clip{StartSec: 10, EndSec: 20, Title: "clip"}
	if _, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Encoder timestamps are relative to the clip start.
	want := []int{0, 5000, 10000}
	if len(f.encoder.EncodeFrameCalls) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(f.encoder.EncodeFrameCalls))
	}
	for i, call := range f.encoder.EncodeFrameCalls {
		if call.TimestampMs != want[i] {
			t.Errorf("frame %d: expected %dms, got %dms", i, want[i], call.TimestampMs)
		}
	}
}

func TestRenderExtensionFollowsNegotiatedContainer(t *testing.T) {
	f := newFixture(Options{})
	f.probe.SupportsFunc = func(fm ports.Format) bool { return fm == ports.FormatWebMVP8 }
	f.src.PlayFunc = playFrames(10, 20)
	f.src.PositionFunc = func() float64 { return 20 }

	c := clip.Clip{StartSec: 10, EndSec: 20, Title: "My Clip"}
	artifact, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioSquare, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.FileName != "my-clip.webm" {
		t.Errorf("expected my-clip.webm, got %s", artifact.FileName)
	}
	if artifact.MIME != "video/webm" {
		t.Errorf("expected video/webm, got %s", artifact.MIME)
	}
}

func TestRenderInvalidClip(t *testing.T) {
	f := newFixture(Options{})
	c := clip.Clip{StartSec: 20, EndSec: 10}
	if _, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil); err == nil {
		t.Fatal("expected validation error")
	}
	if f.encoder.BeginCalled {
		t.Error("encoder must not start for an invalid clip")
	}
}

func TestRenderSeekPrecisionFailure(t *testing.T) {
	f := newFixture(Options{})
	f.src.SeekFunc = func(ctx context.Context, posSec float64) (float64, error) {
		return posSec + 1.0, nil
	}

	c := clip.Clip{StartSec: 10, EndSec: 20}
	_, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)

	var precision *SeekPrecisionError
	if !errors.As(err, &precision) {
		t.Fatalf("expected SeekPrecisionError, got %v", err)
	}
	if precision.RequestedSec != 10 || precision.LandedSec != 11 {
		t.Errorf("unexpected error detail: %+v", precision)
	}
	if !f.encoder.Aborted() {
		t.Error("encoder was not aborted")
	}
	if !f.src.Paused() {
		t.Error("source was not paused on failure")
	}
}

func TestRenderSeekWithinToleranceSucceeds(t *testing.T) {
	f := newFixture(Options{})
	f.src.SeekFunc = func(ctx context.Context, posSec float64) (float64, error) {
		return posSec + 0.3, nil
	}
	f.src.PlayFunc = playFrames(10.3, 20)
	f.src.PositionFunc = func() float64 { return 20 }

	c := clip.Clip{StartSec: 10, EndSec: 20}
	if _, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderMetadataFailure(t *testing.T) {
	f := newFixture(Options{})
	f.src.InfoFunc = func(ctx context.Context) (ports.MediaInfo, error) {
		return ports.MediaInfo{}, fmt.Errorf("moov box never arrived")
	}

	c := clip.Clip{StartSec: 10, EndSec: 20}
	_, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)

	var decode *DecodeError
	if !errors.As(err, &decode) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if !f.encoder.Aborted() {
		t.Error("encoder was not aborted")
	}
}

func TestRenderAudioFailureIsNonFatal(t *testing.T) {
	f := newFixture(Options{})
	f.src.InfoFunc = func(ctx context.Context) (ports.MediaInfo, error) {
		return ports.MediaInfo{Width: 192, Height: 108, DurationSec: 60, FPS: 30, HasAudio: true}, nil
	}
	f.audio.RouteFunc = func(ctx context.Context, origin string, startSec, endSec float64) (*ports.AudioTrack, error) {
		return nil, fmt.Errorf("no decodable audio stream")
	}
	f.src.PlayFunc = playFrames(10, 20)
	f.src.PositionFunc = func() float64 { return 20 }

	c := clip.Clip{StartSec: 10, EndSec: 20}
	artifact, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)
	if err != nil {
		t.Fatalf("audio failure must degrade to video-only, got %v", err)
	}
	if len(artifact.Data) == 0 {
		t.Error("expected a video-only artifact")
	}
	if f.encoder.BeginSpec.Audio != nil {
		t.Error("failed audio route must not attach a track")
	}
}

func TestRenderEncoderUnavailable(t *testing.T) {
	f := newFixture(Options{})
	f.probe.SupportsFunc = func(ports.Format) bool { return false }
	f.probe.FallbackFunc = func() (ports.Format, bool) { return ports.Format{}, false }
	f.src.PlayFunc = playFrames(10, 20)

	c := clip.Clip{StartSec: 10, EndSec: 20}
	_, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("expected ErrEncoderUnavailable, got %v", err)
	}
	if f.encoder.BeginCalled {
		t.Error("encoder must not start without a negotiated format")
	}
}

func TestRenderSourceEndedEarly(t *testing.T) {
	f := newFixture(Options{})
	f.src.PlayFunc = playFrames(10, 11, 12)
	f.src.PositionFunc = func() float64 { return 12 }

	c := clip.Clip{StartSec: 10, EndSec: 30}
	_, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)

	var decode *DecodeError
	if !errors.As(err, &decode) {
		t.Fatalf("expected DecodeError for a source that ended early, got %v", err)
	}
	if !f.encoder.Aborted() {
		t.Error("encoder was not aborted")
	}
}

func TestRenderCancellation(t *testing.T) {
	f := newFixture(Options{})
	// Playback never delivers, so only cancellation can terminate.
	f.src.PlayFunc = func(ctx context.Context) (<-chan ports.VideoFrame, error) {
		return make(chan ports.VideoFrame), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := clip.Clip{StartSec: 10, EndSec: 20}
	_, err := f.renderer.Render(ctx, f.src, c, geometry.RatioPortrait, nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if !f.encoder.Aborted() {
		t.Error("encoder was not aborted on cancellation")
	}
	if !f.src.Paused() {
		t.Error("source was not paused on cancellation")
	}
	if f.src.CloseCalled {
		t.Error("source is borrowed and must not be closed")
	}
}

func TestRenderClampsClipToProbedDuration(t *testing.T) {
	f := newFixture(Options{})
	f.src.InfoFunc = func(ctx context.Context) (ports.MediaInfo, error) {
		return ports.MediaInfo{Width: 192, Height: 108, DurationSec: 15, FPS: 30}, nil
	}
	f.src.PlayFunc = playFrames(10, 15)
	f.src.PositionFunc = func() float64 { return 15 }

	// The descriptor outruns the probed duration; bounds are repaired
	// instead of failing the render.
	c := clip.Clip{StartSec: 10, EndSec: 60, Title: "tail"}
	artifact, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifact.Data) == 0 {
		t.Error("expected an artifact")
	}
}

func TestRenderFastSourceSlowEncoder(t *testing.T) {
	f := newFixture(Options{})
	f.src.InfoFunc = func(ctx context.Context) (ports.MediaInfo, error) {
		return ports.MediaInfo{Width: 192, Height: 108, DurationSec: 60, FPS: 30}, nil
	}

	// Preload far more frames than the event queue holds so delivery
	// outpaces compositing, then slow every encode down. The run loop
	// must still reach the clip boundary and terminate.
	const n = 120
	timestamps := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		timestamps = append(timestamps, 10+float64(i)*(10.0/n))
	}
	f.src.PlayFunc = playFrames(timestamps...)
	f.src.PositionFunc = func() float64 { return 20 }
	f.encoder.EncodeFrameFunc = func(img image.Image, timestampMs int) error {
		time.Sleep(time.Millisecond)
		return nil
	}

	c := clip.Clip{StartSec: 10, EndSec: 20, Title: "burst"}
	artifact, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifact.Data) == 0 {
		t.Error("expected an artifact")
	}
	if f.encoder.FrameCount() != n+1 {
		t.Errorf("expected %d encoded frames, got %d", n+1, f.encoder.FrameCount())
	}
	if !f.src.Paused() {
		t.Error("source was not paused")
	}
}

// recordingLogger captures formatted warnings for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Error(string, ...interface{}) {}

func (l *recordingLogger) Warn(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(msg, args...))
}

func (l *recordingLogger) WithComponent(string) ports.Logger { return l }

func (l *recordingLogger) warned(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.warns {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestRenderPauseFailureIsWarnedNotFatal(t *testing.T) {
	log := &recordingLogger{}
	f := newFixture(Options{})
	f.renderer = New(f.encoder, f.audio, f.probe, f.surface, f.prober, log, Options{})
	f.src.InfoFunc = func(ctx context.Context) (ports.MediaInfo, error) {
		return ports.MediaInfo{Width: 192, Height: 108, DurationSec: 60, FPS: 30}, nil
	}
	f.src.PlayFunc = playFrames(10, 20)
	f.src.PositionFunc = func() float64 { return 20 }
	f.src.PauseFunc = func() error { return errors.New("decoder already gone") }

	c := clip.Clip{StartSec: 10, EndSec: 20, Title: "stuck"}
	if _, err := f.renderer.Render(context.Background(), f.src, c, geometry.RatioPortrait, nil); err != nil {
		t.Fatalf("a pause failure must not fail the render: %v", err)
	}
	if !log.warned("decoder already gone") {
		t.Error("expected the pause failure to be logged as a warning")
	}
}
