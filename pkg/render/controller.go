// Package render implements the clip renderer: a segment controller state
// machine that seeks a media source to the clip start, drives a per-frame
// compositor from the playback clock, and streams the cropped frames with
// routed audio into an encoder.
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/user/cliprender/pkg/clip"
	"github.com/user/cliprender/pkg/geometry"
	"github.com/user/cliprender/pkg/ports"
)

// DefaultSeekToleranceSec is how far a completed seek may land from the
// requested clip start before the render fails.
const DefaultSeekToleranceSec = 0.5

// Options tunes one renderer instance.
type Options struct {
	// SeekToleranceSec overrides DefaultSeekToleranceSec when positive.
	SeekToleranceSec float64
	// Preference is the output format preference order; empty means
	// DefaultPreference.
	Preference []ports.Format
	// Quality is the encoder CRF (0-63, lower is better).
	Quality int
	// Bitrate is the target bitrate in kbps; 0 uses the codec default.
	Bitrate int
}

func (o Options) seekTolerance() float64 {
	if o.SeekToleranceSec > 0 {
		return o.SeekToleranceSec
	}
	return DefaultSeekToleranceSec
}

// Renderer renders clips. It is safe to reuse across sequential render
// operations; collaborators are owned per-operation and torn down
// deterministically on every exit path.
type Renderer struct {
	encoder ports.StreamEncoder
	audio   ports.AudioRouter
	probe   ports.FormatProbe
	surface ports.Renderer
	prober  ports.ArtifactProber
	logger  ports.Logger
	opts    Options
}

// New creates a Renderer. prober may be nil, in which case the artifact
// duration is assumed from the clip bounds.
func New(
	encoder ports.StreamEncoder,
	audio ports.AudioRouter,
	probe ports.FormatProbe,
	surface ports.Renderer,
	prober ports.ArtifactProber,
	logger ports.Logger,
	opts Options,
) *Renderer {
	return &Renderer{
		encoder: encoder,
		audio:   audio,
		probe:   probe,
		surface: surface,
		prober:  prober,
		logger:  logger,
		opts:    opts,
	}
}

// Render produces a standalone encoded clip from the source. The source is
// borrowed for the duration of the operation and never closed here; the
// caller must not run concurrent renders against the same handle. Progress
// is delivered via onProgress as described on ProgressFunc. Cancelling ctx
// aborts the operation with ErrCancelled and releases every resource.
func (r *Renderer) Render(
	ctx context.Context,
	src ports.MediaSource,
	c clip.Clip,
	ratio geometry.AspectRatio,
	onProgress ProgressFunc,
) (EncodedArtifact, error) {
	if err := c.Validate(); err != nil {
		return EncodedArtifact{}, err
	}

	opCtx, cancelOp := context.WithCancel(context.Background())
	op := &operation{
		id:       uuid.NewString(),
		r:        r,
		ctx:      ctx,
		opCtx:    opCtx,
		cancelOp: cancelOp,
		src:      src,
		clip:     c,
		target:   geometry.TargetDimensions(ratio),
		events:   make(chan event, 64),
		progress: newProgressReporter(onProgress, c.StartSec, c.EndSec),
	}
	op.logger = r.logger.WithComponent("render")
	defer op.release()

	op.logger.Info("Rendering clip %.1fs-%.1fs at %s (op %s)", c.StartSec, c.EndSec, string(ratio), op.id)

	// Second event source: the caller's context. Teardown is idempotent,
	// so cancellation may race any other terminal path safely.
	go func() {
		select {
		case <-ctx.Done():
			op.post(event{kind: evCancel})
		case <-opCtx.Done():
		}
	}()

	op.state = StateIdle
	op.dispatch(event{kind: evStart})

	for !op.state.Terminal() {
		op.dispatch(<-op.events)
	}

	switch op.state {
	case StateCompleted:
		op.logger.Info("Clip completed: %d bytes, %s, %.2fs", op.artifact.Size(), op.artifact.MIME, op.artifact.DurationSec)
		return op.artifact, nil
	case StateCancelled:
		return EncodedArtifact{}, ErrCancelled
	default:
		return EncodedArtifact{}, op.failure
	}
}

// operation holds the state of one in-flight render. All fields are
// touched only from the run loop goroutine; the event queue is the only
// synchronization point.
type operation struct {
	id       string
	r        *Renderer
	ctx      context.Context // caller's context
	opCtx    context.Context // internal lifetime, cancelled on release
	cancelOp context.CancelFunc
	src      ports.MediaSource
	clip     clip.Clip
	target   geometry.Dimension
	events   chan event
	progress *progressReporter
	logger   ports.Logger

	state     State
	info      ports.MediaInfo
	format    ports.Format
	audio     *ports.AudioTrack
	comp      *compositor
	finishing bool
	released  sync.Once
	artifact  EncodedArtifact
	failure   error
}

// post enqueues an event from outside the run loop unless the operation is
// already torn down. The run loop itself must never post: the queue is
// bounded and the loop is its sole consumer, so a loop-originated post
// could block against a frame pump that filled the queue. Run loop code
// raises control events through dispatch instead.
func (op *operation) post(ev event) {
	select {
	case op.events <- ev:
	case <-op.opCtx.Done():
	}
}

// dispatch applies one event to the state machine synchronously on the
// run loop goroutine. Control events raised while performing an action
// recurse through here, bypassing the bounded queue.
func (op *operation) dispatch(ev event) {
	next, act := transition(op.state, ev)
	if next != op.state {
		op.logger.Debug("State %s -> %s on %s", op.state, next, ev.kind)
	}
	op.state = next
	op.perform(act, ev)
}

func (op *operation) perform(act action, ev event) {
	switch act {
	case actSeek:
		op.doSeek()
	case actCheckSeek:
		op.checkSeek(ev.pos)
	case actPrime:
		op.doPrime()
	case actCompose:
		op.doCompose(ev.frame)
	case actFinish:
		op.doFinish(ev)
	case actComplete:
		op.doComplete(ev.data)
	case actFail:
		op.fail(ev.err)
	case actCancel:
		op.doCancel()
	}
}

// doSeek resolves source metadata and positions playback at the clip
// start. Metadata that never arrives surfaces as a DecodeError.
func (op *operation) doSeek() {
	info, err := op.src.Info(op.ctx)
	if err != nil {
		op.postFatal(err)
		return
	}
	op.info = info
	op.logger.Debug("Source ready: %dx%d, %.2fs", info.Width, info.Height, info.DurationSec)

	// The caller clamps at ingestion; repair defensively anyway if the
	// descriptor outruns the probed duration.
	if info.DurationSec > 0 && op.clip.EndSec > info.DurationSec {
		op.clip = op.clip.ClampTo(info.DurationSec)
		op.progress.endSec = op.clip.EndSec
		op.logger.Debug("Clip bounds clamped to %.1fs-%.1fs", op.clip.StartSec, op.clip.EndSec)
	}

	landed, err := op.src.Seek(op.ctx, op.clip.StartSec)
	if err != nil {
		op.postFatal(err)
		return
	}
	op.dispatch(event{kind: evSeekDone, pos: landed})
}

// checkSeek verifies the landed position against the tolerance; outside it
// the decode source state is unreliable and the render fails.
func (op *operation) checkSeek(landed float64) {
	tol := op.r.opts.seekTolerance()
	if math.Abs(landed-op.clip.StartSec) >= tol {
		op.dispatch(event{kind: evError, err: &SeekPrecisionError{
			RequestedSec: op.clip.StartSec,
			LandedSec:    landed,
			ToleranceSec: tol,
		}})
		return
	}
	op.dispatch(event{kind: evSeekVerified})
}

// doPrime builds the audio graph (non-fatal on failure), negotiates the
// output format, starts the encoder and begins playback. The audio graph
// is only constructed here, after metadata became available.
func (op *operation) doPrime() {
	if op.info.HasAudio {
		track, err := op.r.audio.Route(op.ctx, op.src.Location(), op.clip.StartSec, op.clip.EndSec)
		if err != nil {
			op.logger.Warn("Audio routing failed, continuing video-only: %s", err)
		} else {
			op.audio = track
		}
	} else {
		op.logger.Debug("Source has no audio track")
	}

	format, err := NegotiateFormat(op.r.probe, op.r.opts.Preference)
	if err != nil {
		op.dispatch(event{kind: evError, err: err})
		return
	}
	op.format = format
	op.logger.Debug("Negotiated output format %s", format)

	fps := op.info.FPS
	if fps <= 0 {
		fps = 30
	}
	spec := ports.EncodeSpec{
		Format:  format,
		Width:   op.target.Width,
		Height:  op.target.Height,
		FPS:     fps,
		Quality: op.r.opts.Quality,
		Bitrate: op.r.opts.Bitrate,
		Audio:   op.audio,
	}
	if err := op.r.encoder.Begin(spec); err != nil {
		op.dispatch(event{kind: evError, err: fmt.Errorf("start encoder: %w", err)})
		return
	}

	op.comp = newCompositor(op.r.surface, op.r.encoder, op.target, op.clip, op.progress, op.logger)

	frames, err := op.src.Play(op.ctx)
	if err != nil {
		op.postFatal(err)
		return
	}
	go op.pump(frames)

	op.dispatch(event{kind: evPrimed})
}

// pump forwards decoded frames from the playback clock onto the event
// queue. Ticks stay strictly sequential because the run loop is the only
// consumer.
func (op *operation) pump(frames <-chan ports.VideoFrame) {
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				op.post(event{kind: evSourceEnded, pos: op.src.Position()})
				return
			}
			op.post(event{kind: evFrame, frame: f})
		case <-op.opCtx.Done():
			return
		}
	}
}

func (op *operation) doCompose(f ports.VideoFrame) {
	if op.finishing {
		return
	}
	done, err := op.comp.tick(f)
	if err != nil {
		op.dispatch(event{kind: evError, err: err})
		return
	}
	if done {
		op.dispatch(event{kind: evBoundary})
	}
}

// doFinish pauses the source and flushes the encoder. The boundary tick
// and a natural source stop can race at the tick boundary, so the first
// one wins and the second is a no-op.
func (op *operation) doFinish(ev event) {
	if op.finishing {
		return
	}
	if ev.kind == evSourceEnded && ev.pos < op.clip.EndSec-op.r.opts.seekTolerance() {
		op.dispatch(event{kind: evError, err: &DecodeError{
			Err: fmt.Errorf("source ended at %.3fs before clip end %.3fs", ev.pos, op.clip.EndSec),
		}})
		return
	}
	op.finishing = true

	if err := op.src.Pause(); err != nil {
		op.logger.Debug("Pause after boundary: %s", err)
	}
	data, err := op.r.encoder.End()
	if err != nil {
		op.dispatch(event{kind: evError, err: fmt.Errorf("flush encoder: %w", err)})
		return
	}
	op.dispatch(event{kind: evFlushed, data: data})
}

// doComplete assembles the artifact, releases resources and delivers the
// terminal success signal.
func (op *operation) doComplete(data []byte) {
	op.artifact = EncodedArtifact{
		Data:        data,
		MIME:        op.format.MIME,
		FileName:    clip.ArtifactName(op.clip.Title, op.format.Extension()),
		DurationSec: op.clip.DurationSec(),
	}
	if op.r.prober != nil && op.format.Container == "mp4" {
		if info, err := op.r.prober.Inspect(data); err == nil && info.DurationSec > 0 {
			op.artifact.DurationSec = info.DurationSec
		}
	}
	op.release()
	op.progress.success()
}

func (op *operation) fail(err error) {
	if err == nil {
		err = errors.New("render: unknown failure")
	}
	op.failure = err
	op.release()
}

func (op *operation) doCancel() {
	op.failure = ErrCancelled
	op.release()
}

// postFatal maps a collaborator failure to the right terminal event:
// cancellation of the caller's context wins over the decode error it
// usually provokes.
func (op *operation) postFatal(err error) {
	if op.ctx.Err() != nil || errors.Is(err, context.Canceled) {
		op.dispatch(event{kind: evCancel})
		return
	}
	op.dispatch(event{kind: evError, err: &DecodeError{Err: err}})
}

// release tears down every per-operation resource exactly once. It is the
// central correctness property of the controller: every exit path, and the
// cancellation watcher, funnel through here.
func (op *operation) release() {
	op.released.Do(func() {
		op.cancelOp()
		op.r.encoder.Abort()
		if op.audio != nil {
			op.r.audio.Release(op.audio)
			op.audio = nil
		}
		if err := op.src.Pause(); err != nil {
			op.logger.Warn("Stopping playback failed: %s", err)
		}
		op.logger.Debug("Resources released (op %s)", op.id)
	})
}
