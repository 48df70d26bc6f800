package render

import (
	"fmt"

	"github.com/user/cliprender/pkg/clip"
	"github.com/user/cliprender/pkg/geometry"
	"github.com/user/cliprender/pkg/ports"
)

// compositor is the per-frame unit of work: it crops each delivered frame
// and draws it scaled onto the fixed output surface, feeding the encoder.
// The crop rectangle is computed once, on the first frame with known
// dimensions, since source dimensions do not change mid-clip.
type compositor struct {
	surface  ports.Renderer
	encoder  ports.StreamEncoder
	target   geometry.Dimension
	clip     clip.Clip
	progress *progressReporter
	logger   ports.Logger

	crop      geometry.Rectangle
	cropReady bool
	frames    int
}

func newCompositor(
	surface ports.Renderer,
	encoder ports.StreamEncoder,
	target geometry.Dimension,
	c clip.Clip,
	progress *progressReporter,
	logger ports.Logger,
) *compositor {
	return &compositor{
		surface:  surface,
		encoder:  encoder,
		target:   target,
		clip:     c,
		progress: progress,
		logger:   logger.WithComponent("compositor"),
	}
}

// tick composites one frame. It returns done=true when the playback
// position reached the clip end, which terminates the capture loop.
func (c *compositor) tick(f ports.VideoFrame) (done bool, err error) {
	if f.Image != nil {
		b := f.Image.Bounds()
		if !c.cropReady {
			rect, ok := geometry.CropRect(b.Dx(), b.Dy(), c.target)
			if ok {
				c.crop = rect
				c.cropReady = true
				c.logger.Debug("Crop %dx%d+%d+%d from %dx%d source onto %dx%d surface",
					rect.Width, rect.Height, rect.X, rect.Y, b.Dx(), b.Dy(), c.target.Width, c.target.Height)
			}
		}

		// Dimensions still unknown: skip drawing for this tick.
		if c.cropReady {
			if err := c.compose(f); err != nil {
				return false, err
			}
			c.frames++
		}
	}

	c.progress.running(f.TimestampSec)

	return f.TimestampSec >= c.clip.EndSec, nil
}

// compose draws the cropped source region scaled to fill the output
// surface exactly. No distortion occurs since the crop is pre-matched to
// the target ratio; no letterboxing is ever produced.
func (c *compositor) compose(f ports.VideoFrame) error {
	region := c.surface.ExtractRegion(f.Image, c.crop.X, c.crop.Y, c.crop.Width, c.crop.Height)
	if region == nil {
		return fmt.Errorf("crop region %v is empty", c.crop)
	}

	canvas := c.surface.CreateCanvas(c.target.Width, c.target.Height, nil)
	canvas.DrawImageScaled(region, 0, 0, c.target.Width, c.target.Height)

	tsMs := int((f.TimestampSec - c.clip.StartSec) * 1000)
	if tsMs < 0 {
		tsMs = 0
	}
	if err := c.encoder.EncodeFrame(canvas.ToImage(), tsMs); err != nil {
		return fmt.Errorf("encode frame at %dms: %w", tsMs, err)
	}
	return nil
}
