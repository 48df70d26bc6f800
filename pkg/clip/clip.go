// Package clip defines the clip descriptor domain types and their
// validation rules.
package clip

import (
	"fmt"
)

// MinTailroomSec is the minimum distance the clip start must keep from the
// end of the source, so that a suggested clip always has room to play.
const MinTailroomSec = 5

// Clip is a bounded time segment of a source video plus descriptive
// metadata and a virality score.
type Clip struct {
	StartSec      float64  `json:"startTime" yaml:"start"`
	EndSec        float64  `json:"endTime" yaml:"end"`
	Title         string   `json:"title" yaml:"title"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	ViralityScore int      `json:"viralityScore,omitempty" yaml:"virality_score,omitempty"`
}

// DurationSec returns the clip length in seconds.
func (c Clip) DurationSec() float64 {
	return c.EndSec - c.StartSec
}

// Validate checks the time bounds a caller must guarantee before a render.
func (c Clip) Validate() error {
	if c.StartSec < 0 {
		return fmt.Errorf("clip start %.3fs is negative", c.StartSec)
	}
	if c.EndSec <= c.StartSec {
		return fmt.Errorf("clip end %.3fs is not after start %.3fs", c.EndSec, c.StartSec)
	}
	return nil
}

// ClampTo corrects the time bounds against the source duration. Malformed
// bounds from the suggestion service are repaired here, never propagated as
// failures: the start is clamped to [0, duration-MinTailroomSec], the end to
// at most the duration, and an inverted range is widened to the source end.
func (c Clip) ClampTo(videoDurationSec float64) Clip {
	out := c

	maxStart := videoDurationSec - MinTailroomSec
	if maxStart < 0 {
		maxStart = 0
	}
	if out.StartSec < 0 {
		out.StartSec = 0
	}
	if out.StartSec > maxStart {
		out.StartSec = maxStart
	}

	if out.EndSec > videoDurationSec {
		out.EndSec = videoDurationSec
	}
	if out.EndSec <= out.StartSec {
		out.EndSec = videoDurationSec
	}

	return out
}
