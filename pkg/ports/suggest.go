package ports

import (
	"context"

	"github.com/user/cliprender/pkg/clip"
)

// SuggestRequest carries the inputs the clip metadata service works from.
type SuggestRequest struct {
	FileName         string
	Genre            string
	LengthPreference string
	UserPrompt       string
	VideoDurationSec float64
	Iteration        int
}

// ClipSuggester proposes candidate clips for a source video. It is a
// stateless request/response boundary; implementations fall back to a
// deterministic local generator when the remote service fails, so a
// non-empty result is guaranteed for any positive video duration.
type ClipSuggester interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]clip.Clip, error)
}
