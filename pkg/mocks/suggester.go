package mocks

import (
	"context"

	"github.com/user/cliprender/pkg/clip"
	"github.com/user/cliprender/pkg/ports"
)

// ClipSuggester is a mock implementation of ports.ClipSuggester.
type ClipSuggester struct {
	SuggestFunc func(ctx context.Context, req ports.SuggestRequest) ([]clip.Clip, error)
}

func (m *ClipSuggester) Suggest(ctx context.Context, req ports.SuggestRequest) ([]clip.Clip, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, req)
	}
	return []clip.Clip{{StartSec: 0, EndSec: 10, Title: "Highlight"}}, nil
}

// Ensure ClipSuggester implements ports.ClipSuggester
var _ ports.ClipSuggester = (*ClipSuggester)(nil)
