package mocks

import (
	"context"
	"sync"

	"github.com/user/cliprender/pkg/ports"
)

// AudioRouter is a mock implementation of ports.AudioRouter.
type AudioRouter struct {
	RouteFunc func(ctx context.Context, origin string, startSec, endSec float64) (*ports.AudioTrack, error)

	// Recorded calls for verification
	mu             sync.Mutex
	RouteCalled    bool
	ReleasedTracks []*ports.AudioTrack
}

func (m *AudioRouter) Route(ctx context.Context, origin string, startSec, endSec float64) (*ports.AudioTrack, error) {
	m.mu.Lock()
	m.RouteCalled = true
	m.mu.Unlock()
	if m.RouteFunc != nil {
		return m.RouteFunc(ctx, origin, startSec, endSec)
	}
	return &ports.AudioTrack{Path: "mock.wav", SampleRate: 44100, Channels: 2, DurationSec: endSec - startSec}, nil
}

func (m *AudioRouter) Release(track *ports.AudioTrack) {
	m.mu.Lock()
	m.ReleasedTracks = append(m.ReleasedTracks, track)
	m.mu.Unlock()
}

// ReleaseCount returns the number of Release calls.
func (m *AudioRouter) ReleaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ReleasedTracks)
}

// Ensure AudioRouter implements ports.AudioRouter
var _ ports.AudioRouter = (*AudioRouter)(nil)
