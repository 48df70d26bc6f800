// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/user/cliprender/pkg/ports"
)

// MediaSource is a mock implementation of ports.MediaSource.
type MediaSource struct {
	InfoFunc     func(ctx context.Context) (ports.MediaInfo, error)
	SeekFunc     func(ctx context.Context, posSec float64) (float64, error)
	PlayFunc     func(ctx context.Context) (<-chan ports.VideoFrame, error)
	PositionFunc func() float64
	PauseFunc    func() error
	LocationFunc func() string
	CloseFunc    func() error

	// Recorded calls for verification
	mu          sync.Mutex
	SeekCalls   []float64
	PlayCalled  bool
	PauseCalled bool
	CloseCalled bool
}

func (m *MediaSource) Info(ctx context.Context) (ports.MediaInfo, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return ports.MediaInfo{Width: 1920, Height: 1080, DurationSec: 60, FPS: 30}, nil
}

func (m *MediaSource) Seek(ctx context.Context, posSec float64) (float64, error) {
	m.mu.Lock()
	m.SeekCalls = append(m.SeekCalls, posSec)
	m.mu.Unlock()
	if m.SeekFunc != nil {
		return m.SeekFunc(ctx, posSec)
	}
	return posSec, nil
}

func (m *MediaSource) Play(ctx context.Context) (<-chan ports.VideoFrame, error) {
	m.mu.Lock()
	m.PlayCalled = true
	m.mu.Unlock()
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx)
	}
	ch := make(chan ports.VideoFrame)
	close(ch)
	return ch, nil
}

func (m *MediaSource) Position() float64 {
	if m.PositionFunc != nil {
		return m.PositionFunc()
	}
	return 0
}

func (m *MediaSource) Pause() error {
	m.mu.Lock()
	m.PauseCalled = true
	m.mu.Unlock()
	if m.PauseFunc != nil {
		return m.PauseFunc()
	}
	return nil
}

// Paused reports whether Pause was called.
func (m *MediaSource) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PauseCalled
}

func (m *MediaSource) Location() string {
	if m.LocationFunc != nil {
		return m.LocationFunc()
	}
	return "mock://source"
}

func (m *MediaSource) Close() error {
	m.mu.Lock()
	m.CloseCalled = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Ensure MediaSource implements ports.MediaSource
var _ ports.MediaSource = (*MediaSource)(nil)
