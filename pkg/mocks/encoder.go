package mocks

import (
	"image"
	"sync"

	"github.com/user/cliprender/pkg/ports"
)

// StreamEncoder is a mock implementation of ports.StreamEncoder.
type StreamEncoder struct {
	BeginFunc       func(spec ports.EncodeSpec) error
	EncodeFrameFunc func(img image.Image, timestampMs int) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	mu               sync.Mutex
	BeginCalled      bool
	BeginSpec        ports.EncodeSpec
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
	AbortCalled      bool
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	TimestampMs int
}

func (m *StreamEncoder) Begin(spec ports.EncodeSpec) error {
	m.mu.Lock()
	m.BeginCalled = true
	m.BeginSpec = spec
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(spec)
	}
	return nil
}

func (m *StreamEncoder) EncodeFrame(img image.Image, timestampMs int) error {
	m.mu.Lock()
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{TimestampMs: timestampMs})
	m.mu.Unlock()
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, timestampMs)
	}
	return nil
}

func (m *StreamEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	return []byte("encoded"), nil
}

func (m *StreamEncoder) Abort() {
	m.mu.Lock()
	m.AbortCalled = true
	m.mu.Unlock()
}

// Aborted reports whether Abort was called.
func (m *StreamEncoder) Aborted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AbortCalled
}

// FrameCount returns the number of encoded frames.
func (m *StreamEncoder) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EncodeFrameCalls)
}

// Ensure StreamEncoder implements ports.StreamEncoder
var _ ports.StreamEncoder = (*StreamEncoder)(nil)
