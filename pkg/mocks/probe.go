package mocks

import (
	"github.com/user/cliprender/pkg/ports"
)

// FormatProbe is a mock implementation of ports.FormatProbe.
type FormatProbe struct {
	SupportsFunc func(f ports.Format) bool
	FallbackFunc func() (ports.Format, bool)
}

func (m *FormatProbe) Supports(f ports.Format) bool {
	if m.SupportsFunc != nil {
		return m.SupportsFunc(f)
	}
	return true
}

func (m *FormatProbe) Fallback() (ports.Format, bool) {
	if m.FallbackFunc != nil {
		return m.FallbackFunc()
	}
	return ports.FormatWebMVP8, true
}

// Ensure FormatProbe implements ports.FormatProbe
var _ ports.FormatProbe = (*FormatProbe)(nil)

// ArtifactProber is a mock implementation of ports.ArtifactProber.
type ArtifactProber struct {
	InspectFunc func(data []byte) (ports.ArtifactInfo, error)
}

func (m *ArtifactProber) Inspect(data []byte) (ports.ArtifactInfo, error) {
	if m.InspectFunc != nil {
		return m.InspectFunc(data)
	}
	return ports.ArtifactInfo{Codec: "h264"}, nil
}

// Ensure ArtifactProber implements ports.ArtifactProber
var _ ports.ArtifactProber = (*ArtifactProber)(nil)
