package render

import (
	"github.com/user/cliprender/pkg/ports"
)

// DefaultPreference is the output format preference order.
var DefaultPreference = []ports.Format{
	ports.FormatMP4H264,
	ports.FormatWebMH264,
	ports.FormatWebMVP8,
}

// NegotiateFormat returns the first format in the preference order the
// runtime supports, or the probe's guaranteed fallback when none match.
// It is query-only and must be called once per render operation, since
// capability can vary by session.
func NegotiateFormat(probe ports.FormatProbe, prefs []ports.Format) (ports.Format, error) {
	if len(prefs) == 0 {
		prefs = DefaultPreference
	}
	for _, f := range prefs {
		if probe.Supports(f) {
			return f, nil
		}
	}
	if f, ok := probe.Fallback(); ok {
		return f, nil
	}
	return ports.Format{}, ErrEncoderUnavailable
}
