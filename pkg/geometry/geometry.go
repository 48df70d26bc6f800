// Package geometry resolves target output dimensions and centered crop
// rectangles for aspect-ratio-targeted clip rendering.
package geometry

import (
	"fmt"
)

// AspectRatio is one of the supported output aspect ratios.
type AspectRatio string

const (
	RatioPortrait  AspectRatio = "9:16"
	RatioLandscape AspectRatio = "16:9"
	RatioSquare    AspectRatio = "1:1"
	RatioFourFive  AspectRatio = "4:5"
	RatioFiveFour  AspectRatio = "5:4"
)

// DefaultRatio is used when a caller passes a ratio outside the enum.
const DefaultRatio = RatioPortrait

// Dimension represents width and height in pixels.
type Dimension struct {
	Width  int
	Height int
}

// Rectangle is a sub-region of a source frame.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// targetTable pins each ratio to a fixed 1080-class output surface.
var targetTable = map[AspectRatio]Dimension{
	RatioPortrait:  {Width: 1080, Height: 1920},
	RatioLandscape: {Width: 1920, Height: 1080},
	RatioSquare:    {Width: 1080, Height: 1080},
	RatioFourFive:  {Width: 1080, Height: 1350},
	RatioFiveFour:  {Width: 1350, Height: 1080},
}

// ParseAspectRatio parses a ratio string such as "9:16".
func ParseAspectRatio(s string) (AspectRatio, error) {
	r := AspectRatio(s)
	if _, ok := targetTable[r]; !ok {
		return "", fmt.Errorf("unsupported aspect ratio %q", s)
	}
	return r, nil
}

// TargetDimensions returns the fixed output dimensions for a ratio. An
// unknown ratio falls back to the portrait default rather than failing.
func TargetDimensions(ratio AspectRatio) Dimension {
	if d, ok := targetTable[ratio]; ok {
		return d
	}
	return targetTable[DefaultRatio]
}

// CropRect computes the largest centered rectangle of the source that
// matches the target aspect ratio. A relatively wider source is cropped
// left/right keeping full height; otherwise top/bottom keeping full width.
// No padding is ever produced. ok is false while the source dimensions are
// not yet known, in which case the caller must skip the frame.
func CropRect(srcW, srcH int, target Dimension) (rect Rectangle, ok bool) {
	if srcW <= 0 || srcH <= 0 || target.Width <= 0 || target.Height <= 0 {
		return Rectangle{}, false
	}

	srcRatio := float64(srcW) / float64(srcH)
	tgtRatio := float64(target.Width) / float64(target.Height)

	if srcRatio > tgtRatio {
		w := evenRound(float64(srcH) * tgtRatio)
		if w > srcW {
			w = srcW
		}
		return Rectangle{X: (srcW - w) / 2, Y: 0, Width: w, Height: srcH}, true
	}

	h := evenRound(float64(srcW) / tgtRatio)
	if h > srcH {
		h = srcH
	}
	return Rectangle{X: 0, Y: (srcH - h) / 2, Width: srcW, Height: h}, true
}

// evenRound rounds to the nearest even integer, which encoders require for
// 4:2:0 chroma subsampling.
func evenRound(v float64) int {
	return int(v/2+0.5) * 2
}
