// Package ggrenderer implements the compositing surface using the gg
// drawing library.
package ggrenderer

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/cliprender/pkg/ports"
)

// Renderer implements ports.Renderer using gg contexts for scaled drawing
// and x/image for region copies.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a drawing canvas. A nil background paints black.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	if bg == nil {
		bg = color.Black
	}
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc}
}

// ExtractRegion copies a sub-rectangle into a fresh image. The result's
// bounds start at (0,0), which gg's DrawImage requires.
func (r *Renderer) ExtractRegion(img image.Image, x, y, width, height int) image.Image {
	bounds := img.Bounds()

	srcX := bounds.Min.X + x
	srcY := bounds.Min.Y + y
	if srcX < bounds.Min.X {
		srcX = bounds.Min.X
	}
	if srcY < bounds.Min.Y {
		srcY = bounds.Min.Y
	}
	if srcX+width > bounds.Max.X {
		width = bounds.Max.X - srcX
	}
	if srcY+height > bounds.Max.Y {
		height = bounds.Max.Y - srcY
	}
	if width <= 0 || height <= 0 {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, image.Point{X: srcX, Y: srcY}, draw.Src)
	return dst
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas on a gg.Context.
type Canvas struct {
	dc *gg.Context
}

// DrawImageScaled draws an image scaled to exactly fill the given
// rectangle.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	c.dc.Push()
	defer c.dc.Pop()

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	scaleX := float64(width) / float64(bounds.Dx())
	scaleY := float64(height) / float64(bounds.Dy())

	c.dc.Translate(float64(x), float64(y))
	c.dc.Scale(scaleX, scaleY)
	c.dc.DrawImage(img, 0, 0)
}

// ToImage returns the canvas content.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
