package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image processing for frame composition.
type Renderer interface {
	// CreateCanvas creates a drawing canvas with the given dimensions and
	// background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// ExtractRegion copies a sub-rectangle of an image into a new image
	// whose bounds start at (0,0). Returns nil when the region is empty
	// after clamping to the image bounds.
	ExtractRegion(img image.Image, x, y, width, height int) image.Image
}

// Canvas provides drawing operations for compositing frames.
type Canvas interface {
	// DrawImageScaled draws an image scaled to the specified dimensions.
	DrawImageScaled(img image.Image, x, y, width, height int)

	// ToImage returns the canvas content as an image.Image.
	ToImage() image.Image
}
