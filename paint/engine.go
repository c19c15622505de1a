package paint

import "image"

// Engine is the capability surface of the external 2D graphics engine.
//
// RegisterFont is process-wide and idempotent per path. Engines cache font
// metrics when a surface is created, so fonts must be registered before the
// surface that uses them exists.
type Engine interface {
	RegisterFont(path string, font Font) error
	NewSurface(width, height int) (Surface, error)
}

// Surface is one in-memory raster canvas, owned by exactly one painter.
type Surface interface {
	Context() Context
	// WriteFile encodes the surface as PNG to path.
	WriteFile(path string) error
}

// Context is the mutable drawing state of a surface.
type Context interface {
	FillStyle() Style
	SetFillStyle(style Style) error
	StrokeStyle() Style
	SetStrokeStyle(style Style) error
	LineWidth() float64
	SetLineWidth(width float64)
	SetFont(font FontDescriptor) error

	FillRect(x, y, w, h float64) error
	StrokeRect(x, y, w, h float64) error
	// FillText draws text with its baseline at y.
	FillText(text string, x, y float64) error
	// DrawImage blits the src subrectangle of img with its top-left corner at (x, y), unscaled.
	DrawImage(img image.Image, src image.Rectangle, x, y float64) error
}
