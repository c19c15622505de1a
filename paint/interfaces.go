package paint

// CanvasBuilder accumulates configuration before a drawing surface exists.
// Implemented by Builder and mock.Builder.
type CanvasBuilder interface {
	// SetSize records the surface size. Nothing is created yet.
	SetSize(width, height int) CanvasBuilder
	// RegisterFont registers a font file with the engine immediately.
	RegisterFont(path string, font Font) CanvasBuilder
	// BeginPainting creates the surface and returns its painter. It may only
	// be called once per builder.
	BeginPainting() (CanvasPainter, error)
	// Build is an alias of BeginPainting.
	Build() (CanvasPainter, error)
	// Events returns a snapshot of the shared event log.
	Events() []Event
}

// CanvasPainter is the fluent drawing API. Every drawing call returns
// immediately; the work runs later, in call order.
type CanvasPainter interface {
	Clear(style Style) CanvasPainter
	FillRectangle(rect Rect, style ...Style) CanvasPainter
	StrokeRectangle(rect Rect, stroke ...Stroke) CanvasPainter
	FillText(text string, at Point) CanvasPainter
	DrawImage(image *ImageHandle, at Point, source ...Rect) CanvasPainter
	SetFillStyle(style Style) CanvasPainter
	SetStrokeStyle(style Style) CanvasPainter
	SetLineWidth(width float64) CanvasPainter
	SetFontFamily(family string) CanvasPainter
	SetFontSize(size float64) CanvasPainter

	// Export resolves once every call issued before it has run and the
	// surface has been written to path.
	Export(path string) *Future[CanvasPainter]
	// Settle resolves once every call issued before it has run.
	Settle() *Future[CanvasPainter]

	// Events returns a snapshot of the shared event log.
	Events() []Event
	// Close drains queued work and releases the painter.
	Close() error
}
