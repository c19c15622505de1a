// Package mock provides CanvasBuilder and CanvasPainter substitutes that only
// record what they were asked to do.
//
// Use them in unit tests, then assert on Events().
package mock

import (
	"github.com/ByLCY/canvasbuilder/paint"
)

// Builder is a CanvasBuilder that never touches a drawing engine.
type Builder struct {
	log      *paint.EventLog
	painting bool
}

var _ paint.CanvasBuilder = (*Builder)(nil)

// NewBuilder returns an empty mock builder.
func NewBuilder() *Builder {
	return &Builder{log: paint.NewEventLog()}
}

func (b *Builder) SetSize(width, height int) paint.CanvasBuilder {
	b.log.Append(paint.SetSizeEvent{Width: width, Height: height})
	return b
}

func (b *Builder) RegisterFont(path string, font paint.Font) paint.CanvasBuilder {
	b.log.Append(paint.RegisterFontEvent{Path: path, Style: font})
	return b
}

// BeginPainting returns a mock painter sharing this builder's log. Like the
// real builder it may only be called once.
func (b *Builder) BeginPainting() (paint.CanvasPainter, error) {
	if b.painting {
		return nil, paint.ErrAlreadyPainting
	}
	b.painting = true
	return NewPainter(b.log), nil
}

func (b *Builder) Build() (paint.CanvasPainter, error) { return b.BeginPainting() }

func (b *Builder) Events() []paint.Event { return b.log.Events() }

// Painter is a CanvasPainter that appends every call to its log
// synchronously. Nothing is drawn and nothing is written on Export.
type Painter struct {
	log *paint.EventLog
}

var _ paint.CanvasPainter = (*Painter)(nil)

// NewPainter returns a mock painter appending to log; nil starts a new log.
func NewPainter(log *paint.EventLog) *Painter {
	if log == nil {
		log = paint.NewEventLog()
	}
	return &Painter{log: log}
}

// Clear is logged as a ClearEvent rather than the fill it stands for.
func (p *Painter) Clear(style paint.Style) paint.CanvasPainter {
	p.log.Append(paint.ClearEvent{Style: style})
	return p
}

func (p *Painter) FillRectangle(rect paint.Rect, style ...paint.Style) paint.CanvasPainter {
	e := paint.FillRectangleEvent{Rect: rect}
	if len(style) > 0 {
		s := style[0]
		e.Style = &s
	}
	p.log.Append(e)
	return p
}

func (p *Painter) StrokeRectangle(rect paint.Rect, stroke ...paint.Stroke) paint.CanvasPainter {
	e := paint.StrokeRectangleEvent{Rect: rect}
	if len(stroke) > 0 {
		s := stroke[0].Clone()
		e.Stroke = &s
	}
	p.log.Append(e)
	return p
}

func (p *Painter) FillText(text string, at paint.Point) paint.CanvasPainter {
	p.log.Append(paint.FillTextEvent{Text: text, At: at})
	return p
}

// DrawImage logs the resolved source if the handle has already settled,
// otherwise the source the handle was created with. It never waits.
func (p *Painter) DrawImage(img *paint.ImageHandle, at paint.Point, source ...paint.Rect) paint.CanvasPainter {
	e := paint.DrawImageEvent{At: at}
	if img != nil {
		e.Image = img.Src()
		if v, settled, err := img.Peek(); settled && err == nil && v != nil {
			e.Image = v.Src
		}
	}
	if len(source) > 0 {
		r := source[0]
		e.Source = &r
	}
	p.log.Append(e)
	return p
}

func (p *Painter) SetFillStyle(style paint.Style) paint.CanvasPainter {
	p.log.Append(paint.SetFillStyleEvent{Style: style})
	return p
}

func (p *Painter) SetStrokeStyle(style paint.Style) paint.CanvasPainter {
	p.log.Append(paint.SetStrokeStyleEvent{Style: style})
	return p
}

func (p *Painter) SetLineWidth(width float64) paint.CanvasPainter {
	p.log.Append(paint.SetLineWidthEvent{Width: width})
	return p
}

func (p *Painter) SetFontFamily(family string) paint.CanvasPainter {
	p.log.Append(paint.SetFontFamilyEvent{Family: family})
	return p
}

func (p *Painter) SetFontSize(size float64) paint.CanvasPainter {
	p.log.Append(paint.SetFontSizeEvent{Size: size})
	return p
}

// Export logs the export and returns an already resolved future.
func (p *Painter) Export(path string) *paint.Future[paint.CanvasPainter] {
	p.log.Append(paint.ExportEvent{To: path})
	return paint.Resolved[paint.CanvasPainter](p)
}

func (p *Painter) Settle() *paint.Future[paint.CanvasPainter] {
	return paint.Resolved[paint.CanvasPainter](p)
}

func (p *Painter) Events() []paint.Event { return p.log.Events() }

func (p *Painter) Close() error { return nil }
