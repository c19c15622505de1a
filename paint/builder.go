package paint

import "fmt"

// Builder configures a canvas before the surface is materialized. It is not
// safe for concurrent use.
type Builder struct {
	engine Engine
	opts   Options
	log    *EventLog

	width, height int
	err           error
	painting      bool
}

var _ CanvasBuilder = (*Builder)(nil)

// NewBuilder returns a builder for an 800×600 canvas backed by engine.
func NewBuilder(engine Engine, opts ...Option) *Builder {
	return &Builder{
		engine: engine,
		opts:   buildOptions(opts),
		log:    NewEventLog(),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

// SetSize records the canvas size. The surface is created later by
// BeginPainting so that fonts registered afterwards are still picked up.
func (b *Builder) SetSize(width, height int) CanvasBuilder {
	b.width, b.height = width, height
	b.log.Append(SetSizeEvent{Width: width, Height: height})
	return b
}

// RegisterFont registers the font file at path with the engine. A failure is
// kept and returned by BeginPainting.
func (b *Builder) RegisterFont(path string, font Font) CanvasBuilder {
	if b.opts.Debug {
		Logger().Debug("canvasbuilder: registering font", "path", path, "family", font.Family)
	}
	if err := b.engine.RegisterFont(path, font); err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("注册字体 %s 失败: %w", path, err)
		}
		return b
	}
	b.log.Append(RegisterFontEvent{Path: path, Style: font})
	return b
}

// BeginPainting creates the surface at the configured size and returns a
// painter sharing this builder's event log. Calling it twice is a caller
// error and returns ErrAlreadyPainting.
func (b *Builder) BeginPainting() (CanvasPainter, error) {
	if b.painting {
		return nil, ErrAlreadyPainting
	}
	if b.err != nil {
		return nil, b.err
	}
	surface, err := b.engine.NewSurface(b.width, b.height)
	if err != nil {
		return nil, fmt.Errorf("创建 %dx%d 画布失败: %w", b.width, b.height, err)
	}
	b.painting = true
	if b.opts.Debug {
		Logger().Debug("canvasbuilder: created surface", "width", b.width, "height", b.height)
	}
	return NewPainter(surface, b.width, b.height, b.log, b.opts), nil
}

// Build is an alias of BeginPainting.
func (b *Builder) Build() (CanvasPainter, error) { return b.BeginPainting() }

// Events returns a snapshot of the event log.
func (b *Builder) Events() []Event { return b.log.Events() }
