package paint

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"
)

// Painter draws on one surface. Calls are queued and run one at a time on a
// worker goroutine in the order they were issued; each applied call is
// mirrored into the event log.
type Painter struct {
	surface Surface
	ctx     Context
	log     *EventLog
	opts    Options

	width, height int

	// font is only touched from sequencer steps.
	font FontDescriptor

	seq       *sequencer
	closeOnce sync.Once
}

var _ CanvasPainter = (*Painter)(nil)

// NewPainter returns a painter for surface. Most callers get one from
// Builder.BeginPainting instead.
func NewPainter(surface Surface, width, height int, log *EventLog, opts Options) *Painter {
	if log == nil {
		log = NewEventLog()
	}
	return &Painter{
		surface: surface,
		ctx:     surface.Context(),
		log:     log,
		opts:    opts,
		width:   width,
		height:  height,
		font:    FontDescriptor{Family: DefaultFontFamily, Size: DefaultFontSize},
		seq:     newSequencer(context.Background(), opts.Debug),
	}
}

func (p *Painter) trace(msg string, args ...any) {
	if p.opts.Debug {
		Logger().Debug(msg, args...)
	}
}

func (p *Painter) do(name string, run func(ctx context.Context) error) CanvasPainter {
	if !p.seq.enqueue(step{name: name, run: run}) {
		p.trace("canvasbuilder: painter closed, dropping call", "call", name)
	}
	return p
}

// Clear fills the whole surface with style.
func (p *Painter) Clear(style Style) CanvasPainter {
	rect := Rect{0, 0, float64(p.width), float64(p.height)}
	return p.fillRectangle("clear", rect, &style)
}

// FillRectangle fills rect. With a style, the fill style is swapped for this
// one fill and restored right after.
func (p *Painter) FillRectangle(rect Rect, style ...Style) CanvasPainter {
	return p.fillRectangle("fillRectangle", rect, optional(style))
}

func (p *Painter) fillRectangle(name string, rect Rect, style *Style) CanvasPainter {
	return p.do(name, func(context.Context) error {
		p.trace("canvasbuilder: filling rectangle", "rect", rect, "style", style)
		prev := p.ctx.FillStyle()
		if style != nil {
			if err := p.ctx.SetFillStyle(*style); err != nil {
				return fmt.Errorf("填充矩形 %v 失败: %w", rect, err)
			}
		}
		err := p.ctx.FillRect(rect[0], rect[1], rect[2], rect[3])
		if style != nil {
			if rerr := p.ctx.SetFillStyle(prev); err == nil {
				err = rerr
			}
		}
		if err != nil {
			return fmt.Errorf("填充矩形 %v 失败: %w", rect, err)
		}
		p.log.Append(FillRectangleEvent{Rect: rect, Style: style})
		return nil
	})
}

// StrokeRectangle strokes rect. The stroke style and line width can each be
// overridden for this one stroke.
func (p *Painter) StrokeRectangle(rect Rect, stroke ...Stroke) CanvasPainter {
	var s *Stroke
	if len(stroke) > 0 {
		c := stroke[0].Clone()
		s = &c
	}
	return p.do("strokeRectangle", func(context.Context) error {
		p.trace("canvasbuilder: stroking rectangle", "rect", rect, "stroke", s)
		prevStyle, prevWidth := p.ctx.StrokeStyle(), p.ctx.LineWidth()
		overrideStyle := s != nil && s.Style != nil
		overrideWidth := s != nil && s.Width != nil
		if overrideStyle {
			if err := p.ctx.SetStrokeStyle(*s.Style); err != nil {
				return fmt.Errorf("描边矩形 %v 失败: %w", rect, err)
			}
		}
		if overrideWidth {
			p.ctx.SetLineWidth(*s.Width)
		}
		err := p.ctx.StrokeRect(rect[0], rect[1], rect[2], rect[3])
		if overrideStyle {
			if rerr := p.ctx.SetStrokeStyle(prevStyle); err == nil {
				err = rerr
			}
		}
		if overrideWidth {
			p.ctx.SetLineWidth(prevWidth)
		}
		if err != nil {
			return fmt.Errorf("描边矩形 %v 失败: %w", rect, err)
		}
		p.log.Append(StrokeRectangleEvent{Rect: rect, Stroke: s})
		return nil
	})
}

// FillText draws text with its baseline at at.
func (p *Painter) FillText(text string, at Point) CanvasPainter {
	return p.do("fillText", func(context.Context) error {
		p.trace("canvasbuilder: filling text", "text", text, "at", at, "font", p.font.String())
		if err := p.ctx.FillText(text, at[0], at[1]); err != nil {
			return fmt.Errorf("绘制文本 %q 失败: %w", text, err)
		}
		p.log.Append(FillTextEvent{Text: text, At: at})
		return nil
	})
}

// DrawImage draws img with its top-left corner at at once the image has
// resolved and every earlier call has run. With a source rectangle only that
// part of the image is drawn, unscaled. The source is clipped to the image
// bounds and the destination shifted by the clipped amount; a source with a
// negative width or height draws nothing. The event is logged either way.
func (p *Painter) DrawImage(img *ImageHandle, at Point, source ...Rect) CanvasPainter {
	src := optional(source)
	return p.do("drawImage", func(ctx context.Context) error {
		if img == nil {
			return fmt.Errorf("%w: 图片为空", ErrResolveImage)
		}
		resolved, err := img.Wait(ctx)
		if err != nil {
			if !errors.Is(err, ErrResolveImage) {
				err = fmt.Errorf("%w: %s: %w", ErrResolveImage, img.Src(), err)
			}
			return err
		}
		bounds := resolved.Bounds()
		r, x, y := bounds, at[0], at[1]
		switch {
		case src != nil && (src[2] < 0 || src[3] < 0):
			// 负宽高不做归一化，视为空区域。
			r = image.Rectangle{}
		case src != nil:
			want := image.Rect(
				int(math.Round(src[0])), int(math.Round(src[1])),
				int(math.Round(src[0]+src[2])), int(math.Round(src[1]+src[3])),
			).Add(bounds.Min)
			r = want.Intersect(bounds)
			x += float64(r.Min.X - want.Min.X)
			y += float64(r.Min.Y - want.Min.Y)
		}
		p.trace("canvasbuilder: drawing image", "src", resolved.Src, "subrectangle", src, "at", at)
		if r.Empty() {
			p.trace("canvasbuilder: source rectangle outside image, nothing drawn", "src", resolved.Src)
		} else if err := p.ctx.DrawImage(resolved.Image, r, x, y); err != nil {
			return fmt.Errorf("绘制图片 %s 失败: %w", resolved.Src, err)
		}
		p.log.Append(DrawImageEvent{Image: resolved.Src, At: at, Source: src})
		return nil
	})
}

// SetFillStyle sets the style for subsequent fills and text.
func (p *Painter) SetFillStyle(style Style) CanvasPainter {
	return p.do("setFillStyle", func(context.Context) error {
		if err := p.ctx.SetFillStyle(style); err != nil {
			return fmt.Errorf("设置填充样式 %s 失败: %w", style, err)
		}
		p.log.Append(SetFillStyleEvent{Style: style})
		return nil
	})
}

// SetStrokeStyle sets the style for subsequent strokes.
func (p *Painter) SetStrokeStyle(style Style) CanvasPainter {
	return p.do("setStrokeStyle", func(context.Context) error {
		if err := p.ctx.SetStrokeStyle(style); err != nil {
			return fmt.Errorf("设置描边样式 %s 失败: %w", style, err)
		}
		p.log.Append(SetStrokeStyleEvent{Style: style})
		return nil
	})
}

// SetLineWidth sets the width for subsequent strokes.
func (p *Painter) SetLineWidth(width float64) CanvasPainter {
	return p.do("setLineWidth", func(context.Context) error {
		p.ctx.SetLineWidth(width)
		p.log.Append(SetLineWidthEvent{Width: width})
		return nil
	})
}

// SetFontFamily sets the font family for subsequent text.
func (p *Painter) SetFontFamily(family string) CanvasPainter {
	return p.do("setFontFamily", func(context.Context) error {
		p.font.Family = family
		if err := p.applyFont(); err != nil {
			return err
		}
		p.log.Append(SetFontFamilyEvent{Family: family})
		return nil
	})
}

// SetFontSize sets the font size, in pixels, for subsequent text.
func (p *Painter) SetFontSize(size float64) CanvasPainter {
	return p.do("setFontSize", func(context.Context) error {
		p.font.Size = size
		if err := p.applyFont(); err != nil {
			return err
		}
		p.log.Append(SetFontSizeEvent{Size: size})
		return nil
	})
}

func (p *Painter) applyFont() error {
	if err := p.ctx.SetFont(p.font); err != nil {
		return fmt.Errorf("设置字体 %s 失败: %w", p.font, err)
	}
	return nil
}

// Export waits for every call issued before it, then writes the surface to
// path. Calls issued after Export are not part of its wait set. If any of the
// awaited calls failed, the future rejects and nothing is written.
func (p *Painter) Export(path string) *Future[CanvasPainter] {
	return p.barrier("export", func() error {
		p.trace("canvasbuilder: exporting", "to", path)
		if err := p.surface.WriteFile(path); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
		}
		p.log.Append(ExportEvent{To: path})
		return nil
	})
}

// Settle waits for every call issued before it without writing anything.
func (p *Painter) Settle() *Future[CanvasPainter] {
	return p.barrier("settle", nil)
}

func (p *Painter) barrier(name string, then func() error) *Future[CanvasPainter] {
	f := newFuture[CanvasPainter]()
	ok := p.seq.enqueue(step{name: name, barrier: func(_ context.Context, chainErr error) {
		if chainErr != nil {
			p.trace("canvasbuilder: chain failed", "barrier", name, "err", chainErr)
			f.settle(nil, chainErr)
			return
		}
		if then != nil {
			if err := then(); err != nil {
				f.settle(nil, err)
				return
			}
		}
		f.settle(p, nil)
	}})
	if !ok {
		f.settle(nil, ErrClosed)
	}
	return f
}

// Events returns a snapshot of the event log.
func (p *Painter) Events() []Event { return p.log.Events() }

// Close stops accepting calls and waits for queued ones to finish. Calling it
// is optional: the worker goroutine exits whenever the queue drains. Failures
// of calls not followed by an Export or Settle are dropped. A surface that
// implements io.Closer is closed afterwards.
func (p *Painter) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.seq.close()
		if c, ok := p.surface.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

func optional[T any](vals []T) *T {
	if len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}
