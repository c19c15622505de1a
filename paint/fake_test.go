package paint

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// recordingEngine 记录所有绘制调用，供测试断言执行顺序与样式覆盖。
type recordingEngine struct {
	mu       sync.Mutex
	ops      []string
	fonts    []string
	failFont error
	failFill error
	failSave error
	created  int
}

func (e *recordingEngine) RegisterFont(path string, font Font) error {
	if e.failFont != nil {
		return e.failFont
	}
	e.fonts = append(e.fonts, path)
	return nil
}

func (e *recordingEngine) NewSurface(width, height int) (Surface, error) {
	e.created++
	return &recordingSurface{engine: e, width: width, height: height, ctx: &recordingContext{
		engine: e,
		fill:   Named("black"),
		stroke: Named("black"),
		width:  1,
		font:   FontDescriptor{Family: DefaultFontFamily, Size: DefaultFontSize},
	}}, nil
}

func (e *recordingEngine) record(format string, args ...any) {
	e.mu.Lock()
	e.ops = append(e.ops, fmt.Sprintf(format, args...))
	e.mu.Unlock()
}

func (e *recordingEngine) Ops() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ops...)
}

type recordingSurface struct {
	engine        *recordingEngine
	width, height int
	ctx           *recordingContext
}

func (s *recordingSurface) Context() Context { return s.ctx }

func (s *recordingSurface) WriteFile(path string) error {
	if s.engine.failSave != nil {
		return s.engine.failSave
	}
	s.engine.record("write %s", path)
	return nil
}

type recordingContext struct {
	engine *recordingEngine
	fill   Style
	stroke Style
	width  float64
	font   FontDescriptor
}

var errBadStyle = errors.New("bad style")

func (c *recordingContext) FillStyle() Style { return c.fill }

func (c *recordingContext) SetFillStyle(s Style) error {
	if s.Kind == StyleNamed && s.Name == "bogus" {
		return errBadStyle
	}
	c.fill = s
	return nil
}

func (c *recordingContext) StrokeStyle() Style { return c.stroke }

func (c *recordingContext) SetStrokeStyle(s Style) error {
	c.stroke = s
	return nil
}

func (c *recordingContext) LineWidth() float64 { return c.width }

func (c *recordingContext) SetLineWidth(w float64) { c.width = w }

func (c *recordingContext) SetFont(d FontDescriptor) error {
	c.font = d
	return nil
}

func (c *recordingContext) FillRect(x, y, w, h float64) error {
	if c.engine.failFill != nil {
		return c.engine.failFill
	}
	c.engine.record("fill %v %v %v %v %s", x, y, w, h, c.fill)
	return nil
}

func (c *recordingContext) StrokeRect(x, y, w, h float64) error {
	c.engine.record("stroke %v %v %v %v %s %v", x, y, w, h, c.stroke, c.width)
	return nil
}

func (c *recordingContext) FillText(text string, x, y float64) error {
	c.engine.record("text %q %v %v %s %s", text, x, y, c.font, c.fill)
	return nil
}

func (c *recordingContext) DrawImage(img image.Image, src image.Rectangle, x, y float64) error {
	c.engine.record("image %v %v %v", src, x, y)
	return nil
}
