// Package ggrenderer implements the drawing engine on top of
// github.com/gogpu/gg.
package ggrenderer

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/ByLCY/canvasbuilder/fonts"
	"github.com/ByLCY/canvasbuilder/paint"
	"github.com/ByLCY/canvasbuilder/renderer"
)

// Engine creates gogpu/gg surfaces. Registered fonts are shared by every
// Engine in the process.
type Engine struct {
	baseDir string
}

var _ paint.Engine = (*Engine)(nil)

// NewEngine creates a gg engine rooted at baseDir for resolving font paths.
func NewEngine(baseDir string) *Engine { return &Engine{baseDir: baseDir} }

type fontRegistry struct {
	mu       sync.Mutex
	seen     map[string]bool
	families map[string]*text.FontSource
	fallback map[string]*text.FontSource
}

var registry = &fontRegistry{
	seen:     map[string]bool{},
	families: map[string]*text.FontSource{},
	fallback: map[string]*text.FontSource{},
}

// RegisterFont loads the font file at path under font.Family. gg has no
// style matching, so the first registration of a family wins, except that a
// regular-weight upright face replaces an earlier styled one.
func (e *Engine) RegisterFont(path string, font paint.Font) error {
	full := path
	if !strings.HasPrefix(path, "embed:") && !filepath.IsAbs(path) && e.baseDir != "" {
		full = filepath.Join(e.baseDir, path)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	regKey := renderer.RegistrationKey(full, font)
	if registry.seen[regKey] {
		return nil
	}
	data, err := renderer.LoadFontBytes(full, font)
	if err != nil {
		return err
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", path, err)
	}
	key := familyKey(font.Family)
	face := renderer.ParseFontFace(font)
	if _, exists := registry.families[key]; !exists || (face.Weight == 400 && !face.Italic) {
		registry.families[key] = src
	}
	registry.seen[regKey] = true
	return nil
}

func (r *fontRegistry) source(family string) (*text.FontSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := familyKey(family)
	if src, ok := r.families[key]; ok {
		return src, nil
	}
	name := "sans"
	if key == "monospace" {
		name = "monospace"
	}
	if src, ok := r.fallback[name]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(fonts.ForFamily(name))
	if err != nil {
		return nil, fmt.Errorf("加载后备字体失败: %w", err)
	}
	r.fallback[name] = src
	return src, nil
}

func familyKey(family string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(family), `"'`))
}

// NewSurface creates a width×height gg context.
func (e *Engine) NewSurface(width, height int) (paint.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %dx%d", width, height)
	}
	black := paint.Named("#000000")
	return &Surface{ctx: &Context{
		gc:        gg.NewContext(width, height),
		fillStyle: black,
		fill:      gg.Solid(gg.Black),
		strokeSty: black,
		stroke:    gg.Solid(gg.Black),
		lineWidth: 1,
		font:      paint.FontDescriptor{Family: paint.DefaultFontFamily, Size: paint.DefaultFontSize},
	}}, nil
}

// Surface is one gg raster.
type Surface struct {
	ctx *Context
}

func (s *Surface) Context() paint.Context { return s.ctx }

func (s *Surface) WriteFile(path string) error {
	if err := s.ctx.gc.SavePNG(path); err != nil {
		return fmt.Errorf("写入 PNG %s 失败: %w", path, err)
	}
	return nil
}

// Close releases the gg context.
func (s *Surface) Close() error { return s.ctx.gc.Close() }

// Context keeps separate fill and stroke brushes; gg shares one brush
// between the two, so the right one is applied before every draw.
type Context struct {
	gc *gg.Context

	fillStyle paint.Style
	fill      gg.Brush
	strokeSty paint.Style
	stroke    gg.Brush
	lineWidth float64

	font paint.FontDescriptor
	face text.Face
}

func (c *Context) FillStyle() paint.Style { return c.fillStyle }

func (c *Context) SetFillStyle(style paint.Style) error {
	b, err := toBrush(style)
	if err != nil {
		return err
	}
	c.fillStyle, c.fill = style, b
	return nil
}

func (c *Context) StrokeStyle() paint.Style { return c.strokeSty }

func (c *Context) SetStrokeStyle(style paint.Style) error {
	b, err := toBrush(style)
	if err != nil {
		return err
	}
	c.strokeSty, c.stroke = style, b
	return nil
}

func (c *Context) LineWidth() float64 { return c.lineWidth }

func (c *Context) SetLineWidth(width float64) { c.lineWidth = width }

// SetFont resolves the face lazily on the next text draw.
func (c *Context) SetFont(font paint.FontDescriptor) error {
	if font != c.font {
		c.font, c.face = font, nil
	}
	return nil
}

// toBrush maps named styles to solid brushes. Gradient and pattern handles
// must be gg.Brush values.
func toBrush(style paint.Style) (gg.Brush, error) {
	if b, ok := style.Handle.(gg.Brush); ok && style.Kind != paint.StyleNamed {
		return b, nil
	}
	col, err := renderer.StyleColor(style)
	if err != nil {
		return nil, err
	}
	return gg.Solid(gg.FromColor(col)), nil
}

func (c *Context) FillRect(x, y, w, h float64) error {
	c.gc.SetFillBrush(c.fill)
	c.gc.DrawRectangle(x, y, w, h)
	return c.gc.Fill()
}

func (c *Context) StrokeRect(x, y, w, h float64) error {
	c.gc.SetStrokeBrush(c.stroke)
	c.gc.SetLineWidth(c.lineWidth)
	c.gc.DrawRectangle(x, y, w, h)
	return c.gc.Stroke()
}

func (c *Context) FillText(s string, x, y float64) error {
	if c.face == nil {
		src, err := registry.source(c.font.Family)
		if err != nil {
			return err
		}
		c.face = src.Face(c.font.Size)
	}
	c.gc.SetFillBrush(c.fill)
	c.gc.SetFont(c.face)
	c.gc.DrawString(s, x, y)
	return nil
}

func (c *Context) DrawImage(img image.Image, src image.Rectangle, x, y float64) error {
	r := src.Sub(img.Bounds().Min)
	c.gc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             x,
		Y:             y,
		SrcRect:       &r,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
	})
	return nil
}
