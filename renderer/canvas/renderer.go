// Package canvasrenderer implements the drawing engine on top of
// github.com/tdewolff/canvas. One canvas unit is one pixel.
package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"golang.org/x/image/draw"

	"github.com/ByLCY/canvasbuilder/fonts"
	"github.com/ByLCY/canvasbuilder/paint"
	"github.com/ByLCY/canvasbuilder/renderer"
)

// pxToPt converts a font size in canvas units to the points expected by
// FontFamily.Face, which treats one unit as a millimetre.
const pxToPt = 72.0 / 25.4

// Engine creates tdewolff/canvas surfaces. Registered fonts are shared by
// every Engine in the process.
type Engine struct {
	baseDir string
}

var _ paint.Engine = (*Engine)(nil)

// NewEngine creates a canvas engine rooted at baseDir for resolving font paths.
func NewEngine(baseDir string) *Engine { return &Engine{baseDir: baseDir} }

// fontRegistry 是进程级的字体注册表，按路径幂等。
type fontRegistry struct {
	mu       sync.Mutex
	seen     map[string]bool
	families map[string]*familyEntry
	fallback map[string]*canvas.FontFamily
}

type familyEntry struct {
	family *canvas.FontFamily
	styles []canvas.FontStyle
}

var registry = &fontRegistry{
	seen:     map[string]bool{},
	families: map[string]*familyEntry{},
	fallback: map[string]*canvas.FontFamily{},
}

// RegisterFont loads the font file at path into the family named by font.
// Registering the same path for the same family and face again is a no-op.
// Paths prefixed with "embed:" name a built-in font, see renderer.LoadFontBytes.
func (e *Engine) RegisterFont(path string, font paint.Font) error {
	full := e.resolve(path)
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
	style := toCanvasStyle(renderer.ParseFontFace(font))
	key := familyKey(font.Family)
	entry, ok := registry.families[key]
	if !ok {
		entry = &familyEntry{family: canvas.NewFontFamily(font.Family)}
	}
	if err := entry.family.LoadFont(data, 0, style); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", path, err)
	}
	entry.styles = append(entry.styles, style)
	registry.families[key] = entry
	registry.seen[regKey] = true
	return nil
}

func (e *Engine) resolve(path string) string {
	if strings.HasPrefix(path, "embed:") || filepath.IsAbs(path) || e.baseDir == "" {
		return path
	}
	return filepath.Join(e.baseDir, path)
}

// face returns a font face for family. Unregistered families, including the
// generic CSS ones, use the built-in fallback.
func (r *fontRegistry) face(family string, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.families[familyKey(family)]; ok && len(entry.styles) > 0 {
		style := entry.styles[0]
		for _, s := range entry.styles {
			if s == canvas.FontRegular {
				style = s
				break
			}
		}
		return entry.family.Face(sizePx*pxToPt, col, style, canvas.FontNormal), nil
	}
	name := "sans"
	if familyKey(family) == "monospace" {
		name = "monospace"
	}
	fb, ok := r.fallback[name]
	if !ok {
		fb = canvas.NewFontFamily(fonts.FallbackFamily)
		if err := fb.LoadFont(fonts.ForFamily(name), 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载后备字体失败: %w", err)
		}
		r.fallback[name] = fb
	}
	return fb.Face(sizePx*pxToPt, col, canvas.FontRegular, canvas.FontNormal), nil
}

func familyKey(family string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(family), `"'`))
}

func toCanvasStyle(face renderer.FontFace) canvas.FontStyle {
	var result canvas.FontStyle
	switch {
	case face.Weight >= 900:
		result = canvas.FontBlack
	case face.Weight >= 800:
		result = canvas.FontExtraBold
	case face.Weight >= 700:
		result = canvas.FontBold
	case face.Weight >= 600:
		result = canvas.FontSemiBold
	case face.Weight >= 500:
		result = canvas.FontMedium
	case face.Weight >= 300 && face.Weight < 400:
		result = canvas.FontLight
	case face.Weight < 300:
		result = canvas.FontExtraLight
	default:
		result = canvas.FontRegular
	}
	if face.Italic {
		result |= canvas.FontItalic
	}
	return result
}

// NewSurface creates a width×height canvas with a top-left origin.
func (e *Engine) NewSurface(width, height int) (paint.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %dx%d", width, height)
	}
	c := canvas.New(float64(width), float64(height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与 HTML canvas 保持左上角为原点
	s := &Surface{canvas: c}
	s.ctx = &Context{
		ctx:       ctx,
		fillStyle: paint.Named("#000000"),
		fill:      canvas.Black,
		stroke:    canvas.Black,
		strokeSty: paint.Named("#000000"),
		lineWidth: 1,
		font:      paint.FontDescriptor{Family: paint.DefaultFontFamily, Size: paint.DefaultFontSize},
	}
	return s, nil
}

// Surface is one tdewolff/canvas drawing.
type Surface struct {
	canvas *canvas.Canvas
	ctx    *Context
}

func (s *Surface) Context() paint.Context { return s.ctx }

// WriteFile rasterizes the canvas at one pixel per unit and writes it as PNG.
func (s *Surface) WriteFile(path string) error {
	if err := s.canvas.WriteFile(path, renderers.PNG(canvas.DPMM(1.0))); err != nil {
		return fmt.Errorf("写入 PNG %s 失败: %w", path, err)
	}
	return nil
}

// Context carries the HTML-canvas-like drawing state over a canvas.Context.
type Context struct {
	ctx *canvas.Context

	fillStyle paint.Style
	fill      any // color.Color or an engine-native gradient/pattern
	strokeSty paint.Style
	stroke    any
	lineWidth float64
	font      paint.FontDescriptor
}

func (c *Context) FillStyle() paint.Style { return c.fillStyle }

func (c *Context) SetFillStyle(style paint.Style) error {
	v, err := resolvePaint(style)
	if err != nil {
		return err
	}
	c.fillStyle, c.fill = style, v
	return nil
}

func (c *Context) StrokeStyle() paint.Style { return c.strokeSty }

func (c *Context) SetStrokeStyle(style paint.Style) error {
	v, err := resolvePaint(style)
	if err != nil {
		return err
	}
	c.strokeSty, c.stroke = style, v
	return nil
}

func (c *Context) LineWidth() float64 { return c.lineWidth }

func (c *Context) SetLineWidth(width float64) { c.lineWidth = width }

func (c *Context) SetFont(font paint.FontDescriptor) error {
	c.font = font
	return nil
}

// resolvePaint turns a style into something canvas.Context.SetFill accepts.
// Gradient and pattern handles must already be tdewolff/canvas values.
func resolvePaint(style paint.Style) (any, error) {
	if style.Kind != paint.StyleNamed && style.Handle != nil {
		return style.Handle, nil
	}
	col, err := renderer.StyleColor(style)
	if err != nil {
		return nil, err
	}
	return col, nil
}

func (c *Context) FillRect(x, y, w, h float64) error {
	c.ctx.Push()
	defer c.ctx.Pop()
	c.ctx.SetFill(c.fill)
	c.ctx.SetStrokeColor(canvas.Transparent)
	c.ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	return nil
}

func (c *Context) StrokeRect(x, y, w, h float64) error {
	c.ctx.Push()
	defer c.ctx.Pop()
	c.ctx.SetFillColor(canvas.Transparent)
	c.ctx.SetStroke(c.stroke)
	c.ctx.SetStrokeWidth(c.lineWidth)
	c.ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	return nil
}

// FillText draws text in the current fill color with its baseline at y.
func (c *Context) FillText(text string, x, y float64) error {
	col, ok := c.fill.(color.Color)
	if !ok {
		return fmt.Errorf("%w: 文本仅支持纯色填充，当前为 %s", paint.ErrUnsupportedStyle, c.fillStyle)
	}
	face, err := registry.face(c.font.Family, c.font.Size, col)
	if err != nil {
		return err
	}
	c.ctx.DrawText(x, y, canvas.NewTextLine(face, text, canvas.Left))
	return nil
}

// DrawImage draws the src part of img unscaled with its top-left corner at (x, y).
func (c *Context) DrawImage(img image.Image, src image.Rectangle, x, y float64) error {
	if src != img.Bounds() {
		sub := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
		draw.Copy(sub, image.Point{}, img, src, draw.Src, nil)
		img = sub
	}
	c.ctx.DrawImage(x, y, img, canvas.DPMM(1.0))
	return nil
}
