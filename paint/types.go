package paint

import (
	"fmt"
	"strconv"
)

// 默认画布尺寸与字体，与 HTML canvas 的默认值保持一致。
const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultFontFamily = "sans-serif"
	DefaultFontSize   = 10.0
)

// Rect is x, y, width and height. It is an array so every call receives its own copy.
type Rect [4]float64

// Point is x and y.
type Point [2]float64

// X returns the left edge.
func (r Rect) X() float64 { return r[0] }

// Y returns the top edge.
func (r Rect) Y() float64 { return r[1] }

// W returns the width.
func (r Rect) W() float64 { return r[2] }

// H returns the height.
func (r Rect) H() float64 { return r[3] }

// Font describes a font file being registered with the engine.
type Font struct {
	Family string `json:"family"`
	Style  string `json:"style,omitempty"`
	Weight string `json:"weight,omitempty"`
}

// FontDescriptor is the combined font state applied before drawing text.
type FontDescriptor struct {
	Family string
	Size   float64
}

// String renders the descriptor in CSS shorthand, e.g. `10px "sans-serif"`.
func (d FontDescriptor) String() string {
	return strconv.FormatFloat(d.Size, 'f', -1, 64) + "px " + strconv.Quote(d.Family)
}

// Stroke optionally overrides the stroke style and line width for a single stroke.
// Either field may be set without the other.
type Stroke struct {
	Style *Style   `json:"style,omitempty"`
	Width *float64 `json:"width,omitempty"`
}

// WithStyle returns a copy of s with the style set.
func (s Stroke) WithStyle(style Style) Stroke {
	s.Style = &style
	return s
}

// WithWidth returns a copy of s with the width set.
func (s Stroke) WithWidth(width float64) Stroke {
	s.Width = &width
	return s
}

// Clone returns a copy of s that shares no pointers with it.
func (s Stroke) Clone() Stroke {
	var c Stroke
	if s.Style != nil {
		style := *s.Style
		c.Style = &style
	}
	if s.Width != nil {
		width := *s.Width
		c.Width = &width
	}
	return c
}

func (s Stroke) String() string {
	style, width := "<current>", "<current>"
	if s.Style != nil {
		style = s.Style.String()
	}
	if s.Width != nil {
		width = strconv.FormatFloat(*s.Width, 'f', -1, 64)
	}
	return fmt.Sprintf("{style: %s, width: %s}", style, width)
}

// Options configures a builder and the painters it produces.
type Options struct {
	// Debug enables diagnostic tracing through the package logger.
	Debug bool
}

// Option mutates Options.
type Option func(*Options)

// WithDebug toggles diagnostic tracing.
func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
