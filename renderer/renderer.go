// Package renderer holds helpers shared by the drawing engines.
package renderer

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/ByLCY/canvasbuilder/fonts"
	"github.com/ByLCY/canvasbuilder/paint"
)

// ParseColor resolves a named style: a CSS color name, "transparent" or a
// #rgb, #rgba, #rrggbb or #rrggbbaa hex string.
func ParseColor(name string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("%w: 空颜色", paint.ErrUnknownColor)
	}
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	if strings.HasPrefix(s, "#") {
		c, ok := parseHex(s[1:])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("%w: %s", paint.ErrUnknownColor, name)
		}
		return c, nil
	}
	c, ok := colornames.Map[s]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %s", paint.ErrUnknownColor, name)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}

func parseHex(hex string) (color.NRGBA, bool) {
	var short bool
	switch len(hex) {
	case 3, 4:
		short = true
	case 6, 8:
	default:
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	var ch [4]uint8
	ch[3] = 0xff
	n := len(hex)
	if short {
		for i := 0; i < n; i++ {
			nib := uint8(v>>(4*(n-1-i))) & 0xf
			ch[i] = nib * 17
		}
	} else {
		for i := 0; i < n/2; i++ {
			ch[i] = uint8(v >> (8 * (n/2 - 1 - i)))
		}
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

// StyleColor returns the color for a named style. Gradient and pattern
// handles are left to the engine and yield ErrUnsupportedStyle here.
func StyleColor(s paint.Style) (color.NRGBA, error) {
	if s.Kind != paint.StyleNamed {
		return color.NRGBA{}, fmt.Errorf("%w: %s", paint.ErrUnsupportedStyle, s)
	}
	return ParseColor(s.Name)
}

// FontFace is the parsed weight and slant of a registered font.
type FontFace struct {
	// Weight is the CSS numeric weight, 100 to 900.
	Weight int
	Italic bool
}

// Bold reports whether the weight is 600 or heavier.
func (f FontFace) Bold() bool { return f.Weight >= 600 }

// ParseFontFace reads the style and weight strings of a font registration.
// Weight accepts CSS keywords or numbers; style accepts "normal", "italic"
// or "oblique".
func ParseFontFace(font paint.Font) FontFace {
	face := FontFace{Weight: parseWeight(font.Weight)}
	s := strings.ToLower(font.Style)
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		face.Italic = true
	}
	return face
}

func parseWeight(w string) int {
	s := strings.ToLower(strings.TrimSpace(w))
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	switch {
	case s == "":
		return 400
	case strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		return 900
	case strings.Contains(s, "extrabold"), strings.Contains(s, "ultrabold"):
		return 800
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		return 600
	case strings.Contains(s, "bold"):
		return 700
	case strings.Contains(s, "medium"):
		return 500
	case strings.Contains(s, "extralight"), strings.Contains(s, "thin"):
		return 200
	case strings.Contains(s, "light"):
		return 300
	default:
		return 400
	}
}

// LoadFontBytes reads the font at path for a registration of font. Paths
// prefixed with "embed:" name a built-in face; "embed:sans" picks the
// built-in sans closest to the registration's weight and slant.
func LoadFontBytes(path string, font paint.Font) ([]byte, error) {
	switch {
	case strings.EqualFold(path, "embed:sans"):
		face := ParseFontFace(font)
		return fonts.Fallback(face.Bold(), face.Italic), nil
	case strings.HasPrefix(path, "embed:"):
		return fonts.Load(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// RegistrationKey identifies a font registration: the same file registered
// again under the same family and face is a no-op for the engines.
func RegistrationKey(path string, font paint.Font) string {
	face := ParseFontFace(font)
	family := strings.ToLower(strings.Trim(strings.TrimSpace(font.Family), `"'`))
	return fmt.Sprintf("%s\x00%s\x00%d\x00%t", path, family, face.Weight, face.Italic)
}
