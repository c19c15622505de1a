// Package fonts provides the built-in fallback fonts used when a font family
// has not been registered.
package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10oblique"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// FallbackFamily is the family name reported for the built-in sans font.
const FallbackFamily = "Latin Modern Sans"

var builtin = map[string][]byte{
	"sans-regular": lmsans10regular.TTF,
	"sans-bold":    lmsans10bold.TTF,
	"sans-oblique": lmsans10oblique.TTF,
	"mono-regular": lmmono10regular.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:sans-bold" 或直接 "sans-bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// Fallback returns the built-in sans face closest to the requested weight and slant.
func Fallback(bold, italic bool) []byte {
	switch {
	case bold:
		return lmsans10bold.TTF
	case italic:
		return lmsans10oblique.TTF
	default:
		return lmsans10regular.TTF
	}
}

// ForFamily returns the built-in face standing in for a generic CSS family
// such as "monospace". Anything else maps to the sans face.
func ForFamily(family string) []byte {
	if strings.EqualFold(family, "monospace") {
		return lmmono10regular.TTF
	}
	return lmsans10regular.TTF
}
