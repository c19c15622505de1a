package paint

import (
	"encoding/json"
	"fmt"
)

// StyleKind tags the variant held by a Style.
type StyleKind int

const (
	StyleNamed    StyleKind = iota // CSS color name or hex string
	StyleGradient                  // engine-native gradient
	StylePattern                   // engine-native pattern
)

func (k StyleKind) String() string {
	switch k {
	case StyleNamed:
		return "named"
	case StyleGradient:
		return "gradient"
	case StylePattern:
		return "pattern"
	default:
		return fmt.Sprintf("StyleKind(%d)", int(k))
	}
}

// Style is a fill or stroke style: either a named color or an opaque engine
// handle (gradient/pattern) that is passed through to the engine untouched.
type Style struct {
	Kind   StyleKind
	Name   string
	Handle any
}

// Named returns a style referring to a color by name, e.g. "red" or "#ff0000".
func Named(name string) Style { return Style{Kind: StyleNamed, Name: name} }

// Gradient wraps an engine-native gradient handle.
func Gradient(handle any) Style { return Style{Kind: StyleGradient, Handle: handle} }

// Pattern wraps an engine-native pattern handle.
func Pattern(handle any) Style { return Style{Kind: StylePattern, Handle: handle} }

func (s Style) String() string {
	if s.Kind == StyleNamed {
		return s.Name
	}
	return fmt.Sprintf("<%s %T>", s.Kind, s.Handle)
}

// MarshalJSON encodes named styles as plain strings and handles as a short tag.
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
