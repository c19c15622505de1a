package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#[0-9A-Za-z]+`},
		// '#' 后须跟空白、'#'、'!' 或行尾才是注释，"#fade" 总是颜色。
		{Name: "HashComment", Pattern: `#(?:[ \t#!][^\n]*)?`},
		{Name: "Dimension", Pattern: `-?(?:\d+\.\d*|\.\d+|\d+)(?:px|pt|mm|cm|in)\b`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d*|\.\d+|\d+)`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Key", Pattern: `[A-Za-z_][A-Za-z0-9_-]*=`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,;]`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Script is the root AST node of a paint script: a flat list of commands,
// one per line or separated by ';'.
type Script struct {
	Commands []*Command `parser:"( Newline | ';' )* ( @@ ( Newline | ';' )* )*"`
}

// Command is a single drawing or configuration instruction, e.g.
//
//	fill-rect 0 0 100 50 style=red
type Command struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident"`
	Args []*Arg         `parser:"@@*"`
}

// Arg is either a positional value or a key=value option.
type Arg struct {
	Option *Option `parser:"  @@"`
	Value  *Value  `parser:"| @@"`
}

// Option is a named argument.
type Option struct {
	Key   OptionKey `parser:"@Key"`
	Value *Value    `parser:"@@"`
}

// OptionKey strips the trailing '=' of a Key token on capture.
type OptionKey string

// Capture implements participle.Capture.
func (k *OptionKey) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("option key capture requires value")
	}
	*k = OptionKey(strings.TrimSuffix(values[0], "="))
	return nil
}

// Value is a literal argument.
type Value struct {
	Pos       lexer.Position `parser:"" json:"-"`
	String    *StringLiteral `parser:"  @String"`
	Dimension *Length        `parser:"| @Dimension"`
	Number    *float64       `parser:"| @Number"`
	Color     *ColorLiteral  `parser:"| @Color"`
	List      *List          `parser:"| @@"`
	Ident     *string        `parser:"| @Ident"`
}

// List captures `[n n n n]`; commas are optional.
type List struct {
	Numbers []float64 `parser:"'[' ( @Number ','? )* ']'"`
}

// Kind returns the human-readable value type.
func (v *Value) Kind() string {
	switch {
	case v == nil:
		return "none"
	case v.String != nil:
		return "string"
	case v.Number != nil:
		return "number"
	case v.Dimension != nil:
		return "length"
	case v.Color != nil:
		return "color"
	case v.List != nil:
		return "list"
	case v.Ident != nil:
		return "ident"
	default:
		return "unknown"
	}
}

// Text returns the value as text: strings unquoted, colors and identifiers as
// written, numbers formatted. Lists yield false.
func (v *Value) Text() (string, bool) {
	switch {
	case v == nil:
		return "", false
	case v.String != nil:
		return string(*v.String), true
	case v.Color != nil:
		return string(*v.Color), true
	case v.Ident != nil:
		return *v.Ident, true
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64), true
	case v.Dimension != nil:
		return v.Dimension.String(), true
	default:
		return "", false
	}
}

// Pixels returns a number or a length in canvas pixels.
func (v *Value) Pixels() (float64, bool) {
	switch {
	case v == nil:
		return 0, false
	case v.Number != nil:
		return *v.Number, true
	case v.Dimension != nil:
		return v.Dimension.Pixels(), true
	default:
		return 0, false
	}
}

// Positional returns the positional arguments in order.
func (c *Command) Positional() []*Value {
	var out []*Value
	for _, a := range c.Args {
		if a.Value != nil {
			out = append(out, a.Value)
		}
	}
	return out
}

// Option returns the value of the named option, or nil. The last occurrence wins.
func (c *Command) Option(key string) *Value {
	var found *Value
	for _, a := range c.Args {
		if a.Option != nil && string(a.Option.Key) == key {
			found = a.Option.Value
		}
	}
	return found
}

// Options returns the option names in order of appearance.
func (c *Command) Options() []string {
	var out []string
	for _, a := range c.Args {
		if a.Option != nil {
			out = append(out, string(a.Option.Key))
		}
	}
	return out
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// ColorLiteral is a "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa" token.
type ColorLiteral string

// Capture implements participle.Capture.
func (c *ColorLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("color capture requires value")
	}
	hex := strings.TrimPrefix(values[0], "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return fmt.Errorf("无效颜色 %s（注释需在 # 后加空格）", values[0])
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return fmt.Errorf("无效颜色 %s（注释需在 # 后加空格）", values[0])
	}
	*c = ColorLiteral(values[0])
	return nil
}

// Parse parses a script from an io.Reader.
func Parse(r io.Reader) (*Script, error) {
	return scriptParser.Parse("", r)
}

// ParseString parses a script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}

// ParseFile parses a script read from r, reporting positions against filename.
func ParseFile(filename string, r io.Reader) (*Script, error) {
	return scriptParser.Parse(filename, r)
}
