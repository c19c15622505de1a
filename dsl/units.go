package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the unit a length was written in.
type Unit int

const (
	UnitPX Unit = iota // canvas pixels, also used for bare numbers
	UnitPT             // points
	UnitMM             // millimeters
	UnitCM             // centimeters
	UnitIN             // inches
)

// CSS reference conversions: 1in = 96px = 72pt = 25.4mm.
const (
	PxPerIn = 96.0
	PxPerPt = PxPerIn / 72
	PxPerMm = PxPerIn / 25.4
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}}

func (u Unit) String() string {
	for _, suf := range unitSuffixes {
		if suf.u == u {
			return suf.s
		}
	}
	return ""
}

// Length preserves a numeric value with the unit it was written in.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Pixels converts l to canvas pixels.
func (l Length) Pixels() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerPt
	case UnitMM:
		return l.Value * PxPerMm
	case UnitCM:
		return l.Value * 10 * PxPerMm
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength parses "12pt", "2.5mm" or a bare number (pixels).
func ParseLength(value string) (Length, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	unit, num := UnitPX, lower
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(lower, suf.s) {
			unit, num = suf.u, strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无效长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// Capture implements participle.Capture.
func (l *Length) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("length capture requires value")
	}
	parsed, err := ParseLength(values[0])
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
