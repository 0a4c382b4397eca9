package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths used by the profile DSL and the
// renderers. Layout math is done in millimetres, font sizes in points and
// raster output in pixels at a configured DPI.

// Unit represents the original unit of a length value as written in a profile.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like counts or DPI
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt, mm and inches.
const (
	PtToMm  = 0.352777
	MmToPt  = 1.0 / PtToMm
	MmPerIn = 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// IsZero reports whether the length has a zero value, whatever its unit.
func (l Length) IsZero() bool { return l.Value == 0 }

// String formats the length with its unit suffix, e.g. "12mm" or "3".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + UnitToString(l.Unit)
}

// ToMM converts the length to millimetres. Unit-less values are taken as mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * MmPerIn
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts the length to points. Unit-less values are taken as pt,
// which is what font sizes are written in.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM, UnitCM, UnitIN:
		return l.ToMM() * MmToPt
	default:
		return l.Value
	}
}

// ParseRawLengthStr parses a length string such as "38mm" or "30pt",
// preserving its unit. ok is false when the numeric part is not a number.
func ParseRawLengthStr(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// MmToPx converts millimetres to pixels at dpi.
func MmToPx(mm, dpi float64) float64 { return mm / MmPerIn * dpi }

// PxToMm converts pixels at dpi to millimetres.
func PxToMm(px, dpi float64) float64 { return px / dpi * MmPerIn }

// PixelSize returns the integer pixel dimensions of a mm-sized area at dpi.
func PixelSize(widthMM, heightMM, dpi float64) (int, int) {
	return int(math.Round(MmToPx(widthMM, dpi))), int(math.Round(MmToPx(heightMM, dpi)))
}
