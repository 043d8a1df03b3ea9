package colour

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a colour in CIE L*a*b* (D65).
// L is in [0, 100]; A and B are signed and unbounded.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// String returns the colour as "lab(L, a, b)".
func (l Lab) String() string {
	return fmt.Sprintf("lab(%.4f, %.4f, %.4f)", l.L, l.A, l.B)
}

// ToLab converts the device colour to L*a*b* using the sRGB transfer curve
// and the D65 white point.
func (c BGR) ToLab() Lab {
	return ToLab(c)
}

// ToLab converts a device colour to L*a*b*. go-colorful works on the unit
// scale, so the axes are multiplied back up to the CIE ranges.
func ToLab(c BGR) Lab {
	l, a, b := c.Colorful().Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// Colorful returns the device colour as a go-colorful sRGB colour.
func (c BGR) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Mode selects how a Converter produces L*a*b* values.
type Mode int

const (
	// ModeExact keeps the full floating point result.
	ModeExact Mode = iota
	// ModeQuantised passes the result through the 8-bit Lab encoding used
	// by common imaging libraries and rescales it back to canonical ranges.
	ModeQuantised
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeQuantised:
		return "quantised"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Converter turns device colours into L*a*b*.
// The zero value converts exactly.
type Converter struct {
	Mode Mode
}

// ToLab converts c according to the converter mode.
func (cv Converter) ToLab(c BGR) Lab {
	lab := ToLab(c)
	if cv.Mode == ModeQuantised {
		return DecodeLab8(EncodeLab8(lab))
	}
	return lab
}

// Lab8 is an 8-bit encoded L*a*b* colour: L scaled to [0, 255] and a, b
// offset by 128.
type Lab8 struct {
	L, A, B uint8
}

// EncodeLab8 rounds lab into the 8-bit encoding, saturating at the ends.
func EncodeLab8(lab Lab) Lab8 {
	return Lab8{
		L: saturate(lab.L * 255 / 100),
		A: saturate(lab.A + 128),
		B: saturate(lab.B + 128),
	}
}

// DecodeLab8 rescales an 8-bit encoded colour to L in [0, 100] and signed
// a, b axes.
func DecodeLab8(e Lab8) Lab {
	return Lab{
		L: float64(e.L) / 255 * 100,
		A: float64(e.A) - 128,
		B: float64(e.B) - 128,
	}
}

func saturate(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
