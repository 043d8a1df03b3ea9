// Package colour provides the device and uniform colour types used by the
// colour difference metrics, along with conversion and parsing helpers.
package colour

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	// ErrChannelRange is returned when a device channel lies outside [0, 255].
	ErrChannelRange = errors.New("channel value out of range [0, 255]")

	// ErrInvalidColour is returned when a colour string cannot be parsed.
	ErrInvalidColour = errors.New("invalid colour")
)

// BGR is an 8-bit device colour stored in blue, green, red channel order.
type BGR struct {
	B uint8 `json:"b"`
	G uint8 `json:"g"`
	R uint8 `json:"r"`
}

// NewBGR builds a BGR colour from integer channels.
// Values outside [0, 255] are rejected rather than clamped.
func NewBGR(b, g, r int) (BGR, error) {
	for _, ch := range []struct {
		name  string
		value int
	}{{"blue", b}, {"green", g}, {"red", r}} {
		if ch.value < 0 || ch.value > 255 {
			return BGR{}, fmt.Errorf("%s channel %d: %w", ch.name, ch.value, ErrChannelRange)
		}
	}
	return BGR{B: uint8(b), G: uint8(g), R: uint8(r)}, nil
}

// MustBGR is like NewBGR but panics on invalid input.
// Intended for constants and tests.
func MustBGR(b, g, r int) BGR {
	c, err := NewBGR(b, g, r)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the colour as "bgr(b, g, r)".
func (c BGR) String() string {
	return fmt.Sprintf("bgr(%d, %d, %d)", c.B, c.G, c.R)
}

// Hex returns the colour as an RGB-ordered hex string (e.g., "#1a2b3c").
func (c BGR) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color with full opacity.
func (c BGR) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// FromColor converts a color.Color to BGR, dropping alpha.
func FromColor(c color.Color) BGR {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return BGR{
		B: uint8(b >> 8),
		G: uint8(g >> 8),
		R: uint8(r >> 8),
	}
}
