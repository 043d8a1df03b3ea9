package colour

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseBGR parses a device colour from one of:
//   - a "b,g,r" triplet of decimal channels, optionally wrapped as "bgr(b, g, r)"
//   - an RGB-ordered hex code, "#rrggbb" or "#rgb"
//   - an SVG 1.1 colour name such as "darkolivegreen"
func ParseBGR(s string) (BGR, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BGR{}, fmt.Errorf("empty colour: %w", ErrInvalidColour)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "#"):
		return parseHex(lower[1:])
	case strings.HasPrefix(lower, "bgr(") && strings.HasSuffix(lower, ")"):
		return parseTriplet(lower[len("bgr(") : len(lower)-1])
	case strings.Contains(lower, ","):
		return parseTriplet(lower)
	}

	if c, ok := colornames.Map[lower]; ok {
		return FromColor(c), nil
	}
	return BGR{}, fmt.Errorf("%q: %w", s, ErrInvalidColour)
}

func parseTriplet(s string) (BGR, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return BGR{}, fmt.Errorf("%q: expected 3 channels, got %d: %w", s, len(parts), ErrInvalidColour)
	}

	var ch [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return BGR{}, fmt.Errorf("channel %q: %w", strings.TrimSpace(p), ErrInvalidColour)
		}
		ch[i] = v
	}
	return NewBGR(ch[0], ch[1], ch[2])
}

func parseHex(h string) (BGR, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return BGR{}, fmt.Errorf("hex %q: expected 3 or 6 digits: %w", h, ErrInvalidColour)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return BGR{}, fmt.Errorf("hex %q: %w", h, ErrInvalidColour)
	}
	return BGR{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}
