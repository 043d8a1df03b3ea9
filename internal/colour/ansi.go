package colour

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns an ANSI-coloured block for a colour.
// Width specifies how many characters wide the block should be.
func ColourPreview(c BGR, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bgColour + strings.Repeat(" ", width) + ansiReset
}

// ColourPreviewWithText returns a colour block with centred text.
// The text colour is black or white, whichever contrasts more with c.
func ColourPreviewWithText(c BGR, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	fg := BGR{}
	if ContrastRatio(c, fg) < ContrastRatio(c, BGR{B: 255, G: 255, R: 255}) {
		fg = BGR{B: 255, G: 255, R: 255}
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	fgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix)

	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return bgColour + fgColour + displayText + ansiReset
}

// FormatColourWithLabel formats a colour as a swatch carrying its hex code,
// followed by a label and the BGR channels.
func FormatColourWithLabel(c BGR, label string, width int) string {
	return fmt.Sprintf("%s  %-8s %s", ColourPreviewWithText(c, c.Hex(), width), label, c)
}

// SupportsANSIColours reports whether f is a terminal that should receive
// ANSI colour sequences. NO_COLOR and TERM=dumb disable colour.
func SupportsANSIColours(f *os.File) bool {
	if f == nil {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
