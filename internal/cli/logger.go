package cli

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// newLogger returns the CLI logger. Verbose enables debug output, quiet
// limits output to errors, and otherwise only warnings are shown.
func newLogger(out io.Writer, verbose, quiet bool) hclog.Logger {
	level := hclog.Warn
	switch {
	case quiet:
		level = hclog.Error
	case verbose:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "deltae",
		Output: out,
		Level:  level,
	})
}
