// deltae - perceptual colour difference calculator
//
// deltae converts colours to CIE L*a*b* and reports their CIE76 and
// CIEDE2000 differences.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/deltae/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
