// Package cli provides the command-line interface for deltae.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/deltae/internal/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose bool
	quiet   bool
}

// logger builds the command logger on the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) hclog.Logger {
	return newLogger(cmd.ErrOrStderr(), o.verbose, o.quiet)
}

// NewRootCmd builds the deltae command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "deltae",
		Short: "Perceptual colour difference calculator",
		Long: `deltae measures how different two colours look to a human observer.

Colours are converted to CIE L*a*b* (D65) and compared with either the
Euclidean CIE76 distance or the CIEDE2000 formula, and flagged when the
difference reaches the just-noticeable threshold for that formula.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompareCmd(opts))

	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if !asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}
			jsonBytes, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to convert to JSON: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")

	return cmd
}
