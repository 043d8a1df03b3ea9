package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/deltae/internal/colour"
	"github.com/jmylchreest/deltae/internal/config"
	"github.com/jmylchreest/deltae/internal/deltae"
)

// compareOptions holds the compare command flags.
type compareOptions struct {
	metric    string
	format    string
	preview   string
	threshold float64
	cie76JND  float64
	de2000JND float64
	weights   deltae.Weights
	quantise  bool
	explain   bool
	verdict   bool
}

// colourReport describes one parsed input colour.
type colourReport struct {
	Input string     `json:"input"`
	BGR   colour.BGR `json:"bgr"`
	Hex   string     `json:"hex"`
	Lab   colour.Lab `json:"lab"`
}

// compareReport is everything the compare command computes.
type compareReport struct {
	Colours  [2]colourReport `json:"colours"`
	Mode     string          `json:"mode"`
	Contrast float64         `json:"contrast_ratio"`
	Weights  deltae.Weights  `json:"weights"`
	Results  []deltae.Result `json:"results"`
	Terms    *deltae.Terms   `json:"terms,omitempty"`
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	o := &compareOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "compare <colour1> <colour2>",
		Short: "Compute the perceptual difference between two colours",
		Long: `Compute the perceptual difference between two colours.

Colours may be given as:
  b,g,r           decimal channels in blue, green, red order (0-255)
  #rrggbb, #rgb   hex codes in red, green, blue order
  name            SVG colour names such as "yellow" or "darkolivegreen"

Defaults can be set with DELTAE_METRIC, DELTAE_FORMAT, DELTAE_QUANTISE,
DELTAE_PREVIEW, DELTAE_CIE76_JND and DELTAE_CIEDE2000_JND. Flags take
precedence over the environment.

Examples:
  # CIEDE2000 distance between cyan and magenta (BGR order)
  deltae compare 255,255,0 255,0,255

  # Both metrics with their noticeable-difference verdicts
  deltae compare --metric all --verdict "#ffcc00" gold

  # Textile tolerances weight lightness half as much
  deltae compare --kl 2 "#808080" "#8c8c8c"

  # Show every intermediate CIEDE2000 term
  deltae compare --explain --format table 0,0,128 0,0,131

  # Machine readable output
  deltae compare --format json navy midnightblue`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, root, o, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&o.metric, "metric", "m", defaults.Metric, "difference metric (cie76, ciede2000, all)")
	fs.StringVarP(&o.format, "format", "f", defaults.Format, "output format (text, json, table)")
	fs.StringVar(&o.preview, "preview", defaults.Preview, "show colour swatches (auto, always, never)")
	fs.Float64Var(&o.threshold, "threshold", 0, "just-noticeable threshold for the selected metric")
	fs.Float64Var(&o.cie76JND, "cie76-jnd", defaults.CIE76Threshold, "just-noticeable threshold for cie76")
	fs.Float64Var(&o.de2000JND, "ciede2000-jnd", defaults.CIEDE2000Threshold, "just-noticeable threshold for ciede2000")
	fs.Float64Var(&o.weights.KL, "kl", 1, "CIEDE2000 lightness weight kL")
	fs.Float64Var(&o.weights.KC, "kc", 1, "CIEDE2000 chroma weight kC")
	fs.Float64Var(&o.weights.KH, "kh", 1, "CIEDE2000 hue weight kH")
	fs.BoolVar(&o.quantise, "quantise", false, "round L*a*b* through the 8-bit encoding before comparing")
	fs.BoolVar(&o.explain, "explain", false, "print the intermediate CIEDE2000 terms")
	fs.BoolVar(&o.verdict, "verdict", false, "print whether each difference is noticeable")

	return cmd
}

// runCompare executes the compare command.
func runCompare(cmd *cobra.Command, root *rootOptions, o *compareOptions, args []string) error {
	logger := root.logger(cmd)

	cfg, err := resolveConfig(cmd.Flags(), o)
	if err != nil {
		return err
	}
	logger.Debug("resolved configuration",
		"metric", cfg.Metric, "format", cfg.Format, "quantise", cfg.Quantise,
		"cie76_jnd", cfg.CIE76Threshold, "ciede2000_jnd", cfg.CIEDE2000Threshold)

	report, err := buildReport(cfg, args, o.explain, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ansi := previewEnabled(cfg.Preview, out)

	var output string
	switch cfg.Format {
	case config.FormatJSON:
		jsonBytes, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		output = string(jsonBytes) + "\n"
	case config.FormatTable:
		output = formatTable(report, ansi)
	default:
		output = formatText(report, o.verdict, ansi)
	}

	_, err = io.WriteString(out, output)
	return err
}

// resolveConfig layers explicitly set flags over the environment and defaults.
func resolveConfig(fs *pflag.FlagSet, o *compareOptions) (config.Config, error) {
	var ov config.Overrides
	if fs.Changed("metric") {
		ov.Metric = &o.metric
	}
	if fs.Changed("format") {
		ov.Format = &o.format
	}
	if fs.Changed("preview") {
		ov.Preview = &o.preview
	}
	if fs.Changed("quantise") {
		ov.Quantise = &o.quantise
	}
	if fs.Changed("cie76-jnd") {
		ov.CIE76Threshold = &o.cie76JND
	}
	if fs.Changed("ciede2000-jnd") {
		ov.CIEDE2000Threshold = &o.de2000JND
	}
	if fs.Changed("kl") || fs.Changed("kc") || fs.Changed("kh") {
		if err := o.weights.Validate(); err != nil {
			return config.Config{}, fmt.Errorf("%w: %w", config.ErrInvalid, err)
		}
		ov.Weights = &o.weights
	}

	// --threshold applies to whichever single metric is selected, so it
	// stands in for both per-metric thresholds.
	if fs.Changed("threshold") {
		ov.CIE76Threshold = &o.threshold
		ov.CIEDE2000Threshold = &o.threshold
	}

	cfg, err := config.NewBuilder().WithEnvConfig().WithOverrides(ov).Build()
	if err != nil {
		return config.Config{}, err
	}

	if fs.Changed("threshold") {
		metrics, err := cfg.Metrics()
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: metric: %w", config.ErrInvalid, err)
		}
		if len(metrics) != 1 {
			return config.Config{}, fmt.Errorf("%w: --threshold needs a single metric, use --cie76-jnd or --ciede2000-jnd", config.ErrInvalid)
		}
	}
	return cfg, nil
}

// buildReport parses both colours and evaluates every configured metric.
func buildReport(cfg config.Config, args []string, explain bool, logger hclog.Logger) (compareReport, error) {
	metrics, err := cfg.Metrics()
	if err != nil {
		return compareReport{}, err
	}
	cv := cfg.Converter()

	var report compareReport
	var bgr [2]colour.BGR
	for i, arg := range args {
		c, err := colour.ParseBGR(arg)
		if err != nil {
			return compareReport{}, fmt.Errorf("colour %d: %w", i+1, err)
		}
		bgr[i] = c
		report.Colours[i] = colourReport{
			Input: arg,
			BGR:   c,
			Hex:   c.Hex(),
			Lab:   cv.ToLab(c),
		}
		logger.Debug("parsed colour", "input", arg, "bgr", c.String(), "lab", report.Colours[i].Lab.String())
	}

	report.Mode = cv.Mode.String()
	report.Contrast = colour.ContrastRatio(bgr[0], bgr[1])
	report.Weights = cfg.CIEDE2000Weights()

	for _, m := range metrics {
		r := deltae.CompareBGR(m, bgr[0], bgr[1],
			deltae.WithConverter(cv),
			deltae.WithThreshold(cfg.Threshold(m)))
		logger.Debug("computed difference", "metric", r.Metric, "distance", r.Distance, "noticeable", r.Noticeable)
		report.Results = append(report.Results, r)
	}

	if explain {
		terms := deltae.CIEDE2000WeightedTerms(report.Colours[0].Lab, report.Colours[1].Lab, report.Weights)
		report.Terms = &terms
	}

	return report, nil
}

// previewEnabled resolves the preview mode against the output writer.
func previewEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.PreviewAlways:
		return true
	case config.PreviewNever:
		return false
	}
	f, ok := out.(*os.File)
	return ok && colour.SupportsANSIColours(f)
}

// formatText prints one distance per line. A single metric without a
// verdict prints the bare number.
func formatText(report compareReport, showVerdict, ansi bool) string {
	var b strings.Builder

	if ansi {
		writeSwatches(&b, report)
	}

	single := len(report.Results) == 1
	for _, r := range report.Results {
		if !single {
			fmt.Fprintf(&b, "%s: ", r.Metric)
		}
		b.WriteString(formatDistance(r.Distance))
		if showVerdict {
			fmt.Fprintf(&b, " %s (threshold %s)", verdict(r, ansi), formatDistance(r.Threshold))
		}
		b.WriteString("\n")
	}

	if report.Terms != nil {
		b.WriteString("\n")
		b.WriteString(termsTable(*report.Terms).Render())
	}
	return b.String()
}

// formatTable prints the results as a table.
func formatTable(report compareReport, ansi bool) string {
	var b strings.Builder

	if ansi {
		writeSwatches(&b, report)
	}

	colours := NewTable([]string{"Colour", "Input", "Hex", "L*", "a*", "b*"})
	colours.SetColumnAlign(3, AlignRight)
	colours.SetColumnAlign(4, AlignRight)
	colours.SetColumnAlign(5, AlignRight)
	for i, c := range report.Colours {
		colours.AddRow([]string{
			strconv.Itoa(i + 1), c.Input, c.Hex,
			fmt.Sprintf("%.4f", c.Lab.L), fmt.Sprintf("%.4f", c.Lab.A), fmt.Sprintf("%.4f", c.Lab.B),
		})
	}
	b.WriteString(colours.Render())
	b.WriteString("\n")

	results := NewTable([]string{"Metric", "Distance", "Threshold", "Noticeable"})
	results.SetColumnAlign(1, AlignRight)
	results.SetColumnAlign(2, AlignRight)
	for _, r := range report.Results {
		results.AddRow([]string{
			r.Metric,
			fmt.Sprintf("%.4f", r.Distance),
			fmt.Sprintf("%.2f", r.Threshold),
			strconv.FormatBool(r.Noticeable),
		})
	}
	b.WriteString(results.Render())
	fmt.Fprintf(&b, "\nConversion: %s, WCAG contrast ratio: %.2f:1\n", report.Mode, report.Contrast)
	if w := report.Weights; w != deltae.UnityWeights {
		fmt.Fprintf(&b, "CIEDE2000 weights: kL=%g kC=%g kH=%g\n", w.KL, w.KC, w.KH)
	}

	if report.Terms != nil {
		b.WriteString("\n")
		b.WriteString(termsTable(*report.Terms).Render())
	}
	return b.String()
}

// writeSwatches prints a labelled swatch per colour and the two colours
// side by side.
func writeSwatches(b *strings.Builder, report compareReport) {
	for i, c := range report.Colours {
		b.WriteString(colour.FormatColourWithLabel(c.BGR, fmt.Sprintf("colour %d", i+1), 9))
		b.WriteString("\n")
	}
	b.WriteString(colour.ColourPreview(report.Colours[0].BGR, 9))
	b.WriteString(colour.ColourPreview(report.Colours[1].BGR, 9))
	b.WriteString("\n\n")
}

// verdict returns the coloured noticeable/not noticeable label.
func verdict(r deltae.Result, ansi bool) string {
	label, attr := "not noticeable", color.FgGreen
	if r.Noticeable {
		label, attr = "noticeable", color.FgYellow
	}

	c := color.New(attr, color.Bold)
	if ansi {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(label)
}

// formatDistance prints the shortest representation that round-trips.
func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// termsTable lists every intermediate CIEDE2000 quantity.
func termsTable(t deltae.Terms) *Table {
	table := NewTable([]string{"Term", "Value", "Meaning"})
	table.SetColumnAlign(1, AlignRight)
	table.SetColumnMaxWidth(2, 40)

	for _, row := range []struct {
		name  string
		value float64
		desc  string
	}{
		{"C1", t.C1, "chroma of colour 1"},
		{"C2", t.C2, "chroma of colour 2"},
		{"mean C", t.MeanC, "mean input chroma"},
		{"G", t.G, "a* correction factor for near-neutral colours"},
		{"a1'", t.A1p, "corrected a* of colour 1"},
		{"a2'", t.A2p, "corrected a* of colour 2"},
		{"C1'", t.C1p, "corrected chroma of colour 1"},
		{"C2'", t.C2p, "corrected chroma of colour 2"},
		{"h1'", t.H1p, "hue angle of colour 1 in degrees"},
		{"h2'", t.H2p, "hue angle of colour 2 in degrees"},
		{"dL'", t.DeltaLp, "lightness difference"},
		{"dC'", t.DeltaCp, "chroma difference"},
		{"dh'", t.Deltahp, "hue angle difference along the shorter arc"},
		{"dH'", t.DeltaHp, "hue difference"},
		{"mean L'", t.MeanLp, "mean lightness"},
		{"mean C'", t.MeanCp, "mean corrected chroma"},
		{"mean h'", t.MeanHp, "mean hue angle"},
		{"T", t.T, "hue dependent weighting"},
		{"d theta", t.DeltaTheta, "rotation angle, peaks near blue hues"},
		{"Rc", t.Rc, "chroma dependent rotation magnitude"},
		{"Sl", t.Sl, "lightness weighting"},
		{"Sc", t.Sc, "chroma weighting"},
		{"Sh", t.Sh, "hue weighting"},
		{"Rt", t.Rt, "chroma-hue interaction term"},
		{"dE00", t.Distance, "CIEDE2000 difference"},
	} {
		table.AddRow([]string{row.name, fmt.Sprintf("%.6f", row.value), row.desc})
	}
	return table
}
