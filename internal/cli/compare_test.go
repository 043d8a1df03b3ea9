// Package cli_test provides tests for the CLI package.
package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/jmylchreest/deltae/internal/cli"
	"github.com/jmylchreest/deltae/internal/colour"
	"github.com/jmylchreest/deltae/internal/config"
	"github.com/jmylchreest/deltae/internal/deltae"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func parseDistance(t *testing.T, s string) float64 {
	t.Helper()
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		t.Fatalf("output %q is not a number: %v", s, err)
	}
	return d
}

func TestCompareDefaultPrintsCIEDE2000(t *testing.T) {
	out, _, err := run(t, "compare", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if d := parseDistance(t, out); math.Abs(d-57.98060516506422) > 1e-4 {
		t.Errorf("distance = %v, want 57.9806", d)
	}
}

func TestCompareInputForms(t *testing.T) {
	// Cyan and magenta written three ways.
	for _, args := range [][]string{
		{"compare", "#00ffff", "#ff00ff"},
		{"compare", "cyan", "magenta"},
		{"compare", "bgr(255, 255, 0)", "255,0,255"},
	} {
		t.Run(strings.Join(args[1:], "_"), func(t *testing.T) {
			out, _, err := run(t, args...)
			if err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}
			if d := parseDistance(t, out); math.Abs(d-57.98060516506422) > 1e-4 {
				t.Errorf("distance = %v, want 57.9806", d)
			}
		})
	}
}

func TestCompareAllMetricsWithVerdict(t *testing.T) {
	out, _, err := run(t, "compare", "--metric", "all", "--verdict", "--preview", "never", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "cie76: 156.64") || !strings.HasSuffix(lines[0], " noticeable (threshold 2.3)") {
		t.Errorf("unexpected cie76 line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ciede2000: 57.98") || !strings.HasSuffix(lines[1], " noticeable (threshold 2)") {
		t.Errorf("unexpected ciede2000 line: %q", lines[1])
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("expected no ANSI escapes with --preview never, got %q", out)
	}
}

func TestComparePreviewSwatches(t *testing.T) {
	out, _, err := run(t, "compare", "--preview", "always", "255,255,0", "128,0,0")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 2 swatches, a strip, a blank line and the distance, got %q", out)
	}
	// Light cyan carries black text, dark navy carries white text.
	if !strings.Contains(lines[0], "\033[48;2;0;255;255m\033[38;2;0;0;0m #00ffff ") || !strings.Contains(lines[0], "colour 1") {
		t.Errorf("unexpected first swatch: %q", lines[0])
	}
	if !strings.Contains(lines[1], "\033[48;2;0;0;128m\033[38;2;255;255;255m #000080 ") || !strings.Contains(lines[1], "colour 2") {
		t.Errorf("unexpected second swatch: %q", lines[1])
	}
	if lines[2] != "\033[48;2;0;255;255m         \033[0m\033[48;2;0;0;128m         \033[0m" {
		t.Errorf("unexpected side by side strip: %q", lines[2])
	}
	parseDistance(t, lines[4])
}

func TestCompareVerdictThreshold(t *testing.T) {
	out, _, err := run(t, "compare", "--verdict", "--threshold", "100", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !strings.Contains(out, "not noticeable (threshold 100)") {
		t.Errorf("expected not noticeable verdict, got %q", out)
	}
}

func TestCompareJSON(t *testing.T) {
	out, _, err := run(t, "compare", "--format", "json", "--metric", "all", "--explain", "yellow", "yellow")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	var report struct {
		Colours []struct {
			Input string     `json:"input"`
			BGR   colour.BGR `json:"bgr"`
			Hex   string     `json:"hex"`
			Lab   colour.Lab `json:"lab"`
		} `json:"colours"`
		Mode     string  `json:"mode"`
		Contrast float64 `json:"contrast_ratio"`
		Results  []struct {
			Metric     string  `json:"metric"`
			Distance   float64 `json:"distance"`
			Threshold  float64 `json:"threshold"`
			Noticeable bool    `json:"noticeable"`
		} `json:"results"`
		Terms map[string]float64 `json:"terms"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}

	if len(report.Colours) != 2 || report.Colours[0].Hex != "#ffff00" {
		t.Errorf("unexpected colours: %+v", report.Colours)
	}
	if report.Colours[0].BGR != (colour.BGR{B: 0, G: 255, R: 255}) {
		t.Errorf("unexpected BGR: %+v", report.Colours[0].BGR)
	}
	if report.Mode != "exact" {
		t.Errorf("Mode = %q, want exact", report.Mode)
	}
	if report.Contrast != 1 {
		t.Errorf("Contrast = %v, want 1", report.Contrast)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	for _, r := range report.Results {
		if r.Distance != 0 || r.Noticeable {
			t.Errorf("identical colours should not differ: %+v", r)
		}
	}
	for _, key := range []string{"c1", "mean_c", "g", "h1p", "delta_lp", "delta_hue_angle", "delta_hp", "mean_hp", "delta_theta", "sl", "rt", "distance"} {
		if _, ok := report.Terms[key]; !ok {
			t.Errorf("expected CIEDE2000 term %q in output, got %v", key, report.Terms)
		}
	}
	if len(report.Terms) != 25 {
		t.Errorf("expected 25 CIEDE2000 terms, got %d: %v", len(report.Terms), report.Terms)
	}
}

func TestCompareTableExplain(t *testing.T) {
	out, _, err := run(t, "compare", "--format", "table", "--explain", "--quantise", "0,0,128", "0,0,131")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	for _, want := range []string{"Metric", "ciede2000", "Conversion: quantised", "dE00", "hue weighting"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestCompareWeights(t *testing.T) {
	x, y := colour.MustBGR(128, 128, 128), colour.MustBGR(140, 140, 140)
	w := deltae.Weights{KL: 2, KC: 1, KH: 1}
	want := deltae.CIEDE2000Weighted(x.ToLab(), y.ToLab(), w)

	out, _, err := run(t, "compare", "--kl", "2", "#808080", "#8c8c8c")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if d := parseDistance(t, out); math.Abs(d-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", d, want)
	}
	if unity := deltae.CIEDE2000BGR(x, y); math.Abs(want-unity/2) > 0.01 {
		t.Errorf("kL = 2 should roughly halve a lightness difference: %v vs %v", want, unity)
	}

	out, _, err = run(t, "compare", "--format", "json", "--explain", "--kl", "2", "#808080", "#8c8c8c")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	var report struct {
		Weights deltae.Weights     `json:"weights"`
		Terms   map[string]float64 `json:"terms"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if report.Weights != w {
		t.Errorf("Weights = %+v, want %+v", report.Weights, w)
	}
	if math.Abs(report.Terms["distance"]-want) > 1e-9 {
		t.Errorf("terms distance = %v, want %v", report.Terms["distance"], want)
	}

	out, _, err = run(t, "compare", "--format", "table", "--kl", "2", "#808080", "#8c8c8c")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !strings.Contains(out, "CIEDE2000 weights: kL=2 kC=1 kH=1") {
		t.Errorf("table output missing weights:\n%s", out)
	}
}

func TestCompareEnvironment(t *testing.T) {
	t.Setenv(config.EnvMetric, "cie76")

	out, _, err := run(t, "compare", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if d := parseDistance(t, out); math.Abs(d-156.64430847214484) > 1e-6 {
		t.Errorf("distance = %v, want cie76 156.6443", d)
	}

	// Flags take precedence over the environment.
	out, _, err = run(t, "compare", "--metric", "de00", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if d := parseDistance(t, out); math.Abs(d-57.98060516506422) > 1e-4 {
		t.Errorf("distance = %v, want ciede2000 57.9806", d)
	}
}

func TestCompareFlagsOverrideInvalidEnvironment(t *testing.T) {
	t.Setenv(config.EnvFormat, "yaml")
	t.Setenv(config.EnvPreview, "sometimes")
	t.Setenv(config.EnvMetric, "cie94")
	t.Setenv(config.EnvQuantise, "maybe")
	t.Setenv(config.EnvCIEDE2000Threshold, "two")

	out, _, err := run(t, "compare", "--format", "text", "--preview", "never", "--metric", "ciede2000",
		"--quantise=false", "--verdict", "--threshold", "100", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "57.98") || !strings.Contains(out, "not noticeable (threshold 100)") {
		t.Errorf("unexpected output: %q", out)
	}

	// Without the flag the invalid environment value is reported.
	if _, _, err := run(t, "compare", "--preview", "never", "--metric", "ciede2000",
		"--quantise=false", "--threshold", "100", "255,255,0", "255,0,255"); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Execute() error = %v, want %v", err, config.ErrInvalid)
	}
}

func TestCompareVerboseLogs(t *testing.T) {
	_, errOut, err := run(t, "compare", "-v", "255,255,0", "255,0,255")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "parsed colour") || !strings.Contains(errOut, "computed difference") {
		t.Errorf("expected debug logs on stderr, got %q", errOut)
	}
}

func TestCompareErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "channel out of range", args: []string{"compare", "256,0,0", "0,0,0"}, wantErr: colour.ErrChannelRange},
		{name: "unparseable colour", args: []string{"compare", "black", "nope"}, wantErr: colour.ErrInvalidColour},
		{name: "unknown metric", args: []string{"compare", "-m", "cie94", "black", "white"}, wantErr: config.ErrInvalid},
		{name: "unknown format", args: []string{"compare", "-f", "xml", "black", "white"}, wantErr: config.ErrInvalid},
		{name: "threshold with all metrics", args: []string{"compare", "-m", "all", "--threshold", "1", "black", "white"}, wantErr: config.ErrInvalid},
		{name: "negative threshold", args: []string{"compare", "--cie76-jnd", "-1", "black", "white"}, wantErr: config.ErrInvalid},
		{name: "zero weight", args: []string{"compare", "--kh", "0", "black", "white"}, wantErr: deltae.ErrInvalidWeight},
		{name: "all weights zero", args: []string{"compare", "--kl", "0", "--kc", "0", "--kh", "0", "black", "white"}, wantErr: config.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompareRequiresTwoColours(t *testing.T) {
	if _, _, err := run(t, "compare", "black"); err == nil {
		t.Error("expected an error with a single colour argument")
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "deltae version ") {
		t.Errorf("unexpected version output: %q", out)
	}

	out, _, err = run(t, "version", "--json")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if info["version"] == "" || info["platform"] == "" {
		t.Errorf("unexpected version JSON: %v", info)
	}
}
