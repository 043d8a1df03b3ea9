// Package config holds the runtime configuration for deltae and loads it
// from defaults, environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jmylchreest/deltae/internal/colour"
	"github.com/jmylchreest/deltae/internal/deltae"
)

// Environment variables read by WithEnvConfig.
const (
	EnvMetric             = "DELTAE_METRIC"
	EnvFormat             = "DELTAE_FORMAT"
	EnvQuantise           = "DELTAE_QUANTISE"
	EnvPreview            = "DELTAE_PREVIEW"
	EnvCIE76Threshold     = "DELTAE_CIE76_JND"
	EnvCIEDE2000Threshold = "DELTAE_CIEDE2000_JND"
)

// MetricAll selects every built-in metric.
const MetricAll = "all"

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Preview modes.
const (
	PreviewAuto   = "auto"
	PreviewAlways = "always"
	PreviewNever  = "never"
)

// ErrInvalid is returned for configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

var (
	validFormats  = []string{FormatText, FormatJSON, FormatTable}
	validPreviews = []string{PreviewAuto, PreviewAlways, PreviewNever}
)

// Config holds deltae configuration.
type Config struct {
	// Metric is a metric name accepted by deltae.LookupMetric, or "all".
	Metric string

	// Format is the output format (text, json, table).
	Format string

	// Quantise passes L*a*b* values through the 8-bit encoding before comparing.
	Quantise bool

	// Preview controls terminal colour swatches (auto, always, never).
	Preview string

	// CIE76Threshold and CIEDE2000Threshold are the just-noticeable
	// difference thresholds for each metric.
	CIE76Threshold     float64
	CIEDE2000Threshold float64

	// Weights are the CIEDE2000 parametric factors. The zero value means
	// the reference weights kL = kC = kH = 1.
	Weights deltae.Weights
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Metric:             deltae.MetricCIEDE2000.Name(),
		Format:             FormatText,
		Preview:            PreviewAuto,
		CIE76Threshold:     deltae.CIE76JND,
		CIEDE2000Threshold: deltae.CIEDE2000JND,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.CIEDE2000Weights().Validate(); err != nil {
		return fmt.Errorf("%w: ciede2000 weights: %w", ErrInvalid, err)
	}
	if _, err := c.Metrics(); err != nil {
		return fmt.Errorf("%w: metric: %w", ErrInvalid, err)
	}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("%w: format %q (valid: %s)", ErrInvalid, c.Format, strings.Join(validFormats, ", "))
	}
	if !slices.Contains(validPreviews, c.Preview) {
		return fmt.Errorf("%w: preview %q (valid: %s)", ErrInvalid, c.Preview, strings.Join(validPreviews, ", "))
	}
	if err := validThreshold(c.CIE76Threshold); err != nil {
		return fmt.Errorf("%w: cie76 threshold: %w", ErrInvalid, err)
	}
	if err := validThreshold(c.CIEDE2000Threshold); err != nil {
		return fmt.Errorf("%w: ciede2000 threshold: %w", ErrInvalid, err)
	}
	return nil
}

// CIEDE2000Weights returns the configured parametric weights, defaulting to
// deltae.UnityWeights.
func (c Config) CIEDE2000Weights() deltae.Weights {
	if c.Weights == (deltae.Weights{}) {
		return deltae.UnityWeights
	}
	return c.Weights
}

func validThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("%v is not a finite non-negative number", t)
	}
	return nil
}

// Metrics resolves the configured metric name. CIEDE2000 carries the
// configured weights.
func (c Config) Metrics() ([]deltae.Metric, error) {
	metrics := deltae.Metrics()
	if !strings.EqualFold(strings.TrimSpace(c.Metric), MetricAll) {
		m, err := deltae.LookupMetric(c.Metric)
		if err != nil {
			return nil, err
		}
		metrics = []deltae.Metric{m}
	}

	w := c.CIEDE2000Weights()
	if w == deltae.UnityWeights {
		return metrics, nil
	}
	for i, m := range metrics {
		if m != deltae.MetricCIEDE2000 {
			continue
		}
		weighted, err := deltae.WeightedCIEDE2000(w)
		if err != nil {
			return nil, err
		}
		metrics[i] = weighted
	}
	return metrics, nil
}

// Threshold returns the configured JND for m.
func (c Config) Threshold(m deltae.Metric) float64 {
	switch m.Name() {
	case deltae.MetricCIE76.Name():
		return c.CIE76Threshold
	case deltae.MetricCIEDE2000.Name():
		return c.CIEDE2000Threshold
	default:
		return m.DefaultThreshold()
	}
}

// Converter returns the colour converter matching the Quantise setting.
func (c Config) Converter() colour.Converter {
	if c.Quantise {
		return colour.Converter{Mode: colour.ModeQuantised}
	}
	return colour.Converter{Mode: colour.ModeExact}
}

// Overrides holds explicitly requested values, usually from command-line
// flags. Nil fields are left to the environment and the base config.
type Overrides struct {
	Metric             *string
	Format             *string
	Preview            *string
	Quantise           *bool
	CIE76Threshold     *float64
	CIEDE2000Threshold *float64
	Weights            *deltae.Weights
}

// Builder provides a fluent interface for constructing a Config.
type Builder struct {
	config    Config
	overrides Overrides
	useEnv    bool
	lookupEnv func(string) (string, bool)
}

// NewBuilder creates a new Builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{
		config:    Default(),
		lookupEnv: os.LookupEnv,
	}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig loads configuration from DELTAE_* environment variables.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithOverrides sets values that take precedence over the environment.
// An overridden field's environment variable is not read at all.
func (b *Builder) WithOverrides(o Overrides) *Builder {
	b.overrides = o
	return b
}

// WithLookupEnv overrides the environment lookup (useful for testing).
func (b *Builder) WithLookupEnv(fn func(string) (string, bool)) *Builder {
	b.lookupEnv = fn
	return b
}

// Build layers the environment and then the overrides on top of the base
// config, and validates the result.
func (b *Builder) Build() (Config, error) {
	config := b.config

	if b.useEnv {
		if err := b.applyEnv(&config); err != nil {
			return Config{}, err
		}
	}
	b.applyOverrides(&config)

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (b *Builder) applyOverrides(config *Config) {
	o := b.overrides
	if o.Metric != nil {
		config.Metric = strings.ToLower(*o.Metric)
	}
	if o.Format != nil {
		config.Format = strings.ToLower(*o.Format)
	}
	if o.Preview != nil {
		config.Preview = strings.ToLower(*o.Preview)
	}
	if o.Quantise != nil {
		config.Quantise = *o.Quantise
	}
	if o.CIE76Threshold != nil {
		config.CIE76Threshold = *o.CIE76Threshold
	}
	if o.CIEDE2000Threshold != nil {
		config.CIEDE2000Threshold = *o.CIEDE2000Threshold
	}
	if o.Weights != nil {
		config.Weights = *o.Weights
	}
}

func (b *Builder) applyEnv(config *Config) error {
	o := b.overrides
	if v, ok := b.env(EnvMetric); ok && o.Metric == nil {
		config.Metric = strings.ToLower(v)
	}
	if v, ok := b.env(EnvFormat); ok && o.Format == nil {
		config.Format = strings.ToLower(v)
	}
	if v, ok := b.env(EnvPreview); ok && o.Preview == nil {
		config.Preview = strings.ToLower(v)
	}
	if v, ok := b.env(EnvQuantise); ok && o.Quantise == nil {
		q, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, EnvQuantise, v, err)
		}
		config.Quantise = q
	}
	for _, t := range []struct {
		name     string
		dst      *float64
		override *float64
	}{
		{EnvCIE76Threshold, &config.CIE76Threshold, o.CIE76Threshold},
		{EnvCIEDE2000Threshold, &config.CIEDE2000Threshold, o.CIEDE2000Threshold},
	} {
		v, ok := b.env(t.name)
		if !ok || t.override != nil {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, t.name, v, err)
		}
		*t.dst = f
	}
	return nil
}

// env returns a trimmed, non-empty environment value.
func (b *Builder) env(key string) (string, bool) {
	v, ok := b.lookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
