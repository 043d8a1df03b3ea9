// Package deltae computes perceptual colour differences between L*a*b*
// colours: the Euclidean CIE76 distance and the CIEDE2000 formula.
//
// All functions are pure and safe for concurrent use.
package deltae

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmylchreest/deltae/internal/colour"
)

// Just-noticeable difference thresholds.
const (
	// CIE76JND is the commonly cited JND for the Euclidean metric.
	CIE76JND = 2.3
	// CIEDE2000JND is the JND used for CIEDE2000.
	CIEDE2000JND = 2.0
)

// ErrUnknownMetric is returned by LookupMetric for unrecognised names.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric is a colour difference formula over L*a*b* colours.
type Metric interface {
	// Name returns the canonical metric name.
	Name() string
	// Distance returns the non-negative difference between x and y.
	Distance(x, y colour.Lab) float64
	// DefaultThreshold returns the metric's just-noticeable difference.
	DefaultThreshold() float64
}

type cie76Metric struct{}

func (cie76Metric) Name() string                     { return "cie76" }
func (cie76Metric) Distance(x, y colour.Lab) float64 { return CIE76(x, y) }
func (cie76Metric) DefaultThreshold() float64        { return CIE76JND }

type ciede2000Metric struct {
	w Weights
}

func (ciede2000Metric) Name() string                       { return "ciede2000" }
func (m ciede2000Metric) Distance(x, y colour.Lab) float64 { return ciede2000(x, y, m.w).Distance }
func (ciede2000Metric) DefaultThreshold() float64          { return CIEDE2000JND }

// Built-in metrics.
var (
	MetricCIE76     Metric = cie76Metric{}
	MetricCIEDE2000 Metric = ciede2000Metric{w: UnityWeights}
)

// WeightedCIEDE2000 returns the CIEDE2000 metric with parametric weights w.
// It shares the name and threshold of MetricCIEDE2000.
func WeightedCIEDE2000(w Weights) (Metric, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return ciede2000Metric{w: w}, nil
}

var metricAliases = map[string]Metric{
	"cie76":     MetricCIE76,
	"de76":      MetricCIE76,
	"e76":       MetricCIE76,
	"ciede2000": MetricCIEDE2000,
	"de00":      MetricCIEDE2000,
	"e2000":     MetricCIEDE2000,
}

// Metrics returns the built-in metrics in a stable order.
func Metrics() []Metric {
	return []Metric{MetricCIE76, MetricCIEDE2000}
}

// MetricNames returns every accepted metric name, sorted.
func MetricNames() []string {
	names := make([]string, 0, len(metricAliases))
	for name := range metricAliases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupMetric returns the metric registered under name (case-insensitive).
func LookupMetric(name string) (Metric, error) {
	m, ok := metricAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q (valid: %s): %w", name, strings.Join(MetricNames(), ", "), ErrUnknownMetric)
	}
	return m, nil
}

// Result is a distance paired with its noticeable-difference verdict.
type Result struct {
	Metric     string  `json:"metric"`
	Distance   float64 `json:"distance"`
	Threshold  float64 `json:"threshold"`
	Noticeable bool    `json:"noticeable"`
}

type options struct {
	threshold    float64
	hasThreshold bool
	converter    colour.Converter
}

// Option configures Evaluate and the BGR helpers.
type Option func(*options)

// WithThreshold overrides the metric's default JND.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = t
		o.hasThreshold = true
	}
}

// WithConverter sets the converter used by the BGR helpers.
func WithConverter(cv colour.Converter) Option {
	return func(o *options) {
		o.converter = cv
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Evaluate computes m's distance between x and y and flags whether it
// reaches the threshold.
func Evaluate(m Metric, x, y colour.Lab, opts ...Option) Result {
	o := buildOptions(opts)
	return evaluate(m, x, y, o)
}

func evaluate(m Metric, x, y colour.Lab, o options) Result {
	threshold := m.DefaultThreshold()
	if o.hasThreshold {
		threshold = o.threshold
	}
	d := m.Distance(x, y)
	return Result{
		Metric:     m.Name(),
		Distance:   d,
		Threshold:  threshold,
		Noticeable: d >= threshold,
	}
}
