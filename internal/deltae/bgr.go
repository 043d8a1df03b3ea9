package deltae

import "github.com/jmylchreest/deltae/internal/colour"

// CIE76BGR converts both device colours exactly and returns their CIE76 distance.
func CIE76BGR(c1, c2 colour.BGR) float64 {
	return CIE76(c1.ToLab(), c2.ToLab())
}

// CIEDE2000BGR converts both device colours exactly and returns their
// CIEDE2000 distance.
func CIEDE2000BGR(c1, c2 colour.BGR) float64 {
	return CIEDE2000(c1.ToLab(), c2.ToLab())
}

// CompareBGR converts both device colours with the configured converter
// (exact unless WithConverter is given) and evaluates m.
func CompareBGR(m Metric, c1, c2 colour.BGR, opts ...Option) Result {
	o := buildOptions(opts)
	return evaluate(m, o.converter.ToLab(c1), o.converter.ToLab(c2), o)
}
