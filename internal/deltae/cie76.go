package deltae

import (
	"math"

	"github.com/jmylchreest/deltae/internal/colour"
)

// CIE76 returns the Euclidean distance between x and y in L*a*b*.
func CIE76(x, y colour.Lab) float64 {
	dl := x.L - y.L
	da := x.A - y.A
	db := x.B - y.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// CIE76Result returns the CIE76 distance with its noticeable flag
// (default threshold CIE76JND).
func CIE76Result(x, y colour.Lab, opts ...Option) Result {
	return Evaluate(MetricCIE76, x, y, opts...)
}
