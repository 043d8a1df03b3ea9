package deltae

import (
	"errors"
	"fmt"
	"math"

	"github.com/jmylchreest/deltae/internal/colour"
)

// pow25To7 is 25^7.
const pow25To7 = 6103515625.0

// ErrInvalidWeight is returned by Weights.Validate.
var ErrInvalidWeight = errors.New("parametric weight must be positive and finite")

// Weights are the CIEDE2000 parametric factors kL, kC and kH.
type Weights struct {
	KL float64 `json:"kl"`
	KC float64 `json:"kc"`
	KH float64 `json:"kh"`
}

// UnityWeights is the reference viewing condition, kL = kC = kH = 1.
var UnityWeights = Weights{KL: 1, KC: 1, KH: 1}

// Validate checks that every factor is positive and finite.
func (w Weights) Validate() error {
	for _, k := range []struct {
		name  string
		value float64
	}{{"kl", w.KL}, {"kc", w.KC}, {"kh", w.KH}} {
		if !(k.value > 0) || math.IsInf(k.value, 0) {
			return fmt.Errorf("%s = %v: %w", k.name, k.value, ErrInvalidWeight)
		}
	}
	return nil
}

// Terms holds every intermediate quantity of a CIEDE2000 evaluation.
// Angles are in degrees.
type Terms struct {
	// Chroma of the inputs and their mean.
	C1    float64 `json:"c1"`
	C2    float64 `json:"c2"`
	MeanC float64 `json:"mean_c"`

	// G is the a-axis correction factor.
	G float64 `json:"g"`

	// Corrected a axes, chroma and hue angles in [0, 360).
	A1p float64 `json:"a1p"`
	A2p float64 `json:"a2p"`
	C1p float64 `json:"c1p"`
	C2p float64 `json:"c2p"`
	H1p float64 `json:"h1p"`
	H2p float64 `json:"h2p"`

	// Deltahp is the hue angle difference along the shorter arc and
	// DeltaHp the hue difference it implies.
	DeltaLp float64 `json:"delta_lp"`
	DeltaCp float64 `json:"delta_cp"`
	Deltahp float64 `json:"delta_hue_angle"`
	DeltaHp float64 `json:"delta_hp"`

	MeanLp float64 `json:"mean_lp"`
	MeanCp float64 `json:"mean_cp"`
	MeanHp float64 `json:"mean_hp"`

	T          float64 `json:"t"`
	DeltaTheta float64 `json:"delta_theta"`
	Rc         float64 `json:"rc"`
	Sl         float64 `json:"sl"`
	Sc         float64 `json:"sc"`
	Sh         float64 `json:"sh"`
	Rt         float64 `json:"rt"`

	Distance float64 `json:"distance"`
}

// CIEDE2000 returns the CIEDE2000 difference between x and y with unity
// parametric weights.
func CIEDE2000(x, y colour.Lab) float64 {
	return ciede2000(x, y, UnityWeights).Distance
}

// CIEDE2000Weighted returns the CIEDE2000 difference using w.
// Callers are expected to have validated w.
func CIEDE2000Weighted(x, y colour.Lab, w Weights) float64 {
	return ciede2000(x, y, w).Distance
}

// CIEDE2000Terms returns the full breakdown of the unity-weighted formula.
func CIEDE2000Terms(x, y colour.Lab) Terms {
	return ciede2000(x, y, UnityWeights)
}

// CIEDE2000WeightedTerms returns the full breakdown of the formula using w.
// Only Distance depends on the weights.
func CIEDE2000WeightedTerms(x, y colour.Lab, w Weights) Terms {
	return ciede2000(x, y, w)
}

// CIEDE2000Result returns the CIEDE2000 distance with its noticeable flag
// (default threshold CIEDE2000JND).
func CIEDE2000Result(x, y colour.Lab, opts ...Option) Result {
	return Evaluate(MetricCIEDE2000, x, y, opts...)
}

// ciede2000 follows Sharma, Wu and Dalal (2005), equations 2 to 22.
func ciede2000(x, y colour.Lab, w Weights) Terms {
	var t Terms

	t.C1 = math.Hypot(x.A, x.B)
	t.C2 = math.Hypot(y.A, y.B)
	t.MeanC = (t.C1 + t.C2) / 2
	t.G = 0.5 * (1 - math.Sqrt(chromaRatio(t.MeanC)))

	t.A1p = (1 + t.G) * x.A
	t.A2p = (1 + t.G) * y.A
	t.C1p = math.Hypot(t.A1p, x.B)
	t.C2p = math.Hypot(t.A2p, y.B)
	t.H1p = hueAngle(x.B, t.A1p)
	t.H2p = hueAngle(y.B, t.A2p)

	t.DeltaLp = y.L - x.L
	t.DeltaCp = t.C2p - t.C1p

	achromatic := t.C1p*t.C2p == 0
	t.Deltahp = hueDifference(t.H1p, t.H2p, achromatic)
	t.DeltaHp = 2 * math.Sqrt(t.C1p*t.C2p) * math.Sin(radians(t.Deltahp)/2)

	t.MeanLp = (x.L + y.L) / 2
	t.MeanCp = (t.C1p + t.C2p) / 2
	t.MeanHp = meanHue(t.H1p, t.H2p, achromatic)

	h := t.MeanHp
	t.T = 1 -
		0.17*math.Cos(radians(h-30)) +
		0.24*math.Cos(radians(2*h)) +
		0.32*math.Cos(radians(3*h+6)) -
		0.20*math.Cos(radians(4*h-63))
	t.DeltaTheta = 30 * math.Exp(-math.Pow((h-275)/25, 2))
	t.Rc = 2 * math.Sqrt(chromaRatio(t.MeanCp))

	l50 := (t.MeanLp - 50) * (t.MeanLp - 50)
	t.Sl = 1 + 0.015*l50/math.Sqrt(20+l50)
	t.Sc = 1 + 0.045*t.MeanCp
	t.Sh = 1 + 0.015*t.MeanCp*t.T
	t.Rt = -math.Sin(radians(2*t.DeltaTheta)) * t.Rc

	dl := t.DeltaLp / (w.KL * t.Sl)
	dc := t.DeltaCp / (w.KC * t.Sc)
	dh := t.DeltaHp / (w.KH * t.Sh)
	t.Distance = math.Sqrt(dl*dl + dc*dc + dh*dh + t.Rt*dc*dh)

	return t
}

// chromaRatio returns c^7 / (c^7 + 25^7).
func chromaRatio(c float64) float64 {
	c7 := math.Pow(c, 7)
	return c7 / (c7 + pow25To7)
}

// hueAngle returns atan2(b, a) in degrees, normalised to [0, 360).
func hueAngle(b, a float64) float64 {
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h -= 360
	}
	return h
}

// hueDifference returns h2 - h1 along the shorter arc. Hue is undefined
// when either colour is achromatic, so the difference is zero.
func hueDifference(h1, h2 float64, achromatic bool) float64 {
	raw := h2 - h1
	switch {
	case achromatic:
		return 0
	case math.Abs(raw) <= 180:
		return raw
	case raw > 180:
		return raw - 360
	default:
		return raw + 360
	}
}

// meanHue returns the mean of h1 and h2 on the circle. For achromatic
// pairs the sum is returned unchanged.
func meanHue(h1, h2 float64, achromatic bool) float64 {
	sum := h1 + h2
	switch {
	case achromatic:
		return sum
	case math.Abs(h2-h1) <= 180:
		return sum / 2
	case sum < 360:
		return (sum + 360) / 2
	default:
		return (sum - 360) / 2
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
