package validate

import "math"

// Measurement is a value with an absolute error.
type Measurement struct {
	Value float64 `json:"value"`
	Err   float64 `json:"err"`
}

// Rel returns the relative error, 0 for a zero value.
func (m Measurement) Rel() float64 {
	if m.Value == 0 {
		return 0
	}
	return m.Err / math.Abs(m.Value)
}

func (m Measurement) Scale(f float64) Measurement {
	return Measurement{Value: m.Value * f, Err: m.Err * math.Abs(f)}
}

// Sum adds values; errors add linearly.
func Sum(ms ...Measurement) Measurement {
	var out Measurement
	for _, m := range ms {
		out.Value += m.Value
		out.Err += m.Err
	}
	return out
}

// Product multiplies a and b; relative errors add.
func Product(a, b Measurement) Measurement {
	v := a.Value * b.Value
	return Measurement{Value: v, Err: math.Abs(v) * (a.Rel() + b.Rel())}
}

// Pairs returns the unordered pair count m(m-1)/2 with twice the relative
// error of m.
func Pairs(m Measurement) Measurement {
	v := m.Value * (m.Value - 1) / 2
	return Measurement{Value: v, Err: 2 * m.Rel() * math.Abs(v)}
}

// ConcordantPairs returns the same-charge pair count for pos positive and
// neg negative particles.
func ConcordantPairs(pos, neg Measurement) Measurement {
	v := pos.Value*(pos.Value-1)/2 + neg.Value*(neg.Value-1)/2
	return Measurement{Value: v, Err: 2 * (pos.Rel() + neg.Rel()) * math.Abs(v)}
}

// Cross returns a1·b1 + a2·b2.
func Cross(a1, b1, a2, b2 Measurement) Measurement {
	return Sum(Product(a1, b1), Product(a2, b2))
}
