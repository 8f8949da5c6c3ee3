package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/pairmass/internal/hist"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewBins is returned when a histogram has fewer usable bins than the
// model has parameters.
var ErrTooFewBins = errors.New("analysis: too few usable bins for fit")

type Fit struct {
	Histogram string             `json:"histogram"`
	Model     string             `json:"model"`
	Params    map[string]float64 `json:"params"`
	Errors    map[string]float64 `json:"errors"`
	Chi2      float64            `json:"chi2"`
	NDF       int                `json:"ndf"`
}

// ReducedChi2 returns χ²/ndf, or NaN without degrees of freedom.
func (f Fit) ReducedChi2() float64 {
	if f.NDF <= 0 {
		return math.NaN()
	}
	return f.Chi2 / float64(f.NDF)
}

func (f Fit) String() string {
	keys := make([]string, 0, len(f.Params))
	for k := range f.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", f.Histogram, f.Model)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%.5g±%.2g", k, f.Params[k], f.Errors[k])
	}
	fmt.Fprintf(&b, " χ²/ndf=%.1f/%d", f.Chi2, f.NDF)
	return b.String()
}

type point struct {
	x, y, err float64
}

func usable(h *hist.Histogram) []point {
	var pts []point
	for i := 1; i <= h.Bins(); i++ {
		if e := h.BinError(i); e > 0 {
			pts = append(pts, point{x: h.BinCenter(i), y: h.BinContent(i), err: e})
		}
	}
	return pts
}

func chi2(pts []point, model func(x float64) float64) float64 {
	sum := 0.0
	for _, p := range pts {
		d := (p.y - model(p.x)) / p.err
		sum += d * d
	}
	return sum
}

// FitConstant fits a flat line as the inverse-variance weighted mean.
func FitConstant(h *hist.Histogram) (Fit, error) {
	pts := usable(h)
	if len(pts) < 2 {
		return Fit{}, fmt.Errorf("%w: %s has %d", ErrTooFewBins, h.Name(), len(pts))
	}

	var sw, swy float64
	for _, p := range pts {
		w := 1 / (p.err * p.err)
		sw += w
		swy += w * p.y
	}
	c := swy / sw

	return Fit{
		Histogram: h.Name(),
		Model:     "constant",
		Params:    map[string]float64{"constant": c},
		Errors:    map[string]float64{"constant": 1 / math.Sqrt(sw)},
		Chi2:      chi2(pts, func(float64) float64 { return c }),
		NDF:       len(pts) - 1,
	}, nil
}

// FitExponential fits exp(constant + slope·x) by a weighted linear
// regression of the log contents. Bins with no entries are skipped. For a
// momentum spectrum, mean is -1/slope.
func FitExponential(h *hist.Histogram) (Fit, error) {
	var xs, ys, ws []float64
	var pts []point
	for _, p := range usable(h) {
		if p.y <= 0 {
			continue
		}
		rel := p.err / p.y
		xs = append(xs, p.x)
		ys = append(ys, math.Log(p.y))
		ws = append(ws, 1/(rel*rel))
		pts = append(pts, p)
	}
	if len(pts) < 3 {
		return Fit{}, fmt.Errorf("%w: %s has %d", ErrTooFewBins, h.Name(), len(pts))
	}

	alpha, beta := stat.LinearRegression(xs, ys, ws, false)

	var s, sx, sxx float64
	for i, x := range xs {
		s += ws[i]
		sx += ws[i] * x
		sxx += ws[i] * x * x
	}
	delta := s*sxx - sx*sx
	errAlpha := math.Sqrt(sxx / delta)
	errBeta := math.Sqrt(s / delta)

	fit := Fit{
		Histogram: h.Name(),
		Model:     "exponential",
		Params:    map[string]float64{"constant": alpha, "slope": beta},
		Errors:    map[string]float64{"constant": errAlpha, "slope": errBeta},
		Chi2:      chi2(pts, func(x float64) float64 { return math.Exp(alpha + beta*x) }),
		NDF:       len(pts) - 2,
	}
	if beta != 0 {
		fit.Params["mean"] = -1 / beta
		fit.Errors["mean"] = errBeta / (beta * beta)
	}
	return fit, nil
}

// FitGaussian estimates a normal peak from the weighted moments of the
// positive bins.
func FitGaussian(h *hist.Histogram) (Fit, error) {
	var xs, ws []float64
	for i := 1; i <= h.Bins(); i++ {
		if c := h.BinContent(i); c > 0 {
			xs = append(xs, h.BinCenter(i))
			ws = append(ws, c)
		}
	}
	if len(xs) < 3 {
		return Fit{}, fmt.Errorf("%w: %s has %d", ErrTooFewBins, h.Name(), len(xs))
	}

	mean, sd := stat.MeanStdDev(xs, ws)
	n := floats.Sum(ws)
	amp := n * h.BinWidth() / (sd * math.Sqrt(2*math.Pi))

	model := func(x float64) float64 {
		z := (x - mean) / sd
		return amp * math.Exp(-0.5*z*z)
	}
	pts := usable(h)

	return Fit{
		Histogram: h.Name(),
		Model:     "gaussian",
		Params:    map[string]float64{"amplitude": amp, "mean": mean, "sigma": sd},
		Errors: map[string]float64{
			"amplitude": amp / math.Sqrt(n),
			"mean":      sd / math.Sqrt(n),
			"sigma":     sd / math.Sqrt(2*n),
		},
		Chi2: chi2(pts, model),
		NDF:  len(pts) - 3,
	}, nil
}
