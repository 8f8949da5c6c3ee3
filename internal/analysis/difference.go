package analysis

import (
	"fmt"

	"github.com/san-kum/pairmass/internal/hist"
	"github.com/san-kum/pairmass/internal/sim"
)

// Difference returns a - b as a new histogram. Bin errors add in quadrature.
func Difference(a, b *hist.Histogram, name string) (*hist.Histogram, error) {
	d := a.Clone(name)
	d.SetTitle(fmt.Sprintf("%s minus %s", a.Title(), b.Title()))
	if err := d.Add(b, -1); err != nil {
		return nil, err
	}
	return d, nil
}

// Normalize returns a copy of h scaled to unit in-range integral.
func Normalize(h *hist.Histogram) *hist.Histogram {
	n := h.Clone(h.Name())
	if sum := n.Integral(); sum != 0 {
		n.Scale(1 / sum)
	}
	return n
}

// Signals returns the two background-subtracted mass distributions: all
// opposite-charge minus same-charge pairs, and the same for π/K pairs.
func Signals(h *sim.Histograms) (all, pionKaon *hist.Histogram, err error) {
	ch := h.Channels
	all, err = Difference(ch.Discordant, ch.Concordant, "mass_signal")
	if err != nil {
		return nil, nil, err
	}
	pionKaon, err = Difference(ch.DiscordantPionKaon, ch.ConcordantPionKaon, "mass_signal_pik")
	if err != nil {
		return nil, nil, err
	}
	return all, pionKaon, nil
}

// Analyze performs the standard fits of a run: flat angles, exponential
// momentum, and Gaussian peaks for the decay daughters and both signals.
// A fit without enough data is reported in errs and skipped.
func Analyze(h *sim.Histograms) (fits []Fit, errs []error) {
	add := func(f Fit, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		fits = append(fits, f)
	}

	add(FitConstant(h.Azimuth))
	add(FitConstant(h.Polar))
	add(FitExponential(h.Momentum))
	add(FitGaussian(h.Channels.Daughters))

	all, pik, err := Signals(h)
	if err != nil {
		return fits, append(errs, err)
	}
	add(FitGaussian(all))
	add(FitGaussian(pik))
	return fits, errs
}
