// Package analysis fits the histograms of a run.
//
// Three models are provided:
//
//   - [FitConstant]: a flat distribution, for the angles
//   - [FitExponential]: exp(constant + slope·x), for the momentum
//   - [FitGaussian]: a normal peak, for invariant mass signals
//
// [Difference] subtracts the same-charge background from an opposite-charge
// distribution, which leaves the resonance peak:
//
//	sig, err := analysis.Difference(ch.Discordant, ch.Concordant, "signal")
//	fit, err := analysis.FitGaussian(sig)
//
// Fits use the bin errors of the histogram as weights; bins with zero error
// are ignored.
package analysis
