// Package random provides the seedable random source consumed by the
// generator and the decay kinematics.
package random

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is the set of distributions the Monte Carlo needs. Any back end
// that samples these distributions can drive a run; reproducibility
// requires a seedable one.
type Source interface {
	// Uniform returns a value in [lo, hi).
	Uniform(lo, hi float64) float64
	// Exp returns an exponentially distributed value with the given mean.
	Exp(mean float64) float64
	// Gaus returns a normally distributed value.
	Gaus(mean, sigma float64) float64
}

// Stream is a Source backed by a PCG generator. It is not safe for
// concurrent use; give every worker its own Stream.
type Stream struct {
	seed int64
	src  rand.Source
	rng  *rand.Rand
}

func New(seed int64) *Stream {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &Stream{seed: seed, src: src, rng: rand.New(src)}
}

// Split returns an independent stream for worker i, seeded seed+i.
func (s *Stream) Split(i int) *Stream {
	return New(s.seed + int64(i))
}

func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

func (s *Stream) Exp(mean float64) float64 {
	return distuv.Exponential{Rate: 1 / mean, Src: s.src}.Rand()
}

func (s *Stream) Gaus(mean, sigma float64) float64 {
	if sigma == 0 {
		return mean
	}
	return distuv.Normal{Mu: mean, Sigma: sigma, Src: s.src}.Rand()
}
