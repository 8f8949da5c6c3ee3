package generator

import (
	"fmt"
	"math"
)

// probabilitySumTolerance is how far the probabilities may sum away from 1.
const probabilitySumTolerance = 1e-9

// Sampler draws a category from a fixed categorical distribution using
// cumulative thresholds.
type Sampler struct {
	thresholds []float64
}

// NewSampler validates the probabilities once: each must be positive, so the
// thresholds are strictly increasing, and they must sum to 1.
func NewSampler(probabilities []float64) (*Sampler, error) {
	if len(probabilities) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidProbabilities)
	}

	thresholds := make([]float64, len(probabilities))
	sum := 0.0
	for i, p := range probabilities {
		if !(p > 0) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: category %d has probability %g", ErrInvalidProbabilities, i, p)
		}
		sum += p
		thresholds[i] = sum
	}
	if math.Abs(sum-1) > probabilitySumTolerance {
		return nil, fmt.Errorf("%w: probabilities sum to %.12f", ErrInvalidProbabilities, sum)
	}

	return &Sampler{thresholds: thresholds}, nil
}

func (s *Sampler) Len() int { return len(s.thresholds) }

// Draw maps a uniform u in [0, 1) to a category. The first threshold with
// u < threshold wins; the last category absorbs any remainder.
func (s *Sampler) Draw(u float64) int {
	last := len(s.thresholds) - 1
	for i := 0; i < last; i++ {
		if u < s.thresholds[i] {
			return i
		}
	}
	return last
}
