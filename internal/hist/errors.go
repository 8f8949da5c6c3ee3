package hist

import "errors"

var (
	// ErrInvalidBinning indicates a non-positive bin count or an empty range.
	ErrInvalidBinning = errors.New("hist: invalid binning")

	// ErrBinningMismatch indicates two histograms with different binning.
	ErrBinningMismatch = errors.New("hist: binning mismatch")
)
