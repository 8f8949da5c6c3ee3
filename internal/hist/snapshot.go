package hist

import "fmt"

// Snapshot is a plain copy of a histogram for report and storage layers.
type Snapshot struct {
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Edges          []float64 `json:"edges"`
	Counts         []float64 `json:"counts"`
	Errors         []float64 `json:"errors"`
	Underflow      float64   `json:"underflow"`
	Overflow       float64   `json:"overflow"`
	UnderflowError float64   `json:"underflow_error,omitempty"`
	OverflowError  float64   `json:"overflow_error,omitempty"`
	Entries        int64     `json:"entries"`
}

func (h *Histogram) Snapshot() Snapshot {
	edges := make([]float64, h.nbins+1)
	for i := range edges {
		edges[i] = h.BinLowEdge(i + 1)
	}
	edges[h.nbins] = h.high

	return Snapshot{
		Name:           h.Name(),
		Title:          h.Title(),
		Edges:          edges,
		Counts:         h.Counts(),
		Errors:         h.Errors(),
		Underflow:      h.Underflow(),
		Overflow:       h.Overflow(),
		UnderflowError: h.BinError(0),
		OverflowError:  h.BinError(h.nbins + 1),
		Entries:        h.Entries(),
	}
}

// FromSnapshot rebuilds a histogram from a snapshot.
func FromSnapshot(s Snapshot) (*Histogram, error) {
	n := len(s.Edges) - 1
	if n < 1 {
		return nil, fmt.Errorf("%w: snapshot %s has %d edges", ErrInvalidBinning, s.Name, len(s.Edges))
	}
	if len(s.Counts) != n || len(s.Errors) != n {
		return nil, fmt.Errorf("%w: snapshot %s has %d bins but %d counts and %d errors", ErrInvalidBinning, s.Name, n, len(s.Counts), len(s.Errors))
	}
	h, err := New(s.Name, s.Title, n, s.Edges[0], s.Edges[n])
	if err != nil {
		return nil, err
	}
	set := func(bin int, content, err float64) {
		d := h.dist(bin)
		d.SumW = content
		d.SumW2 = err * err
	}
	for i := 0; i < n; i++ {
		set(i+1, s.Counts[i], s.Errors[i])
	}
	set(0, s.Underflow, s.UnderflowError)
	set(n+1, s.Overflow, s.OverflowError)
	total := &h.h.Binning.Dist.Dist
	total.N = s.Entries
	total.SumW = h.Integral() + s.Underflow + s.Overflow
	return h, nil
}
