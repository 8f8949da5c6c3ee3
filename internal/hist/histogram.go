// Package hist provides fixed-width one-dimensional histograms that track
// the sum of squared weights per bin for error estimation.
//
// Storage and filling are delegated to go-hep's hbook.H1D. Bins are
// numbered 1..N as in the usual HEP convention; bin 0 is the underflow and
// bin N+1 the overflow. Entries counts every fill, in range or not.
package hist

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
)

type Histogram struct {
	h     *hbook.H1D
	nbins int
	low   float64
	high  float64
	width float64
}

func New(name, title string, nbins int, low, high float64) (*Histogram, error) {
	if nbins <= 0 || !(high > low) {
		return nil, fmt.Errorf("%w: %s has %d bins over [%g, %g)", ErrInvalidBinning, name, nbins, low, high)
	}
	h := hbook.NewH1D(nbins, low, high)
	h.Ann["name"] = name
	h.Ann["title"] = title
	return &Histogram{
		h:     h,
		nbins: nbins,
		low:   low,
		high:  high,
		width: (high - low) / float64(nbins),
	}, nil
}

func (h *Histogram) Name() string { return h.h.Name() }

func (h *Histogram) Title() string {
	title, _ := h.h.Ann["title"].(string)
	return title
}

func (h *Histogram) Bins() int     { return h.nbins }
func (h *Histogram) Low() float64  { return h.low }
func (h *Histogram) High() float64 { return h.high }

func (h *Histogram) BinWidth() float64 { return h.width }

// H1D exposes the underlying hbook histogram.
func (h *Histogram) H1D() *hbook.H1D { return h.h }

// Entries returns the number of Fill calls, including under- and overflows.
func (h *Histogram) Entries() int64 { return h.h.Entries() }

// FindBin returns the bin holding x: 0 for underflow, N+1 for overflow.
func (h *Histogram) FindBin(x float64) int {
	switch {
	case math.IsNaN(x):
		return h.nbins + 1
	case x < h.low:
		return 0
	case x >= h.high:
		return h.nbins + 1
	}
	bin := 1 + int((x-h.low)/h.width)
	if bin > h.nbins {
		bin = h.nbins
	}
	return bin
}

func (h *Histogram) Fill(x float64) {
	h.FillWeight(x, 1)
}

func (h *Histogram) FillWeight(x, w float64) {
	if math.IsNaN(x) {
		// hbook cannot index NaN; count it as overflow
		x = math.Inf(1)
	}
	h.h.Fill(x, w)
}

// dist returns the distribution of bin, or nil outside [0, N+1].
func (h *Histogram) dist(bin int) *hbook.Dist0D {
	bng := &h.h.Binning
	switch {
	case bin == 0:
		return &bng.Outflows[0].Dist
	case bin == h.nbins+1:
		return &bng.Outflows[1].Dist
	case bin > 0 && bin <= h.nbins:
		return &bng.Bins[bin-1].Dist.Dist
	}
	return nil
}

func (h *Histogram) BinContent(bin int) float64 {
	d := h.dist(bin)
	if d == nil {
		return 0
	}
	return d.SumW
}

func (h *Histogram) BinError(bin int) float64 {
	d := h.dist(bin)
	if d == nil {
		return 0
	}
	return math.Sqrt(d.SumW2)
}

func (h *Histogram) BinLowEdge(bin int) float64 {
	return h.low + float64(bin-1)*h.width
}

func (h *Histogram) BinCenter(bin int) float64 {
	return h.low + (float64(bin)-0.5)*h.width
}

func (h *Histogram) Underflow() float64 { return h.BinContent(0) }
func (h *Histogram) Overflow() float64  { return h.BinContent(h.nbins + 1) }

// Integral is the sum of the in-range bin contents.
func (h *Histogram) Integral() float64 {
	sum := 0.0
	for i := range h.h.Binning.Bins {
		sum += h.h.Binning.Bins[i].Dist.Dist.SumW
	}
	return sum
}

// Counts returns a copy of the in-range bin contents.
func (h *Histogram) Counts() []float64 {
	out := make([]float64, h.nbins)
	for i := range out {
		out[i] = h.BinContent(i + 1)
	}
	return out
}

// Errors returns a copy of the in-range bin errors.
func (h *Histogram) Errors() []float64 {
	out := make([]float64, h.nbins)
	for i := range out {
		out[i] = h.BinError(i + 1)
	}
	return out
}

// Centers returns the in-range bin centers.
func (h *Histogram) Centers() []float64 {
	out := make([]float64, h.nbins)
	for i := range out {
		out[i] = h.BinCenter(i + 1)
	}
	return out
}

func (h *Histogram) SameBinning(o *Histogram) bool {
	return h.nbins == o.nbins && h.low == o.low && h.high == o.high
}

// Add adds c times o bin by bin: contents scale by c, squared weights by c².
// Entries add unscaled. hbook.AddScaledH1D allocates a new histogram; Add
// works in place so worker partials can be folded without copies.
func (h *Histogram) Add(o *Histogram, c float64) error {
	if !h.SameBinning(o) {
		return fmt.Errorf("%w: %s and %s", ErrBinningMismatch, h.Name(), o.Name())
	}
	for bin := 0; bin <= h.nbins+1; bin++ {
		addScaled(h.dist(bin), o.dist(bin), c)
	}
	addScaled(&h.h.Binning.Dist.Dist, &o.h.Binning.Dist.Dist, c)
	return nil
}

func addScaled(dst, src *hbook.Dist0D, c float64) {
	dst.N += src.N
	dst.SumW += c * src.SumW
	dst.SumW2 += c * c * src.SumW2
}

// Merge folds a partial accumulator with the same binning into h.
func (h *Histogram) Merge(o *Histogram) error {
	return h.Add(o, 1)
}

func (h *Histogram) Scale(c float64) {
	h.h.Scale(c)
}

func (h *Histogram) Reset() {
	bng := &h.h.Binning
	for i := range bng.Bins {
		bng.Bins[i].Dist = hbook.Dist1D{}
	}
	bng.Outflows = [2]hbook.Dist1D{}
	bng.Dist = hbook.Dist1D{}
}

func (h *Histogram) Clone(name string) *Histogram {
	c, err := New(name, h.Title(), h.nbins, h.low, h.high)
	if err != nil {
		panic(err)
	}
	src, dst := &h.h.Binning, &c.h.Binning
	copy(dst.Bins, src.Bins)
	dst.Outflows = src.Outflows
	dst.Dist = src.Dist
	return c
}

func (h *Histogram) SetTitle(title string) { h.h.Ann["title"] = title }
