package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/pairmass/internal/classify"
	"github.com/san-kum/pairmass/internal/generator"
	"github.com/san-kum/pairmass/internal/hist"
)

// Histograms is the full accumulator set of a run.
type Histograms struct {
	Species      *hist.Histogram
	FinalSpecies *hist.Histogram
	Azimuth      *hist.Histogram
	Polar        *hist.Histogram
	Momentum     *hist.Histogram
	Transverse   *hist.Histogram
	Energy       *hist.Histogram
	Channels     *classify.Channels
}

func NewHistograms(types int, b Binning) (*Histograms, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	var firstErr error
	mk := func(name, title string, bins int, low, high float64) *hist.Histogram {
		h, err := hist.New(name, title, bins, low, high)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("histogram %s: %w", name, err)
		}
		return h
	}

	h := &Histograms{
		Species:      mk("species", "Generated Particle Types", types, 0, float64(types)),
		FinalSpecies: mk("species_final", "Final Particle Types", types, 0, float64(types)),
		Azimuth:      mk("azimuth", "Azimuthal Angle", b.AngleBins, 0, 2*math.Pi),
		Polar:        mk("polar", "Polar Angle", b.AngleBins, 0, math.Pi),
		Momentum:     mk("momentum", "Momentum", b.MomentumBins, 0, b.MaxMomentum),
		Transverse:   mk("transverse", "Transverse Momentum", b.MomentumBins, 0, b.MaxMomentum),
		Energy:       mk("energy", "Energy", b.EnergyBins, 0, b.MaxEnergy),
	}
	if firstErr != nil {
		return nil, firstErr
	}

	ch, err := classify.NewChannels(b.MassBins, b.MinMass, b.MaxMass)
	if err != nil {
		return nil, err
	}
	h.Channels = ch
	return h, nil
}

// Generation returns the histograms filled once per primary.
func (h *Histograms) Generation() []*hist.Histogram {
	return []*hist.Histogram{h.Species, h.Azimuth, h.Polar, h.Momentum, h.Transverse, h.Energy}
}

// List returns every histogram in a fixed order.
func (h *Histograms) List() []*hist.Histogram {
	out := []*hist.Histogram{h.Species, h.FinalSpecies, h.Azimuth, h.Polar, h.Momentum, h.Transverse, h.Energy}
	return append(out, h.Channels.List()...)
}

// Get returns the histogram with the given name.
func (h *Histograms) Get(name string) (*hist.Histogram, bool) {
	for _, x := range h.List() {
		if x.Name() == name {
			return x, true
		}
	}
	return nil, false
}

// Merge adds the partial accumulators of o into h.
func (h *Histograms) Merge(o *Histograms) error {
	dst, src := h.List(), o.List()
	for i := range dst {
		if err := dst[i].Merge(src[i]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Histograms) Snapshots() []hist.Snapshot {
	list := h.List()
	out := make([]hist.Snapshot, len(list))
	for i, x := range list {
		out[i] = x.Snapshot()
	}
	return out
}

// HistogramsFromSnapshots rebuilds a histogram set, for instance from a
// stored run.
func HistogramsFromSnapshots(snaps []hist.Snapshot) (*Histograms, error) {
	byName := make(map[string]*hist.Histogram, len(snaps))
	for _, s := range snaps {
		h, err := hist.FromSnapshot(s)
		if err != nil {
			return nil, err
		}
		byName[s.Name] = h
	}

	out := &Histograms{}
	for name, dst := range map[string]**hist.Histogram{
		"species":       &out.Species,
		"species_final": &out.FinalSpecies,
		"azimuth":       &out.Azimuth,
		"polar":         &out.Polar,
		"momentum":      &out.Momentum,
		"transverse":    &out.Transverse,
		"energy":        &out.Energy,
	} {
		h, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("histogram %s missing", name)
		}
		*dst = h
	}

	ch, err := classify.ChannelsFrom(byName)
	if err != nil {
		return nil, err
	}
	out.Channels = ch
	return out, nil
}

// fillEvent records the primaries and the final particle content of an
// accepted event.
func (h *Histograms) fillEvent(ev *generator.Event) {
	for _, r := range ev.Records() {
		h.Species.Fill(float64(r.Species))
		h.Azimuth.Fill(r.Phi)
		h.Polar.Fill(r.Theta)
		h.Momentum.Fill(r.P)
		h.Transverse.Fill(r.Pt)
		h.Energy.Fill(r.E)
	}
	for _, p := range ev.Particles() {
		if p.IsSet() {
			h.FinalSpecies.Fill(float64(p.Index))
		}
	}
}

func (s *Streams) record(ev *generator.Event) {
	for _, r := range ev.Records() {
		s.Azimuth = append(s.Azimuth, r.Phi)
		s.Polar = append(s.Polar, r.Theta)
		s.Momentum = append(s.Momentum, r.P)
		s.Transverse = append(s.Transverse, r.Pt)
		s.Energy = append(s.Energy, r.E)
		s.Species = append(s.Species, r.Species)
	}
}

