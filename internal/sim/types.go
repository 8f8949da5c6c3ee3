package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/pairmass/internal/validate"
)

// Binning sets the histogram ranges of a run.
type Binning struct {
	AngleBins    int     `yaml:"angle_bins" json:"angle_bins"`
	MomentumBins int     `yaml:"momentum_bins" json:"momentum_bins"`
	EnergyBins   int     `yaml:"energy_bins" json:"energy_bins"`
	MassBins     int     `yaml:"mass_bins" json:"mass_bins"`
	MaxMomentum  float64 `yaml:"max_momentum" json:"max_momentum"`
	MaxEnergy    float64 `yaml:"max_energy" json:"max_energy"`
	MinMass      float64 `yaml:"min_mass" json:"min_mass"`
	MaxMass      float64 `yaml:"max_mass" json:"max_mass"`
}

func DefaultBinning() Binning {
	return Binning{
		AngleBins:    50,
		MomentumBins: 50,
		EnergyBins:   50,
		MassBins:     100,
		MaxMomentum:  5,
		MaxEnergy:    8,
		MinMass:      0.5,
		MaxMass:      1.5,
	}
}

func (b Binning) validate() error {
	if b.AngleBins <= 0 || b.MomentumBins <= 0 || b.EnergyBins <= 0 || b.MassBins <= 0 {
		return fmt.Errorf("bin counts must be positive, got %d/%d/%d/%d", b.AngleBins, b.MomentumBins, b.EnergyBins, b.MassBins)
	}
	if b.MaxMomentum <= 0 {
		return fmt.Errorf("max momentum must be positive, got %f", b.MaxMomentum)
	}
	if b.MaxEnergy <= 0 {
		return fmt.Errorf("max energy must be positive, got %f", b.MaxEnergy)
	}
	if b.MaxMass <= b.MinMass {
		return fmt.Errorf("mass range must be increasing, got [%f, %f)", b.MinMass, b.MaxMass)
	}
	return nil
}

type Config struct {
	Iterations int
	Primaries  int
	// MaxResonances sizes the decay region of the event arena. It must be at
	// least Primaries so that every primary can decay.
	MaxResonances   int
	Workers         int
	AverageMomentum float64
	Seed            int64
	Binning         Binning
	KeepStreams     bool
}

func DefaultConfig() Config {
	return Config{
		Iterations:      100000,
		Primaries:       100,
		MaxResonances:   100,
		Workers:         1,
		AverageMomentum: 1,
		Seed:            1,
		Binning:         DefaultBinning(),
	}
}

// Species is a registered type drawn as a primary with the given probability.
type Species struct {
	Name        string
	Probability float64
}

// Decay is a decay channel of a resonance, by type name.
type Decay struct {
	Parent    string
	Daughters [2]string
	Branching float64
}

// Observer is notified after every event. It must be safe for concurrent use.
type Observer interface {
	OnEvent(done, total int)
}

// SpeciesCount holds the counts of one type over a run.
type SpeciesCount struct {
	Name        string               `json:"name"`
	Charge      int                  `json:"charge"`
	Resonance   bool                 `json:"resonance"`
	Probability float64              `json:"probability"`
	Generated   validate.Measurement `json:"generated"`
	Final       validate.Measurement `json:"final"`
}

// Streams are the raw per-primary observables, in generation order.
type Streams struct {
	Azimuth    []float64
	Polar      []float64
	Momentum   []float64
	Transverse []float64
	Energy     []float64
	Species    []int
}

func (s *Streams) append(o *Streams) {
	s.Azimuth = append(s.Azimuth, o.Azimuth...)
	s.Polar = append(s.Polar, o.Polar...)
	s.Momentum = append(s.Momentum, o.Momentum...)
	s.Transverse = append(s.Transverse, o.Transverse...)
	s.Energy = append(s.Energy, o.Energy...)
	s.Species = append(s.Species, o.Species...)
}

func (s *Streams) Len() int { return len(s.Species) }

type Result struct {
	Histograms *Histograms
	Species    []SpeciesCount
	Primaries  int
	// Events counts the accepted events; Skipped those dropped on a
	// kinematic error.
	Events  int64
	Skipped int64
	Pairs   int64
	Decays  int64
	Errors  []error
	Streams *Streams
	Elapsed time.Duration
}
