package generator

import (
	"fmt"
	"math"

	"github.com/san-kum/pairmass/internal/kinematics"
	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/random"
)

const branchingTolerance = 1e-9

// Channel is one two-body decay mode of a resonance.
type Channel struct {
	Daughters [2]int
	Branching float64
}

type Config struct {
	Primaries       int
	MaxResonances   int
	AverageMomentum float64
	// Species maps sampler categories to registry indices. Nil means
	// category i is registry type i.
	Species []int
}

type Generator struct {
	reg      *particle.Registry
	eng      *kinematics.Engine
	sampler  *Sampler
	species  []int
	types    []particle.Type
	channels map[int][]Channel
	cfg      Config
}

// New checks the configuration against the registry once, so that event
// generation only fails on kinematics.
func New(reg *particle.Registry, eng *kinematics.Engine, sampler *Sampler, channels map[int][]Channel, cfg Config) (*Generator, error) {
	if cfg.Primaries <= 0 {
		return nil, fmt.Errorf("%w: primaries must be positive, got %d", ErrInvalidConfig, cfg.Primaries)
	}
	if cfg.MaxResonances < 0 {
		return nil, fmt.Errorf("%w: max resonances must not be negative, got %d", ErrInvalidConfig, cfg.MaxResonances)
	}
	if !(cfg.AverageMomentum > 0) {
		return nil, fmt.Errorf("%w: average momentum must be positive, got %f", ErrInvalidConfig, cfg.AverageMomentum)
	}

	types := reg.Types()
	species := cfg.Species
	if species == nil {
		if sampler.Len() != len(types) {
			return nil, fmt.Errorf("%w: %d probabilities for %d registered types", ErrInvalidProbabilities, sampler.Len(), len(types))
		}
		species = make([]int, len(types))
		for i := range species {
			species[i] = i
		}
	} else if len(species) != sampler.Len() {
		return nil, fmt.Errorf("%w: %d species for %d probabilities", ErrInvalidProbabilities, len(species), sampler.Len())
	}

	for _, idx := range species {
		t, err := reg.Get(idx)
		if err != nil {
			return nil, err
		}
		if !t.IsResonance() {
			continue
		}
		if err := checkChannels(reg, t, channels[idx]); err != nil {
			return nil, err
		}
	}

	owned := make(map[int][]Channel, len(channels))
	for k, v := range channels {
		owned[k] = append([]Channel(nil), v...)
	}

	return &Generator{
		reg:      reg,
		eng:      eng,
		sampler:  sampler,
		species:  append([]int(nil), species...),
		types:    types,
		channels: owned,
		cfg:      cfg,
	}, nil
}

func checkChannels(reg *particle.Registry, parent particle.Type, chans []Channel) error {
	if len(chans) == 0 {
		return fmt.Errorf("%w: %s", ErrNoDecayChannel, parent.Name)
	}
	sum := 0.0
	for _, c := range chans {
		if !(c.Branching > 0) {
			return fmt.Errorf("%w: %s has branching %g", ErrNoDecayChannel, parent.Name, c.Branching)
		}
		sum += c.Branching
		for _, d := range c.Daughters {
			if _, err := reg.Get(d); err != nil {
				return fmt.Errorf("decay of %s: %w", parent.Name, err)
			}
		}
	}
	if math.Abs(sum-1) > branchingTolerance {
		return fmt.Errorf("%w: %s branchings sum to %f", ErrNoDecayChannel, parent.Name, sum)
	}
	return nil
}

func (g *Generator) Config() Config { return g.cfg }

// NewEvent returns an arena shaped for this generator.
func (g *Generator) NewEvent() *Event {
	return NewEvent(g.cfg.Primaries, g.cfg.MaxResonances)
}

// NewPool returns an event pool shaped for this generator.
func (g *Generator) NewPool() *Pool {
	return NewPool(g.cfg.Primaries, g.cfg.MaxResonances)
}

// Generate fills ev with one event. On error the event is incomplete and
// the returned error is an *EventError.
func (g *Generator) Generate(ev *Event, src random.Source) error {
	ev.Reset()
	if pr, _ := ev.Capacity(); pr != g.cfg.Primaries {
		return &EventError{Event: ev.id, Wrapped: fmt.Errorf("%w: arena holds %d primaries, need %d", ErrInvalidConfig, pr, g.cfg.Primaries)}
	}

	for i := 0; i < g.cfg.Primaries; i++ {
		phi := src.Uniform(0, 2*math.Pi)
		theta := src.Uniform(0, math.Pi)
		p := src.Exp(g.cfg.AverageMomentum)

		sinTheta := math.Sin(theta)
		px := p * sinTheta * math.Cos(phi)
		py := p * sinTheta * math.Sin(phi)
		pz := p * math.Cos(theta)

		species := g.species[g.sampler.Draw(src.Uniform(0, 1))]
		t := g.types[species]

		part := kinematics.NewParticle(species, px, py, pz)
		ev.addPrimary(part, Primary{
			Species: species,
			Phi:     phi,
			Theta:   theta,
			P:       p,
			Pt:      math.Hypot(px, py),
			E:       math.Sqrt(t.Mass*t.Mass + p*p),
		})

		if !t.IsResonance() {
			continue
		}
		ch := g.pickChannel(species, src.Uniform(0, 1))
		d, err := g.eng.DecayTwoBody(part, ch.Daughters[0], ch.Daughters[1], src)
		if err != nil {
			return &EventError{Event: ev.id, Primary: i, Wrapped: err}
		}
		if err := ev.addDecay(d); err != nil {
			return &EventError{Event: ev.id, Primary: i, Wrapped: err}
		}
	}
	return nil
}

func (g *Generator) pickChannel(parent int, u float64) Channel {
	chans := g.channels[parent]
	acc := 0.0
	for _, c := range chans[:len(chans)-1] {
		acc += c.Branching
		if u < acc {
			return c
		}
	}
	return chans[len(chans)-1]
}
