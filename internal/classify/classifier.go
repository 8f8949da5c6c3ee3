// Package classify enumerates the charged pairs of an event and fills the
// invariant mass channels.
//
// A Classifier owns scratch buffers and is not safe for concurrent use; give
// each worker its own.
package classify

import (
	"fmt"

	"github.com/san-kum/pairmass/internal/generator"
	"github.com/san-kum/pairmass/internal/kinematics"
	"github.com/san-kum/pairmass/internal/particle"
)

type pairKind uint8

const (
	pairOther pairKind = iota
	pairDiscordantPionKaon
	pairConcordantPionKaon
)

// Stats summarizes one classified event.
type Stats struct {
	Charged   int
	Pairs     int
	Daughters int
}

type Classifier struct {
	eng      *kinematics.Engine
	n        int
	pairable []bool
	charge   []int
	kinds    []pairKind

	sel      []int
	energies []float64
	masses   []float64
	dmasses  []float64
}

func New(reg *particle.Registry, eng *kinematics.Engine) *Classifier {
	types := reg.Types()
	n := len(types)
	c := &Classifier{
		eng:      eng,
		n:        n,
		pairable: make([]bool, n),
		charge:   make([]int, n),
		kinds:    make([]pairKind, n*n),
	}
	for i, t := range types {
		c.pairable[i] = t.IsCharged() && !t.IsResonance()
		c.charge[i] = t.Charge
	}

	idx := func(name string) int {
		i, err := reg.Lookup(name)
		if err != nil {
			return -1
		}
		return i
	}
	piP, piM := idx(particle.PionPlus), idx(particle.PionMinus)
	kP, kM := idx(particle.KaonPlus), idx(particle.KaonMinus)
	c.setKind(piP, kM, pairDiscordantPionKaon)
	c.setKind(piM, kP, pairDiscordantPionKaon)
	c.setKind(piP, kP, pairConcordantPionKaon)
	c.setKind(piM, kM, pairConcordantPionKaon)
	return c
}

func (c *Classifier) setKind(a, b int, k pairKind) {
	if a < 0 || b < 0 {
		return
	}
	c.kinds[a*c.n+b] = k
	c.kinds[b*c.n+a] = k
}

// Classify fills ch from every unordered pair of charged stable particles
// in ev and from every decay daughter pair. All masses are computed before
// anything is filled: on error ch is left untouched.
func (c *Classifier) Classify(ev *generator.Event, ch *Channels) (Stats, error) {
	parts := ev.Particles()

	c.sel = c.sel[:0]
	c.energies = c.energies[:0]
	for i, p := range parts {
		if p.Index < 0 || p.Index >= c.n || !c.pairable[p.Index] {
			continue
		}
		e, err := c.eng.TotalEnergy(p)
		if err != nil {
			return Stats{}, fmt.Errorf("particle %d: %w", i, err)
		}
		c.sel = append(c.sel, i)
		c.energies = append(c.energies, e)
	}

	k := len(c.sel)
	c.masses = c.masses[:0]
	for a := 0; a < k; a++ {
		pa := parts[c.sel[a]].P
		for b := a + 1; b < k; b++ {
			m, err := kinematics.PairMass(c.energies[a], pa, c.energies[b], parts[c.sel[b]].P)
			if err != nil {
				return Stats{}, fmt.Errorf("pair (%d, %d): %w", c.sel[a], c.sel[b], err)
			}
			c.masses = append(c.masses, m)
		}
	}

	c.dmasses = c.dmasses[:0]
	for d := 0; d < ev.Decays(); d++ {
		first, second := ev.DaughterPair(d)
		m, err := c.eng.InvariantMass(first, second)
		if err != nil {
			return Stats{}, fmt.Errorf("decay %d: %w", d, err)
		}
		c.dmasses = append(c.dmasses, m)
	}

	n := 0
	for a := 0; a < k; a++ {
		ta := parts[c.sel[a]].Index
		for b := a + 1; b < k; b++ {
			tb := parts[c.sel[b]].Index
			m := c.masses[n]
			n++

			ch.All.Fill(m)
			if c.charge[ta] != c.charge[tb] {
				ch.Discordant.Fill(m)
			} else {
				ch.Concordant.Fill(m)
			}
			switch c.kinds[ta*c.n+tb] {
			case pairDiscordantPionKaon:
				ch.DiscordantPionKaon.Fill(m)
			case pairConcordantPionKaon:
				ch.ConcordantPionKaon.Fill(m)
			}
		}
	}
	for _, m := range c.dmasses {
		ch.Daughters.Fill(m)
	}

	return Stats{Charged: k, Pairs: n, Daughters: len(c.dmasses)}, nil
}
