package kinematics

import (
	"fmt"
	"math"

	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/random"
	"gonum.org/v1/gonum/spatial/r3"
)

type Engine struct {
	reg *particle.Registry
}

func New(reg *particle.Registry) *Engine {
	return &Engine{reg: reg}
}

func (e *Engine) Registry() *particle.Registry { return e.reg }

func (e *Engine) Type(p Particle) (particle.Type, error) {
	if p.Index < 0 {
		return particle.Type{}, ErrUnsetType
	}
	return e.reg.Get(p.Index)
}

func (e *Engine) Mass(p Particle) (float64, error) {
	t, err := e.Type(p)
	if err != nil {
		return 0, err
	}
	return t.Mass, nil
}

// TotalEnergy returns sqrt(m² + |p|²).
func (e *Engine) TotalEnergy(p Particle) (float64, error) {
	m, err := e.Mass(p)
	if err != nil {
		return 0, err
	}
	return energy(m, p.P), nil
}

// InvariantMass returns the mass of the two-particle system. The radicand is
// formed from the summed 4-momenta, never from the expanded product form.
func (e *Engine) InvariantMass(a, b Particle) (float64, error) {
	ea, err := e.TotalEnergy(a)
	if err != nil {
		return 0, err
	}
	eb, err := e.TotalEnergy(b)
	if err != nil {
		return 0, err
	}
	return invariantMass(ea, a.P, eb, b.P)
}

// Boost applies a Lorentz boost with velocity β to p. The energy of the
// result is again derived from its mass.
func (e *Engine) Boost(p Particle, beta r3.Vec) (Particle, error) {
	if b2 := r3.Norm2(beta); b2 >= 1 {
		return p, fmt.Errorf("%w: |β|² = %g", ErrSuperluminal, b2)
	}
	en, err := e.TotalEnergy(p)
	if err != nil {
		return p, err
	}
	q, _ := BoostFourMomentum(p.P, en, beta)
	return Particle{Index: p.Index, P: q}, nil
}

// BoostFourMomentum boosts the 4-momentum (en, p) by β, |β| < 1, and returns
// the transformed 3-momentum and energy.
func BoostFourMomentum(p r3.Vec, en float64, beta r3.Vec) (r3.Vec, float64) {
	b2 := r3.Norm2(beta)
	if b2 == 0 {
		return p, en
	}
	gamma := 1 / math.Sqrt(1-b2)
	bp := r3.Dot(beta, p)
	gamma2 := (gamma - 1) / b2
	q := r3.Add(p, r3.Scale(gamma2*bp+gamma*en, beta))
	return q, gamma * (en + bp)
}

// PairMass is InvariantMass for callers that already hold both energies.
func PairMass(e1 float64, p1 r3.Vec, e2 float64, p2 r3.Vec) (float64, error) {
	return invariantMass(e1, p1, e2, p2)
}

func energy(mass float64, p r3.Vec) float64 {
	return math.Sqrt(mass*mass + r3.Norm2(p))
}

func invariantMass(e1 float64, p1 r3.Vec, e2 float64, p2 r3.Vec) (float64, error) {
	en := e1 + e2
	m2 := en*en - r3.Norm2(r3.Add(p1, p2))
	if m2 < 0 {
		return 0, fmt.Errorf("%w: %g", ErrNegativeRadicand, m2)
	}
	return math.Sqrt(m2), nil
}

// Decay is the outcome of a two-body decay. Mass is the parent mass actually
// used, which differs from the nominal mass for resonances.
type Decay struct {
	First  Particle
	Second Particle
	Mass   float64
}

// DecayTwoBody decays parent into daughters of types t1 and t2. The decay is
// isotropic-in-angle in the parent rest frame, and both daughters are then
// boosted into the lab frame. Resonance masses are smeared with a Gaussian
// of σ = width. The parent is not modified.
func (e *Engine) DecayTwoBody(parent Particle, t1, t2 int, src random.Source) (Decay, error) {
	pt, err := e.Type(parent)
	if err != nil {
		return Decay{}, err
	}
	if pt.Mass == 0 {
		return Decay{}, fmt.Errorf("%w: %s", ErrMasslessParent, pt.Name)
	}
	d1, err := e.reg.Get(t1)
	if err != nil {
		return Decay{}, err
	}
	d2, err := e.reg.Get(t2)
	if err != nil {
		return Decay{}, err
	}

	m := pt.Mass
	if pt.IsResonance() {
		m = src.Gaus(pt.Mass, pt.Width)
	}
	m1, m2 := d1.Mass, d2.Mass
	if m <= 0 || m < m1+m2 {
		return Decay{}, fmt.Errorf("%w: %s mass %.5f < %s + %s = %.5f", ErrMassDeficit, pt.Name, m, d1.Name, d2.Name, m1+m2)
	}

	pstar := math.Sqrt((m*m-(m1+m2)*(m1+m2))*(m*m-(m1-m2)*(m1-m2))) / (2 * m)

	phi := src.Uniform(0, 2*math.Pi)
	theta := src.Uniform(-math.Pi/2, math.Pi/2)
	dir := r3.Vec{
		X: math.Sin(theta) * math.Cos(phi),
		Y: math.Sin(theta) * math.Sin(phi),
		Z: math.Cos(theta),
	}
	p1 := r3.Scale(pstar, dir)
	p2 := r3.Scale(-pstar, dir)

	beta := r3.Scale(1/energy(m, parent.P), parent.P)
	q1, _ := BoostFourMomentum(p1, energy(m1, p1), beta)
	q2, _ := BoostFourMomentum(p2, energy(m2, p2), beta)

	return Decay{
		First:  Particle{Index: t1, P: q1},
		Second: Particle{Index: t2, P: q2},
		Mass:   m,
	}, nil
}
