package kinematics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is a species index into a registry plus a 3-momentum. Index -1
// means the species is unset.
type Particle struct {
	Index int
	P     r3.Vec
}

func NewParticle(index int, px, py, pz float64) Particle {
	return Particle{Index: index, P: r3.Vec{X: px, Y: py, Z: pz}}
}

func Unset() Particle { return Particle{Index: -1} }

func (p Particle) IsSet() bool { return p.Index >= 0 }

func (p Particle) String() string {
	return fmt.Sprintf("[index = %d] P = (%g, %g, %g)", p.Index, p.P.X, p.P.Y, p.P.Z)
}
