// Package kinematics implements the relativistic kinematics of the
// generator: total energy, invariant mass of a pair, Lorentz boosts and
// two-body decays.
//
// A [Particle] carries only a species index and a 3-momentum; its energy is
// always derived from the momentum and the species mass held by the
// [particle.Registry]:
//
//	eng := kinematics.New(particle.Standard())
//	m, err := eng.InvariantMass(a, b)
//
// All momenta and masses are in GeV (natural units, c = 1).
package kinematics
