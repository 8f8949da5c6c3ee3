// Package particle holds the catalog of particle species used by the
// generator.
//
// A [Registry] is populated once before generation starts and is read-only
// afterwards:
//
//	reg := particle.NewRegistry()
//	pion, _ := reg.Register(particle.PionPlus, 0.13957, +1, 0)
//	kstar, _ := reg.Register(particle.KaonStar, 0.89166, 0, 0.050)
//
// A [Type] with a non-zero width is a resonance and decays into two
// daughters as soon as it is generated.
//
// # Thread Safety
//
// Registration is not synchronized. Concurrent lookups are safe once
// registration has finished.
package particle
