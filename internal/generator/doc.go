// Package generator produces Monte Carlo events.
//
// An [Event] is a preallocated arena. The first Primaries slots hold the
// primaries; decay k of the event writes its two daughters into slots
// Primaries+2k and Primaries+2k+1. Arenas are reused across events with
// [Event.Reset], or recycled through a [Pool], so the generation and pairing
// loops never allocate.
//
// Each primary gets an azimuth uniform in [0, 2π), a polar angle uniform in
// [0, π) (uniform in angle, not on the sphere), a momentum magnitude drawn
// from an exponential distribution and a species drawn by a [Sampler].
// Resonances decay immediately through one of their [Channel]s.
//
// # Thread Safety
//
// A [Generator] is read-only after construction and may be shared by
// goroutines. Events and random sources must not be shared.
package generator
