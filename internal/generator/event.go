package generator

import "github.com/san-kum/pairmass/internal/kinematics"

// Primary holds the observables recorded for one primary at generation.
type Primary struct {
	Species int
	Phi     float64
	Theta   float64
	P       float64
	Pt      float64
	E       float64
}

// Event is a fixed-capacity particle arena for one Monte Carlo event.
type Event struct {
	id        int64
	arena     []kinematics.Particle
	records   []Primary
	primaries int
	maxDecays int

	filled int
	decays int
}

func NewEvent(primaries, maxResonances int) *Event {
	if primaries < 0 {
		primaries = 0
	}
	if maxResonances < 0 {
		maxResonances = 0
	}
	ev := &Event{
		arena:     make([]kinematics.Particle, primaries+2*maxResonances),
		records:   make([]Primary, primaries),
		primaries: primaries,
		maxDecays: maxResonances,
	}
	ev.Reset()
	return ev
}

// Reset clears the event for reuse without releasing the arena.
func (ev *Event) Reset() {
	for i := range ev.arena {
		ev.arena[i] = kinematics.Unset()
	}
	for i := range ev.records {
		ev.records[i] = Primary{}
	}
	ev.filled = 0
	ev.decays = 0
}

// SetID labels the event; the label is carried by any [EventError].
func (ev *Event) SetID(id int64) { ev.id = id }

func (ev *Event) ID() int64 { return ev.id }

// Capacity returns the number of primary slots and the number of decays the
// arena can hold.
func (ev *Event) Capacity() (primaries, maxResonances int) {
	return ev.primaries, ev.maxDecays
}

// Len returns the number of occupied slots.
func (ev *Event) Len() int { return ev.filled + 2*ev.decays }

// Decays returns the number of resonance decays in the event.
func (ev *Event) Decays() int { return ev.decays }

// Primaries returns the generated primaries, decayed resonances included.
func (ev *Event) Primaries() []kinematics.Particle {
	return ev.arena[:ev.filled]
}

// Particles returns primaries followed by decay products. The two regions
// are contiguous only once every primary slot is filled.
func (ev *Event) Particles() []kinematics.Particle {
	if ev.filled < ev.primaries {
		return ev.arena[:ev.filled]
	}
	return ev.arena[:ev.primaries+2*ev.decays]
}

// DaughterPair returns the two daughters of decay k.
func (ev *Event) DaughterPair(k int) (kinematics.Particle, kinematics.Particle) {
	i := ev.primaries + 2*k
	return ev.arena[i], ev.arena[i+1]
}

// Records returns the observables of the generated primaries.
func (ev *Event) Records() []Primary {
	return ev.records[:ev.filled]
}

func (ev *Event) addPrimary(p kinematics.Particle, rec Primary) {
	ev.arena[ev.filled] = p
	ev.records[ev.filled] = rec
	ev.filled++
}

func (ev *Event) addDecay(d kinematics.Decay) error {
	if ev.decays >= ev.maxDecays {
		return ErrArenaFull
	}
	i := ev.primaries + 2*ev.decays
	ev.arena[i] = d.First
	ev.arena[i+1] = d.Second
	ev.decays++
	return nil
}
