package generator

import "sync"

// Pool recycles event arenas of one shape.
type Pool struct {
	pool          sync.Pool
	primaries     int
	maxResonances int
}

func NewPool(primaries, maxResonances int) *Pool {
	return &Pool{
		primaries:     primaries,
		maxResonances: maxResonances,
		pool: sync.Pool{
			New: func() any {
				return NewEvent(primaries, maxResonances)
			},
		},
	}
}

// Fits reports whether the pool holds arenas of the given shape.
func (p *Pool) Fits(primaries, maxResonances int) bool {
	return p.primaries == primaries && p.maxResonances == maxResonances
}

func (p *Pool) Get() *Event {
	return p.pool.Get().(*Event)
}

// Put resets ev and returns it to the pool. Events of another shape are dropped.
func (p *Pool) Put(ev *Event) {
	if ev == nil {
		return
	}
	if !p.Fits(ev.Capacity()) {
		return
	}
	ev.Reset()
	p.pool.Put(ev)
}
