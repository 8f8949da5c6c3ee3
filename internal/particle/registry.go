package particle

import "fmt"

// MaxTypes is the capacity of a Registry.
const MaxTypes = 10

type Registry struct {
	types []Type
}

func NewRegistry() *Registry {
	return &Registry{types: make([]Type, 0, MaxTypes)}
}

// Standard returns the seven-species catalog of pions, kaons, protons and
// the neutral K* resonance.
func Standard() *Registry {
	r := NewRegistry()
	for _, t := range StandardTypes() {
		if _, err := r.Register(t.Name, t.Mass, t.Charge, t.Width); err != nil {
			panic(err)
		}
	}
	return r
}

func StandardTypes() []Type {
	return []Type{
		{Name: PionPlus, Mass: 0.13957, Charge: +1},
		{Name: PionMinus, Mass: 0.13957, Charge: -1},
		{Name: KaonPlus, Mass: 0.49367, Charge: +1},
		{Name: KaonMinus, Mass: 0.49367, Charge: -1},
		{Name: ProtonPlus, Mass: 0.93827, Charge: +1},
		{Name: ProtonMinus, Mass: 0.93827, Charge: -1},
		{Name: KaonStar, Mass: 0.89166, Charge: 0, Width: 0.050},
	}
}

// Register appends a new type and returns its index. On error the registry
// is left unchanged.
func (r *Registry) Register(name string, mass float64, charge int, width float64) (int, error) {
	t := Type{Name: name, Mass: mass, Charge: charge, Width: width}
	if err := t.validate(); err != nil {
		return -1, err
	}
	if _, err := r.Lookup(name); err == nil {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	if len(r.types) >= MaxTypes {
		return -1, fmt.Errorf("%w: cannot add %s, limit is %d", ErrCapacityExceeded, name, MaxTypes)
	}
	r.types = append(r.types, t)
	return len(r.types) - 1, nil
}

func (r *Registry) Lookup(name string) (int, error) {
	for i, t := range r.types {
		if t.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (r *Registry) Get(index int) (Type, error) {
	if index < 0 || index >= len(r.types) {
		return Type{}, fmt.Errorf("%w: %d (registry has %d types)", ErrIndexOutOfRange, index, len(r.types))
	}
	return r.types[index], nil
}

func (r *Registry) Len() int { return len(r.types) }

// Types returns a copy of the catalog in registration order.
func (r *Registry) Types() []Type {
	out := make([]Type, len(r.types))
	copy(out, r.types)
	return out
}
