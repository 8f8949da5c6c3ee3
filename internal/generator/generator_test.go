package generator

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pairmass/internal/kinematics"
	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/random"
)

var standardProbs = []float64{0.4, 0.4, 0.05, 0.05, 0.045, 0.045, 0.01}

type fixedSource struct {
	frac   float64
	sigmas float64
}

func (f fixedSource) Uniform(lo, hi float64) float64   { return lo + f.frac*(hi-lo) }
func (f fixedSource) Exp(mean float64) float64          { return mean }
func (f fixedSource) Gaus(mean, sigma float64) float64 { return mean + f.sigmas*sigma }

func lookup(t *testing.T, reg *particle.Registry, name string) int {
	t.Helper()
	i, err := reg.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return i
}

func kstarChannels(t *testing.T, reg *particle.Registry) map[int][]Channel {
	return map[int][]Channel{
		lookup(t, reg, particle.KaonStar): {
			{Daughters: [2]int{lookup(t, reg, particle.PionPlus), lookup(t, reg, particle.KaonMinus)}, Branching: 0.5},
			{Daughters: [2]int{lookup(t, reg, particle.PionMinus), lookup(t, reg, particle.KaonPlus)}, Branching: 0.5},
		},
	}
}

func newStandard(t *testing.T, cfg Config) *Generator {
	t.Helper()
	reg := particle.Standard()
	s, err := NewSampler(standardProbs)
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(reg, kinematics.New(reg), s, kstarChannels(t, reg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewSamplerInvalid(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
	}{
		{"empty", nil},
		{"zero entry", []float64{0.5, 0, 0.5}},
		{"negative entry", []float64{1.2, -0.2}},
		{"sum below one", []float64{0.4, 0.4}},
		{"sum above one", []float64{0.6, 0.6}},
		{"nan", []float64{math.NaN(), 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSampler(tt.probs)
			if !errors.Is(err, ErrInvalidProbabilities) {
				t.Errorf("expected ErrInvalidProbabilities, got %v", err)
			}
		})
	}
}

func TestSamplerDraw(t *testing.T) {
	s, err := NewSampler([]float64{0.4, 0.4, 0.2})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{0.3999, 0},
		{0.4, 1},
		{0.7999, 1},
		{0.8, 2},
		{0.99999, 2},
		{1.5, 2},
	}
	for _, tt := range tests {
		if got := s.Draw(tt.u); got != tt.want {
			t.Errorf("Draw(%v): expected %d, got %d", tt.u, tt.want, got)
		}
	}
}

func TestNewMissingChannel(t *testing.T) {
	reg := particle.Standard()
	s, _ := NewSampler(standardProbs)
	_, err := New(reg, kinematics.New(reg), s, nil, Config{Primaries: 10, MaxResonances: 2, AverageMomentum: 1})
	if !errors.Is(err, ErrNoDecayChannel) {
		t.Errorf("expected ErrNoDecayChannel, got %v", err)
	}
}

func TestNewBadBranching(t *testing.T) {
	reg := particle.Standard()
	s, _ := NewSampler(standardProbs)
	chans := kstarChannels(t, reg)
	k := lookup(t, reg, particle.KaonStar)
	chans[k][1].Branching = 0.3

	_, err := New(reg, kinematics.New(reg), s, chans, Config{Primaries: 10, MaxResonances: 2, AverageMomentum: 1})
	if !errors.Is(err, ErrNoDecayChannel) {
		t.Errorf("expected ErrNoDecayChannel, got %v", err)
	}
}

func TestNewSpeciesMismatch(t *testing.T) {
	reg := particle.Standard()
	s, _ := NewSampler([]float64{0.5, 0.5})
	_, err := New(reg, kinematics.New(reg), s, nil, Config{Primaries: 10, AverageMomentum: 1})
	if !errors.Is(err, ErrInvalidProbabilities) {
		t.Errorf("expected ErrInvalidProbabilities, got %v", err)
	}

	// an explicit mapping draws only the pions
	g, err := New(reg, kinematics.New(reg), s, nil, Config{Primaries: 10, AverageMomentum: 1, Species: []int{0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	ev := g.NewEvent()
	if err := g.Generate(ev, random.New(3)); err != nil {
		t.Fatal(err)
	}
	for _, p := range ev.Primaries() {
		if p.Index > 1 {
			t.Errorf("expected only pions, got index %d", p.Index)
		}
	}
}

func TestNewInvalidConfig(t *testing.T) {
	reg := particle.Standard()
	s, _ := NewSampler(standardProbs)
	chans := kstarChannels(t, reg)

	tests := []Config{
		{Primaries: 0, AverageMomentum: 1},
		{Primaries: 10, MaxResonances: -1, AverageMomentum: 1},
		{Primaries: 10, AverageMomentum: 0},
	}
	for _, cfg := range tests {
		if _, err := New(reg, kinematics.New(reg), s, chans, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("config %+v: expected ErrInvalidConfig, got %v", cfg, err)
		}
	}
}

func TestGenerateStandard(t *testing.T) {
	g := newStandard(t, Config{Primaries: 100, MaxResonances: 20, AverageMomentum: 1})
	reg := particle.Standard()
	kstar := lookup(t, reg, particle.KaonStar)
	src := random.New(42)
	ev := g.NewEvent()

	for n := 0; n < 200; n++ {
		if err := g.Generate(ev, src); err != nil {
			t.Fatal(err)
		}
		if len(ev.Primaries()) != 100 {
			t.Fatalf("expected 100 primaries, got %d", len(ev.Primaries()))
		}

		resonances := 0
		for i, rec := range ev.Records() {
			if rec.Species < 0 || rec.Species >= reg.Len() {
				t.Fatalf("species %d out of range", rec.Species)
			}
			if rec.Phi < 0 || rec.Phi >= 2*math.Pi {
				t.Errorf("phi %f out of range", rec.Phi)
			}
			if rec.Theta < 0 || rec.Theta >= math.Pi {
				t.Errorf("theta %f out of range", rec.Theta)
			}
			if rec.Pt > rec.P+1e-12 {
				t.Errorf("pt %f exceeds p %f", rec.Pt, rec.P)
			}
			if got := ev.Primaries()[i].P; math.Abs(math.Sqrt(got.X*got.X+got.Y*got.Y+got.Z*got.Z)-rec.P) > 1e-9 {
				t.Errorf("momentum magnitude does not match record")
			}
			if rec.Species == kstar {
				resonances++
			}
		}

		if ev.Decays() != resonances {
			t.Fatalf("expected %d decays, got %d", resonances, ev.Decays())
		}
		if ev.Len() != 100+2*resonances {
			t.Errorf("expected length %d, got %d", 100+2*resonances, ev.Len())
		}
		for k := 0; k < ev.Decays(); k++ {
			a, b := ev.DaughterPair(k)
			ta, _ := reg.Get(a.Index)
			tb, _ := reg.Get(b.Index)
			if ta.Charge+tb.Charge != 0 {
				t.Errorf("decay %d: daughters %s %s do not conserve charge", k, ta.Name, tb.Name)
			}
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	g := newStandard(t, Config{Primaries: 50, MaxResonances: 10, AverageMomentum: 1})
	a, b := g.NewEvent(), g.NewEvent()
	sa, sb := random.New(7), random.New(7)

	for n := 0; n < 20; n++ {
		if err := g.Generate(a, sa); err != nil {
			t.Fatal(err)
		}
		if err := g.Generate(b, sb); err != nil {
			t.Fatal(err)
		}
		pa, pb := a.Particles(), b.Particles()
		if len(pa) != len(pb) {
			t.Fatalf("event %d: lengths differ %d vs %d", n, len(pa), len(pb))
		}
		for i := range pa {
			if pa[i] != pb[i] {
				t.Fatalf("event %d slot %d: %v vs %v", n, i, pa[i], pb[i])
			}
		}
	}
}

func TestGenerateForcedResonances(t *testing.T) {
	reg := particle.Standard()
	g := newStandard(t, Config{Primaries: 5, MaxResonances: 5, AverageMomentum: 1})
	ev := g.NewEvent()

	// u = 0.999 always draws the last species (K*) and the last channel
	if err := g.Generate(ev, fixedSource{frac: 0.999}); err != nil {
		t.Fatal(err)
	}
	if ev.Decays() != 5 {
		t.Fatalf("expected 5 decays, got %d", ev.Decays())
	}

	eng := kinematics.New(reg)
	piMinus := lookup(t, reg, particle.PionMinus)
	kPlus := lookup(t, reg, particle.KaonPlus)
	for k := 0; k < ev.Decays(); k++ {
		a, b := ev.DaughterPair(k)
		if a.Index != piMinus || b.Index != kPlus {
			t.Errorf("decay %d: expected π- K+, got %d %d", k, a.Index, b.Index)
		}
		m, err := eng.InvariantMass(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(m-0.89166) > 1e-9 {
			t.Errorf("decay %d: expected mass 0.89166, got %f", k, m)
		}
	}
}

func TestGenerateArenaFull(t *testing.T) {
	g := newStandard(t, Config{Primaries: 5, MaxResonances: 2, AverageMomentum: 1})
	ev := g.NewEvent()
	ev.SetID(17)

	err := g.Generate(ev, fixedSource{frac: 0.999})
	if !errors.Is(err, ErrArenaFull) {
		t.Fatalf("expected ErrArenaFull, got %v", err)
	}
	var evErr *EventError
	if !errors.As(err, &evErr) {
		t.Fatalf("expected *EventError, got %T", err)
	}
	if evErr.Event != 17 || evErr.Primary != 2 {
		t.Errorf("expected event 17 primary 2, got event %d primary %d", evErr.Event, evErr.Primary)
	}
}

func TestGenerateMassDeficit(t *testing.T) {
	g := newStandard(t, Config{Primaries: 3, MaxResonances: 3, AverageMomentum: 1})
	ev := g.NewEvent()

	err := g.Generate(ev, fixedSource{frac: 0.999, sigmas: -20})
	if !errors.Is(err, kinematics.ErrMassDeficit) {
		t.Errorf("expected ErrMassDeficit, got %v", err)
	}
}

func TestEventReset(t *testing.T) {
	g := newStandard(t, Config{Primaries: 4, MaxResonances: 4, AverageMomentum: 1})
	ev := g.NewEvent()
	if err := g.Generate(ev, fixedSource{frac: 0.999}); err != nil {
		t.Fatal(err)
	}
	ev.Reset()
	if ev.Len() != 0 || ev.Decays() != 0 || len(ev.Records()) != 0 {
		t.Errorf("expected empty event after reset, got len %d decays %d", ev.Len(), ev.Decays())
	}
}

func TestPool(t *testing.T) {
	p := NewPool(10, 2)
	ev := p.Get()
	if pr, mr := ev.Capacity(); pr != 10 || mr != 2 {
		t.Fatalf("expected capacity (10, 2), got (%d, %d)", pr, mr)
	}
	p.Put(ev)
	p.Put(NewEvent(3, 1))
	p.Put(nil)

	ev = p.Get()
	if ev.Len() != 0 {
		t.Errorf("expected reset event, got len %d", ev.Len())
	}
	if pr, _ := ev.Capacity(); pr != 10 {
		t.Errorf("expected 10 primaries, got %d", pr)
	}
}

func TestPoolFits(t *testing.T) {
	p := NewPool(10, 2)
	if !p.Fits(10, 2) {
		t.Error("expected pool to fit its own shape")
	}
	if p.Fits(10, 3) || p.Fits(9, 2) {
		t.Error("expected pool to reject another shape")
	}
}
