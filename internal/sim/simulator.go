package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/pairmass/internal/classify"
	"github.com/san-kum/pairmass/internal/generator"
	"github.com/san-kum/pairmass/internal/kinematics"
	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/random"
	"github.com/san-kum/pairmass/internal/validate"
)

// maxKeptErrors bounds Result.Errors; every skip is still counted.
const maxKeptErrors = 10

type Simulator struct {
	reg      *particle.Registry
	eng      *kinematics.Engine
	sampler  *generator.Sampler
	species  []int
	probs    map[int]float64
	channels map[int][]generator.Channel
	logger   *slog.Logger
	observer Observer

	mu   sync.Mutex
	pool *generator.Pool
}

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observer = o }
}

// New resolves species and decays against reg and validates the species
// probabilities once. reg must not change afterwards.
func New(reg *particle.Registry, species []Species, decays []Decay, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		reg:      reg,
		eng:      kinematics.New(reg),
		probs:    make(map[int]float64, len(species)),
		channels: make(map[int][]generator.Channel),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	probs := make([]float64, 0, len(species))
	for _, sp := range species {
		idx, err := reg.Lookup(sp.Name)
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", sp.Name, err)
		}
		if _, dup := s.probs[idx]; dup {
			return nil, fmt.Errorf("species %q listed twice", sp.Name)
		}
		s.species = append(s.species, idx)
		s.probs[idx] = sp.Probability
		probs = append(probs, sp.Probability)
	}
	sampler, err := generator.NewSampler(probs)
	if err != nil {
		return nil, err
	}
	s.sampler = sampler

	for _, d := range decays {
		parent, err := reg.Lookup(d.Parent)
		if err != nil {
			return nil, fmt.Errorf("decay parent %q: %w", d.Parent, err)
		}
		var ch generator.Channel
		ch.Branching = d.Branching
		for i, name := range d.Daughters {
			idx, err := reg.Lookup(name)
			if err != nil {
				return nil, fmt.Errorf("decay of %s: daughter %q: %w", d.Parent, name, err)
			}
			ch.Daughters[i] = idx
		}
		s.channels[parent] = append(s.channels[parent], ch)
	}

	return s, nil
}

func (s *Simulator) Registry() *particle.Registry { return s.reg }

// eventPool returns the arena pool for the shape of gen. Arenas survive
// across runs of the same shape.
func (s *Simulator) eventPool(gen *generator.Generator) *generator.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := gen.Config()
	if s.pool == nil || !s.pool.Fits(cfg.Primaries, cfg.MaxResonances) {
		s.pool = gen.NewPool()
	}
	return s.pool
}

func (s *Simulator) newGenerator(cfg Config) (*generator.Generator, error) {
	return generator.New(s.reg, s.eng, s.sampler, s.channels, generator.Config{
		Primaries:       cfg.Primaries,
		MaxResonances:   cfg.MaxResonances,
		AverageMomentum: cfg.AverageMomentum,
		Species:         s.species,
	})
}

// Run generates cfg.Iterations events. With more than one worker the
// iterations are split into contiguous chunks, each with its own random
// stream seeded Seed+worker, and the partial histograms are merged in
// worker order. On cancellation the events completed so far are returned
// together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	gen, err := s.newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.Info("run started",
		"iterations", cfg.Iterations,
		"primaries", cfg.Primaries,
		"workers", cfg.Workers,
		"seed", cfg.Seed)

	var (
		parts  []*partial
		runErr error
	)
	if cfg.Workers <= 1 {
		pool := s.eventPool(gen)
		p, perr := s.newPartial(cfg, gen, pool)
		if perr != nil {
			return nil, perr
		}
		runErr = s.runChunk(ctx, p, random.New(cfg.Seed), 0, int64(cfg.Iterations), cfg.Iterations, nil)
		pool.Put(p.ev)
		parts = []*partial{p}
	} else {
		parts, runErr = s.runParallel(ctx, cfg, gen, s.eventPool(gen))
		if parts == nil {
			return nil, runErr
		}
	}

	result, err := s.merge(cfg, parts)
	if err != nil {
		return nil, err
	}
	result.Elapsed = time.Since(start)

	if result.Skipped > 0 {
		s.logger.Warn("events skipped", "skipped", result.Skipped, "first_error", result.Errors[0])
	}
	s.logger.Info("run finished",
		"events", result.Events,
		"pairs", result.Pairs,
		"decays", result.Decays,
		"elapsed", result.Elapsed)

	return result, runErr
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.Primaries <= 0 {
		return fmt.Errorf("primaries must be positive, got %d", cfg.Primaries)
	}
	if cfg.MaxResonances < cfg.Primaries {
		return fmt.Errorf("max resonances must be at least primaries (%d), got %d", cfg.Primaries, cfg.MaxResonances)
	}
	if cfg.AverageMomentum <= 0 {
		return fmt.Errorf("average momentum must be positive, got %f", cfg.AverageMomentum)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return cfg.Binning.validate()
}

// partial is the state owned by one worker.
type partial struct {
	hists   *Histograms
	ev      *generator.Event
	gen     *generator.Generator
	cls     *classify.Classifier
	streams *Streams
	events  int64
	skipped int64
	pairs   int64
	decays  int64
	errs    []error
}

func (s *Simulator) newPartial(cfg Config, gen *generator.Generator, pool *generator.Pool) (*partial, error) {
	h, err := NewHistograms(s.reg.Len(), cfg.Binning)
	if err != nil {
		return nil, err
	}
	p := &partial{
		hists: h,
		ev:    pool.Get(),
		gen:   gen,
		cls:   classify.New(s.reg, s.eng),
	}
	if cfg.KeepStreams {
		p.streams = &Streams{}
	}
	return p, nil
}

// runChunk processes events [from, to). done, when set, counts events
// across workers for the observer.
func (s *Simulator) runChunk(ctx context.Context, p *partial, src random.Source, from, to int64, total int, done func() int) error {
	for i := from; i < to; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.ev.SetID(i)
		stats, err := s.event(p, src)
		if err != nil {
			p.skipped++
			if len(p.errs) < maxKeptErrors {
				p.errs = append(p.errs, err)
			}
			s.logger.Debug("event skipped", "event", i, "error", err)
		} else {
			p.events++
			p.pairs += int64(stats.Pairs)
			p.decays += int64(stats.Daughters)
		}

		if s.observer != nil {
			n := int(i-from) + 1
			if done != nil {
				n = done()
			}
			s.observer.OnEvent(n, total)
		}
	}
	return nil
}

// event generates and classifies one event. Nothing is filled unless both
// succeed.
func (s *Simulator) event(p *partial, src random.Source) (classify.Stats, error) {
	if err := p.gen.Generate(p.ev, src); err != nil {
		return classify.Stats{}, err
	}
	stats, err := p.cls.Classify(p.ev, p.hists.Channels)
	if err != nil {
		return classify.Stats{}, &generator.EventError{Event: p.ev.ID(), Primary: -1, Wrapped: err}
	}
	p.hists.fillEvent(p.ev)
	if p.streams != nil {
		p.streams.record(p.ev)
	}
	return stats, nil
}

func (s *Simulator) merge(cfg Config, parts []*partial) (*Result, error) {
	h, err := NewHistograms(s.reg.Len(), cfg.Binning)
	if err != nil {
		return nil, err
	}
	res := &Result{Histograms: h, Primaries: cfg.Primaries}
	if cfg.KeepStreams {
		res.Streams = &Streams{}
	}

	for _, p := range parts {
		if p == nil {
			continue
		}
		if err := h.Merge(p.hists); err != nil {
			return nil, err
		}
		res.Events += p.events
		res.Skipped += p.skipped
		res.Pairs += p.pairs
		res.Decays += p.decays
		for _, e := range p.errs {
			if len(res.Errors) < maxKeptErrors {
				res.Errors = append(res.Errors, e)
			}
		}
		if res.Streams != nil && p.streams != nil {
			res.Streams.append(p.streams)
		}
	}

	res.Species = s.speciesCounts(h)
	return res, nil
}

func (s *Simulator) speciesCounts(h *Histograms) []SpeciesCount {
	types := s.reg.Types()
	out := make([]SpeciesCount, len(types))
	for i, t := range types {
		out[i] = SpeciesCount{
			Name:        t.Name,
			Charge:      t.Charge,
			Resonance:   t.IsResonance(),
			Probability: s.probs[i],
			Generated:   validate.Measurement{Value: h.Species.BinContent(i + 1), Err: h.Species.BinError(i + 1)},
			Final:       validate.Measurement{Value: h.FinalSpecies.BinContent(i + 1), Err: h.FinalSpecies.BinError(i + 1)},
		}
	}
	return out
}

// Validate checks a result against its expectations with tolerance tol.
func Validate(res *Result, tol float64) []validate.Check {
	in := validate.Input{
		Events:    res.Events,
		Primaries: res.Primaries,
	}
	for _, sc := range res.Species {
		in.Species = append(in.Species, validate.Species{
			Name:        sc.Name,
			Charge:      sc.Charge,
			Resonance:   sc.Resonance,
			Probability: sc.Probability,
			Generated:   sc.Generated,
			Final:       sc.Final,
		})
	}

	h := res.Histograms
	for _, g := range h.Generation() {
		in.Generation = append(in.Generation, validate.Entry{Name: g.Name(), Entries: g.Entries()})
	}
	ch := h.Channels
	in.Pairs = validate.PairEntries{
		All:                ch.All.Entries(),
		Discordant:         ch.Discordant.Entries(),
		Concordant:         ch.Concordant.Entries(),
		DiscordantPionKaon: ch.DiscordantPionKaon.Entries(),
		ConcordantPionKaon: ch.ConcordantPionKaon.Entries(),
		Daughters:          ch.Daughters.Entries(),
	}
	return validate.Run(in, tol)
}
