package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSeed            = 1
	DefaultIterations      = 100000
	DefaultPrimaries       = 100
	DefaultAverageMomentum = 1.0
	DefaultTolerance       = 3.0

	// EnvPrefix prefixes every environment override, e.g. PAIRMASS_SEED.
	EnvPrefix = "PAIRMASS_"
)

type Config struct {
	Seed            int64            `yaml:"seed"`
	Iterations      int              `yaml:"iterations"`
	Primaries       int              `yaml:"primaries"`
	MaxResonances   int              `yaml:"max_resonances,omitempty"`
	Workers         int              `yaml:"workers"`
	AverageMomentum float64          `yaml:"average_momentum"`
	Tolerance       float64          `yaml:"tolerance"`
	KeepStreams     bool             `yaml:"keep_streams"`
	Binning         sim.Binning      `yaml:"binning"`
	Particles       []ParticleConfig `yaml:"particles"`
	Decays          []DecayConfig    `yaml:"decays"`
	Log             LogConfig        `yaml:"log"`
}

type ParticleConfig struct {
	Name        string  `yaml:"name"`
	Mass        float64 `yaml:"mass"`
	Charge      int     `yaml:"charge"`
	Width       float64 `yaml:"width,omitempty"`
	Probability float64 `yaml:"probability"`
}

type DecayConfig struct {
	Parent    string    `yaml:"parent"`
	Daughters [2]string `yaml:"daughters,flow"`
	Branching float64   `yaml:"branching"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// overrides are the settings that can come from the environment.
type overrides struct {
	Seed            int64   `env:"SEED"`
	Iterations      int     `env:"ITERATIONS"`
	Primaries       int     `env:"PRIMARIES"`
	Workers         int     `env:"WORKERS"`
	AverageMomentum float64 `env:"AVERAGE_MOMENTUM"`
	Tolerance       float64 `env:"TOLERANCE"`
	KeepStreams     bool    `env:"KEEP_STREAMS"`
	LogLevel        string  `env:"LOG_LEVEL"`
	LogFormat       string  `env:"LOG_FORMAT"`
}

var standardProbabilities = map[string]float64{
	particle.PionPlus:    0.4,
	particle.PionMinus:   0.4,
	particle.KaonPlus:    0.05,
	particle.KaonMinus:   0.05,
	particle.ProtonPlus:  0.045,
	particle.ProtonMinus: 0.045,
	particle.KaonStar:    0.01,
}

func DefaultConfig() *Config {
	cfg := &Config{
		Seed:            DefaultSeed,
		Iterations:      DefaultIterations,
		Primaries:       DefaultPrimaries,
		Workers:         1,
		AverageMomentum: DefaultAverageMomentum,
		Tolerance:       DefaultTolerance,
		Binning:         sim.DefaultBinning(),
		Decays: []DecayConfig{
			{Parent: particle.KaonStar, Daughters: [2]string{particle.PionPlus, particle.KaonMinus}, Branching: 0.5},
			{Parent: particle.KaonStar, Daughters: [2]string{particle.PionMinus, particle.KaonPlus}, Branching: 0.5},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
	for _, t := range particle.StandardTypes() {
		cfg.Particles = append(cfg.Particles, ParticleConfig{
			Name:        t.Name,
			Mass:        t.Mass,
			Charge:      t.Charge,
			Width:       t.Width,
			Probability: standardProbabilities[t.Name],
		})
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	particles, decays := cfg.Particles, cfg.Decays
	cfg.Particles, cfg.Decays = nil, nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// default decays only apply to the default particles
	if cfg.Particles == nil {
		cfg.Particles = particles
		if cfg.Decays == nil {
			cfg.Decays = decays
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides cfg with any PAIRMASS_* variables that are set.
func ApplyEnv(cfg *Config) error {
	o := overrides{
		Seed:            cfg.Seed,
		Iterations:      cfg.Iterations,
		Primaries:       cfg.Primaries,
		Workers:         cfg.Workers,
		AverageMomentum: cfg.AverageMomentum,
		Tolerance:       cfg.Tolerance,
		KeepStreams:     cfg.KeepStreams,
		LogLevel:        cfg.Log.Level,
		LogFormat:       cfg.Log.Format,
	}
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.Seed = o.Seed
	cfg.Iterations = o.Iterations
	cfg.Primaries = o.Primaries
	cfg.Workers = o.Workers
	cfg.AverageMomentum = o.AverageMomentum
	cfg.Tolerance = o.Tolerance
	cfg.KeepStreams = o.KeepStreams
	cfg.Log.Level = o.LogLevel
	cfg.Log.Format = o.LogFormat
	return nil
}

// Validate checks what the simulator cannot check itself.
func (c *Config) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %f", c.Tolerance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.MaxResonances != 0 && c.MaxResonances < c.Primaries {
		return fmt.Errorf("max_resonances must be 0 or at least primaries (%d), got %d", c.Primaries, c.MaxResonances)
	}
	if len(c.Species()) == 0 {
		return fmt.Errorf("no particle has a positive probability")
	}
	reg, err := c.Registry()
	if err != nil {
		return err
	}
	for _, d := range c.Decays {
		for _, name := range []string{d.Parent, d.Daughters[0], d.Daughters[1]} {
			if _, err := reg.Lookup(name); err != nil {
				return fmt.Errorf("decay %s -> %s %s: %w", d.Parent, d.Daughters[0], d.Daughters[1], err)
			}
		}
	}
	return nil
}

// Registry registers the configured particles in order.
func (c *Config) Registry() (*particle.Registry, error) {
	reg := particle.NewRegistry()
	for _, p := range c.Particles {
		if _, err := reg.Register(p.Name, p.Mass, p.Charge, p.Width); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Species returns the particles drawn as primaries. Particles with zero
// probability only appear as decay products.
func (c *Config) Species() []sim.Species {
	var out []sim.Species
	for _, p := range c.Particles {
		if p.Probability != 0 {
			out = append(out, sim.Species{Name: p.Name, Probability: p.Probability})
		}
	}
	return out
}

func (c *Config) DecayChannels() []sim.Decay {
	out := make([]sim.Decay, len(c.Decays))
	for i, d := range c.Decays {
		out[i] = sim.Decay{Parent: d.Parent, Daughters: d.Daughters, Branching: d.Branching}
	}
	return out
}

// SimConfig returns the run configuration. Zero workers means one per CPU
// and zero max resonances means one decay slot per primary.
func (c *Config) SimConfig() sim.Config {
	workers := c.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	maxRes := c.MaxResonances
	if maxRes == 0 {
		maxRes = c.Primaries
	}
	return sim.Config{
		Iterations:      c.Iterations,
		Primaries:       c.Primaries,
		MaxResonances:   maxRes,
		Workers:         workers,
		AverageMomentum: c.AverageMomentum,
		Seed:            c.Seed,
		Binning:         c.Binning,
		KeepStreams:     c.KeepStreams,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Particles = append([]ParticleConfig(nil), c.Particles...)
	out.Decays = append([]DecayConfig(nil), c.Decays...)
	return &out
}
