package validate

import "github.com/san-kum/pairmass/internal/particle"

// Species describes one registered type and its counts.
type Species struct {
	Name        string
	Charge      int
	Resonance   bool
	Probability float64
	// Generated counts the type among primaries, Final among all particles
	// of the event, decayed resonances included.
	Generated Measurement
	Final     Measurement
}

// Entry is the entry count of a named histogram.
type Entry struct {
	Name    string
	Entries int64
}

// PairEntries holds the entries of the invariant mass channels.
type PairEntries struct {
	All                int64
	Discordant         int64
	Concordant         int64
	DiscordantPionKaon int64
	ConcordantPionKaon int64
	Daughters          int64
}

type Input struct {
	Events    int64
	Primaries int
	Species   []Species
	// Generation lists the histograms filled once per primary.
	Generation []Entry
	Pairs      PairEntries
}

// Expected holds the derived expectations of a run.
type Expected struct {
	ChargedPerEvent    Measurement
	Positive           Measurement
	Negative           Measurement
	Total              Measurement
	Discordant         Measurement
	Concordant         Measurement
	DiscordantPionKaon Measurement
	ConcordantPionKaon Measurement
	Particles          Measurement
	Daughters          Measurement
	HasPionKaon        bool
}

// Derive computes the expected pair counts from the final species counts.
func Derive(in Input) Expected {
	n := float64(in.Events)
	if n == 0 {
		return Expected{}
	}
	trials := n * float64(in.Primaries)

	var (
		res, neutral, pos, neg, all []Measurement
		byName                      = make(map[string]Measurement, len(in.Species))
	)
	for _, s := range in.Species {
		perEvent := s.Final.Scale(1 / n)
		byName[s.Name] = perEvent
		all = append(all, s.Final)
		switch {
		case s.Resonance:
			res = append(res, s.Final)
		case s.Charge == 0:
			neutral = append(neutral, s.Final)
		case s.Charge > 0:
			pos = append(pos, perEvent)
		default:
			neg = append(neg, perEvent)
		}
	}

	added, removed := Sum(res...), Sum(neutral...)
	charged := Measurement{
		Value: (trials + added.Value - removed.Value) / n,
		Err:   (added.Err + removed.Err) / n,
	}
	p, m := Sum(pos...), Sum(neg...)
	particles := Sum(all...)

	out := Expected{
		ChargedPerEvent: charged,
		Positive:        p,
		Negative:        m,
		Total:           Pairs(charged).Scale(n),
		Discordant:      Product(p, m).Scale(n),
		Concordant:      ConcordantPairs(p, m).Scale(n),
		Particles:       particles,
		Daughters: Measurement{
			Value: (particles.Value - trials) / 2,
			Err:   particles.Err / 2,
		},
	}

	piP, ok1 := byName[particle.PionPlus]
	piM, ok2 := byName[particle.PionMinus]
	kP, ok3 := byName[particle.KaonPlus]
	kM, ok4 := byName[particle.KaonMinus]
	if ok1 && ok2 && ok3 && ok4 {
		out.HasPionKaon = true
		// π and K are distinct species, so each pair is counted once and no 1/2 applies.
		out.DiscordantPionKaon = Cross(piP, kM, piM, kP).Scale(n)
		out.ConcordantPionKaon = Cross(piP, kP, piM, kM).Scale(n)
	}
	return out
}

// Run performs every check with tolerance tol and returns them all.
func Run(in Input, tol float64) []Check {
	trials := float64(in.Events) * float64(in.Primaries)
	checks := make([]Check, 0, len(in.Generation)+6+len(in.Species))

	for _, e := range in.Generation {
		checks = append(checks, CheckCount(e.Name+" entries", float64(e.Entries), trials, 0, tol))
	}

	exp := Derive(in)
	pairs := []struct {
		name     string
		observed int64
		expected Measurement
		skip     bool
	}{
		{"total pairs", in.Pairs.All, exp.Total, false},
		{"discordant pairs", in.Pairs.Discordant, exp.Discordant, false},
		{"concordant pairs", in.Pairs.Concordant, exp.Concordant, false},
		{"discordant π/K pairs", in.Pairs.DiscordantPionKaon, exp.DiscordantPionKaon, !exp.HasPionKaon},
		{"concordant π/K pairs", in.Pairs.ConcordantPionKaon, exp.ConcordantPionKaon, !exp.HasPionKaon},
		{"decay daughter pairs", in.Pairs.Daughters, exp.Daughters, false},
	}
	for _, p := range pairs {
		if p.skip {
			continue
		}
		checks = append(checks, CheckCount(p.name, float64(p.observed), p.expected.Value, p.expected.Err, tol))
	}

	for _, s := range in.Species {
		checks = append(checks, CheckCount(s.Name+" proportion", s.Generated.Value, trials*s.Probability, s.Generated.Err, tol))
	}
	return checks
}
