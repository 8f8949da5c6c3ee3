package validate_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/validate"
)

func poisson(n float64) validate.Measurement {
	return validate.Measurement{Value: n, Err: math.Sqrt(n)}
}

// idealInput describes 1000 events of 100 primaries whose species counts
// match their probabilities exactly. Each of the 1000 K* decays half into
// π+K- and half into π-K+.
func idealInput() validate.Input {
	const events, primaries = 1000, 100
	trials := float64(events * primaries)

	types := particle.StandardTypes()
	probs := []float64{0.4, 0.4, 0.05, 0.05, 0.045, 0.045, 0.01}
	extra := map[string]float64{
		particle.PionPlus:  500,
		particle.KaonMinus: 500,
		particle.PionMinus: 500,
		particle.KaonPlus:  500,
	}

	in := validate.Input{Events: events, Primaries: primaries}
	for i, t := range types {
		gen := trials * probs[i]
		in.Species = append(in.Species, validate.Species{
			Name:        t.Name,
			Charge:      t.Charge,
			Resonance:   t.IsResonance(),
			Probability: probs[i],
			Generated:   poisson(gen),
			Final:       poisson(gen + extra[t.Name]),
		})
	}
	for _, name := range []string{"species", "azimuth", "polar", "momentum", "transverse", "energy"} {
		in.Generation = append(in.Generation, validate.Entry{Name: name, Entries: events * primaries})
	}

	exp := validate.Derive(in)
	in.Pairs = validate.PairEntries{
		All:                int64(exp.Total.Value),
		Discordant:         int64(exp.Discordant.Value),
		Concordant:         int64(exp.Concordant.Value),
		DiscordantPionKaon: int64(exp.DiscordantPionKaon.Value),
		ConcordantPionKaon: int64(exp.ConcordantPionKaon.Value),
		Daughters:          1000,
	}
	return in
}

func find(checks []validate.Check, name string) validate.Check {
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	Fail("no check named " + name)
	return validate.Check{}
}

var _ = Describe("Measurement arithmetic", func() {
	It("adds errors of a sum linearly", func() {
		m := validate.Sum(validate.Measurement{Value: 1, Err: 0.1}, validate.Measurement{Value: 2, Err: 0.2})
		Expect(m.Value).To(BeNumerically("~", 3, 1e-12))
		Expect(m.Err).To(BeNumerically("~", 0.3, 1e-12))
	})

	It("adds relative errors of a product", func() {
		m := validate.Product(validate.Measurement{Value: 2, Err: 0.2}, validate.Measurement{Value: 3, Err: 0.3})
		Expect(m.Value).To(BeNumerically("~", 6, 1e-12))
		Expect(m.Err).To(BeNumerically("~", 1.2, 1e-12))
	})

	It("doubles the relative error of a pair count", func() {
		m := validate.Pairs(validate.Measurement{Value: 10, Err: 1})
		Expect(m.Value).To(BeNumerically("~", 45, 1e-12))
		Expect(m.Err).To(BeNumerically("~", 9, 1e-12))
	})

	It("propagates concordant pair errors from both charges", func() {
		m := validate.ConcordantPairs(validate.Measurement{Value: 4, Err: 0.4}, validate.Measurement{Value: 6, Err: 0.6})
		Expect(m.Value).To(BeNumerically("~", 21, 1e-12))
		Expect(m.Err).To(BeNumerically("~", 8.4, 1e-12))
	})

	It("sums two products for cross terms", func() {
		a := validate.Measurement{Value: 2, Err: 0.2}
		b := validate.Measurement{Value: 5, Err: 0.5}
		m := validate.Cross(a, b, b, a)
		Expect(m.Value).To(BeNumerically("~", 20, 1e-12))
		Expect(m.Err).To(BeNumerically("~", 4, 1e-12))
	})

	It("treats a zero value as having no relative error", func() {
		Expect(validate.Measurement{Err: 1}.Rel()).To(BeZero())
	})

	It("scales errors by the absolute factor", func() {
		m := validate.Measurement{Value: 2, Err: 0.5}.Scale(-2)
		Expect(m.Value).To(Equal(-4.0))
		Expect(m.Err).To(Equal(1.0))
	})
})

var _ = Describe("CheckCount", func() {
	DescribeTable("tolerance boundary",
		func(observed, expected, err float64, pass bool) {
			Expect(validate.CheckCount("c", observed, expected, err, 3).Passed).To(Equal(pass))
		},
		Entry("exact with zero error", 10.0, 10.0, 0.0, true),
		Entry("off by one with zero error", 11.0, 10.0, 0.0, false),
		Entry("on the boundary", 13.0, 10.0, 1.0, true),
		Entry("beyond the boundary", 13.01, 10.0, 1.0, false),
		Entry("below, inside", 8.0, 10.0, 1.0, true),
	)

	It("reports the deviation in units of the error", func() {
		c := validate.CheckCount("c", 12, 10, 0.5, 3)
		Expect(c.Deviation()).To(BeNumerically("~", 4, 1e-12))
		Expect(c.String()).To(HavePrefix("FAIL c:"))
		Expect(validate.CheckCount("z", 1, 0, 0, 3).Deviation()).To(BeNumerically(">", 1e300))
	})
})

var _ = Describe("Run", func() {
	var in validate.Input

	BeforeEach(func() {
		in = idealInput()
	})

	It("passes every check on an ideal run", func() {
		checks := validate.Run(in, validate.DefaultTolerance)
		Expect(checks).To(HaveLen(6 + 6 + 7))
		Expect(validate.Failed(checks)).To(BeEmpty())
	})

	It("derives charged particles and daughters from the final counts", func() {
		exp := validate.Derive(in)
		Expect(exp.ChargedPerEvent.Value).To(BeNumerically("~", 101, 1e-9))
		Expect(exp.Total.Value).To(BeNumerically("~", 101*100/2*1000, 1e-3))
		Expect(exp.Daughters.Value).To(BeNumerically("~", 1000, 1e-9))
		Expect(exp.Particles.Value).To(BeNumerically("~", 102000, 1e-9))
	})

	It("counts each π/K pair once", func() {
		// 40.5 pions and 5.5 kaons of each charge per event
		exp := validate.Derive(in)
		Expect(exp.HasPionKaon).To(BeTrue())
		Expect(exp.DiscordantPionKaon.Value).To(BeNumerically("~", 2*40.5*5.5*1000, 1e-6))
		Expect(exp.ConcordantPionKaon.Value).To(BeNumerically("~", 2*40.5*5.5*1000, 1e-6))
	})

	It("requires exact generation entries", func() {
		in.Generation[3].Entries--
		failed := validate.Failed(validate.Run(in, validate.DefaultTolerance))
		Expect(failed).To(HaveLen(1))
		Expect(failed[0].Name).To(Equal("momentum entries"))
	})

	It("reports a species proportion outside the tolerance", func() {
		sigma := in.Species[0].Generated.Err
		in.Species[0].Generated.Value += 5 * sigma

		checks := validate.Run(in, validate.DefaultTolerance)
		Expect(find(checks, particle.PionPlus+" proportion").Passed).To(BeFalse())
		Expect(find(checks, particle.PionMinus+" proportion").Passed).To(BeTrue())

		// a wider tolerance accepts it
		Expect(find(validate.Run(in, 6), particle.PionPlus+" proportion").Passed).To(BeTrue())
	})

	It("keeps going after a failure", func() {
		in.Pairs.All = 0
		in.Pairs.Daughters = 5000
		checks := validate.Run(in, validate.DefaultTolerance)
		Expect(checks).To(HaveLen(19))
		Expect(validate.Failed(checks)).To(HaveLen(2))
	})

	It("skips the π/K checks without pions and kaons", func() {
		in.Species = in.Species[4:]
		checks := validate.Run(in, validate.DefaultTolerance)
		for _, c := range checks {
			Expect(c.Name).NotTo(ContainSubstring("π/K"))
		}
	})

	It("derives nothing from an empty run", func() {
		Expect(validate.Derive(validate.Input{})).To(Equal(validate.Expected{}))
	})
})
