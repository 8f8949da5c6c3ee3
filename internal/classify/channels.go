package classify

import (
	"fmt"

	"github.com/san-kum/pairmass/internal/hist"
)

// Channels holds the invariant mass histograms filled by the classifier.
type Channels struct {
	All                *hist.Histogram
	Discordant         *hist.Histogram
	Concordant         *hist.Histogram
	DiscordantPionKaon *hist.Histogram
	ConcordantPionKaon *hist.Histogram
	Daughters          *hist.Histogram
}

func NewChannels(bins int, low, high float64) (*Channels, error) {
	var firstErr error
	mk := func(name, title string) *hist.Histogram {
		h, err := hist.New(name, title, bins, low, high)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("channel %s: %w", name, err)
		}
		return h
	}

	ch := &Channels{
		All:                mk("mass_all", "Invariant Mass, all pairs"),
		Discordant:         mk("mass_discordant", "Invariant Mass, opposite charge"),
		Concordant:         mk("mass_concordant", "Invariant Mass, same charge"),
		DiscordantPionKaon: mk("mass_discordant_pik", "Invariant Mass, π+K- and π-K+"),
		ConcordantPionKaon: mk("mass_concordant_pik", "Invariant Mass, π+K+ and π-K-"),
		Daughters:          mk("mass_daughters", "Invariant Mass, decay daughters"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return ch, nil
}

// List returns the histograms in a fixed order.
func (c *Channels) List() []*hist.Histogram {
	return []*hist.Histogram{c.All, c.Discordant, c.Concordant, c.DiscordantPionKaon, c.ConcordantPionKaon, c.Daughters}
}

// Merge adds the partial accumulators of o into c.
func (c *Channels) Merge(o *Channels) error {
	dst, src := c.List(), o.List()
	for i := range dst {
		if err := dst[i].Merge(src[i]); err != nil {
			return err
		}
	}
	return nil
}

// ChannelsFrom rebuilds a channel set from histograms keyed by name.
func ChannelsFrom(byName map[string]*hist.Histogram) (*Channels, error) {
	ch := &Channels{}
	for name, dst := range map[string]**hist.Histogram{
		"mass_all":            &ch.All,
		"mass_discordant":     &ch.Discordant,
		"mass_concordant":     &ch.Concordant,
		"mass_discordant_pik": &ch.DiscordantPionKaon,
		"mass_concordant_pik": &ch.ConcordantPionKaon,
		"mass_daughters":      &ch.Daughters,
	} {
		h, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("channel %s missing", name)
		}
		*dst = h
	}
	return ch, nil
}
