package particle

import "fmt"

// Names of the species in the standard catalog.
const (
	PionPlus    = "π+"
	PionMinus   = "π-"
	KaonPlus    = "K+"
	KaonMinus   = "K-"
	ProtonPlus  = "p+"
	ProtonMinus = "p-"
	KaonStar    = "K*"
)

// Type describes one particle species. A zero Width means the species is
// stable.
type Type struct {
	Name   string  `json:"name" yaml:"name"`
	Mass   float64 `json:"mass" yaml:"mass"`
	Charge int     `json:"charge" yaml:"charge"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
}

func (t Type) IsResonance() bool { return t.Width > 0 }

func (t Type) IsCharged() bool { return t.Charge != 0 }

func (t Type) String() string {
	if t.IsResonance() {
		return fmt.Sprintf("%s (mass %.5f GeV, charge %+d, width %.5f GeV)", t.Name, t.Mass, t.Charge, t.Width)
	}
	return fmt.Sprintf("%s (mass %.5f GeV, charge %+d)", t.Name, t.Mass, t.Charge)
}

func (t Type) validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidType)
	}
	if t.Mass < 0 {
		return fmt.Errorf("%w: %s has negative mass %g", ErrInvalidType, t.Name, t.Mass)
	}
	if t.Width < 0 {
		return fmt.Errorf("%w: %s has negative width %g", ErrInvalidType, t.Name, t.Width)
	}
	if t.Charge < -1 || t.Charge > 1 {
		return fmt.Errorf("%w: %s has charge %d", ErrInvalidType, t.Name, t.Charge)
	}
	return nil
}
