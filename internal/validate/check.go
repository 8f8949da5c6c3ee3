package validate

import (
	"fmt"
	"math"
)

// DefaultTolerance is the number of errors an observation may deviate.
const DefaultTolerance = 3.0

type Check struct {
	Name        string  `json:"name"`
	Passed      bool    `json:"passed"`
	Observed    float64 `json:"observed"`
	Expected    float64 `json:"expected"`
	ExpectedErr float64 `json:"expected_err"`
	Tolerance   float64 `json:"tolerance"`
}

// CheckCount fails when |observed - expected| > tol·expectedErr. With a zero
// error only an exact match passes.
func CheckCount(name string, observed, expected, expectedErr, tol float64) Check {
	return Check{
		Name:        name,
		Passed:      !(math.Abs(observed-expected) > tol*expectedErr),
		Observed:    observed,
		Expected:    expected,
		ExpectedErr: expectedErr,
		Tolerance:   tol,
	}
}

// Deviation returns |observed - expected| in units of the error.
func (c Check) Deviation() float64 {
	d := math.Abs(c.Observed - c.Expected)
	if c.ExpectedErr == 0 {
		if d == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return d / c.ExpectedErr
}

func (c Check) String() string {
	status := "PASS"
	if !c.Passed {
		status = "FAIL"
	}
	return fmt.Sprintf("%s %s: observed %.0f, expected %.1f ± %.1f (%.2fσ)",
		status, c.Name, c.Observed, c.Expected, c.ExpectedErr, c.Deviation())
}

// Failed returns the checks that did not pass.
func Failed(checks []Check) []Check {
	var out []Check
	for _, c := range checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}
