package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pairmass/internal/analysis"
	"github.com/san-kum/pairmass/internal/sim"
	"github.com/san-kum/pairmass/internal/validate"
)

var (
	nameCol   = lipgloss.NewStyle().Width(26)
	numberCol = lipgloss.NewStyle().Width(16).Align(lipgloss.Right)
)

// RenderChecks lists every check with its verdict and a summary line.
func RenderChecks(checks []validate.Check) string {
	var b strings.Builder
	b.WriteString(Title.Render("validation") + "\n")
	b.WriteString(MetricLabel.Render(
		nameCol.Render("check")+numberCol.Render("observed")+numberCol.Render("expected")+numberCol.Render("error")+numberCol.Render("deviation")) + "\n")

	for _, c := range checks {
		status := StatusPass.Render("PASS")
		if !c.Passed {
			status = StatusFail.Render("FAIL")
		}
		b.WriteString(fmt.Sprintf("%s %s%s%s%s%s\n",
			status,
			nameCol.Render(c.Name),
			numberCol.Render(fmt.Sprintf("%.0f", c.Observed)),
			numberCol.Render(fmt.Sprintf("%.1f", c.Expected)),
			numberCol.Render(fmt.Sprintf("%.1f", c.ExpectedErr)),
			numberCol.Render(fmt.Sprintf("%.2fσ", c.Deviation())),
		))
	}

	failed := len(validate.Failed(checks))
	summary := StatusPass.Render(fmt.Sprintf("%d/%d passed", len(checks)-failed, len(checks)))
	if failed > 0 {
		summary = StatusFail.Render(fmt.Sprintf("%d/%d failed", failed, len(checks)))
	}
	b.WriteString(summary)
	return Panel.Render(b.String())
}

// RenderSpecies lists the generated and final counts of every type.
func RenderSpecies(species []sim.SpeciesCount, events int64, primaries int) string {
	trials := float64(events) * float64(primaries)

	var b strings.Builder
	b.WriteString(Title.Render("particle types") + "\n")
	b.WriteString(MetricLabel.Render(
		nameCol.Render("type")+numberCol.Render("generated")+numberCol.Render("fraction")+numberCol.Render("expected")+numberCol.Render("final")) + "\n")

	for _, s := range species {
		frac := 0.0
		if trials > 0 {
			frac = s.Generated.Value / trials
		}
		b.WriteString(fmt.Sprintf("%s%s%s%s%s\n",
			nameCol.Render(s.Name),
			MetricValue.Render(numberCol.Render(fmt.Sprintf("%.0f ± %.0f", s.Generated.Value, s.Generated.Err))),
			numberCol.Render(fmt.Sprintf("%.5f", frac)),
			numberCol.Render(fmt.Sprintf("%.5f", s.Probability)),
			numberCol.Render(fmt.Sprintf("%.0f", s.Final.Value)),
		))
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderFits lists fit results.
func RenderFits(fits []analysis.Fit) string {
	var b strings.Builder
	b.WriteString(Title.Render("fits") + "\n")
	for _, f := range fits {
		b.WriteString(MetricLabel.Render(nameCol.Render(f.Histogram)) + " " + f.Model + "\n")
		for _, k := range paramOrder(f) {
			b.WriteString(fmt.Sprintf("    %-10s %s ± %.3g\n", k, MetricValue.Render(fmt.Sprintf("%.5g", f.Params[k])), f.Errors[k]))
		}
		b.WriteString(fmt.Sprintf("    %-10s %.1f / %d\n", "χ²/ndf", f.Chi2, f.NDF))
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func paramOrder(f analysis.Fit) []string {
	var order []string
	for _, k := range []string{"constant", "slope", "mean", "amplitude", "sigma"} {
		if _, ok := f.Params[k]; ok {
			order = append(order, k)
		}
	}
	return order
}

// RenderSummary shows the headline numbers of a run.
func RenderSummary(res *sim.Result) string {
	rows := []struct{ label, value string }{
		{"events", fmt.Sprintf("%d", res.Events)},
		{"skipped", fmt.Sprintf("%d", res.Skipped)},
		{"pairs", fmt.Sprintf("%d", res.Pairs)},
		{"decays", fmt.Sprintf("%d", res.Decays)},
		{"elapsed", res.Elapsed.Round(time.Millisecond).String()},
	}
	var b strings.Builder
	b.WriteString(Title.Render("run") + "\n")
	for _, r := range rows {
		b.WriteString(MetricLabel.Render(nameCol.Render(r.label)) + MetricValue.Render(r.value) + "\n")
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}
