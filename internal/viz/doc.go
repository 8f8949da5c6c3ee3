// Package viz renders runs in the terminal.
//
//   - [PlotHistogram]: an asciigraph line plot of a histogram
//   - [RenderChecks], [RenderSpecies], [RenderFits]: lipgloss reports
//   - [Progress]: a Bubble Tea model that follows a running simulation
//
// # Key Bindings
//
//	q, Ctrl+C - stop the run and keep the events completed so far
package viz
