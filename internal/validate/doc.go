// Package validate compares the counts of a run with their closed-form
// expectations.
//
// Errors are propagated with simple rules: errors of a sum add linearly,
// relative errors of a product add, and the relative error of a pair count
// m(m-1)/2 is twice that of m. These are not quadrature sums.
//
// Every check is independent. A failing check is data, not an error; Run
// always returns the full list.
package validate
