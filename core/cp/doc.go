// Package cp is a small finite-domain constraint solver with a model
// builder API in the style of the OR-tools cpmodel package.
//
// Models are built from bounded integer and boolean variables, linear
// constraints that may be conditioned on enforcement literals, exactly-one
// and clause constraints, and an optional linear objective to minimize.
// Solve runs a portfolio of depth-first searches with bounds propagation;
// workers share the incumbent and the first worker that exhausts its tree
// proves the result.
package cp
