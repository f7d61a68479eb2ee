// Package systems provides the hybrid dynamical models under study.
//
// Each model builds a [solver.Problem] from its physical constants and a
// parameter layout for its learnable part:
//
//   - [Dosing]: pharmacometric two-compartment decay with impulse doses and
//     a neural correction term
//   - [Qubit]: stochastic two-level system with a bounded neural drive,
//     amplitude decay, and per-step renormalization
//
// Dynamics functions are pure: everything they need arrives through the
// state, the parameter vector, and time.
package systems
