// Package dynamo provides core primitives for hybrid dynamical systems:
// continuous ODE/SDE flow interrupted by discrete events.
//
// The package defines the recorded data model and the error taxonomy shared
// by the solver, ensemble, and training layers:
//
//   - [State]: plain state vector as recorded at checkpoints
//   - [Solution]: one trajectory sampled at its checkpoint times
//   - [Batch]: an ensemble of solutions, index-stable by trajectory
//   - [TrajError]: an error with trajectory/step/time identity attached
//
// Differentiable evaluation happens in package ad; dynamo deliberately holds
// only plain floats so recorded solutions are cheap to keep around.
package dynamo
