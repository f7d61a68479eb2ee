// Package metrics accumulates diagnostic quantities over recorded
// trajectories: fidelity, drive effort, normalization drift, and ensemble
// summaries.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/systems"
)

// Metric observes checkpointed states one at a time and reduces them to a
// single value.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// ObserveSolution feeds every checkpoint of a solution to the metric.
func ObserveSolution(m Metric, sol *dynamo.Solution) {
	for k, x := range sol.States {
		m.Observe(x, sol.Times[k])
	}
}

// MeanFidelity averages the excited-population fidelity over observations.
type MeanFidelity struct {
	sum     float64
	samples int
}

func (m *MeanFidelity) Name() string { return "mean_fidelity" }

func (m *MeanFidelity) Observe(x dynamo.State, t float64) {
	m.sum += systems.Fidelity(x)
	m.samples++
}

func (m *MeanFidelity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanFidelity) Reset() { m.sum, m.samples = 0, 0 }

// NormDrift tracks the worst deviation of the state norm from unity, the
// quantity the renormalization event is meant to pin.
type NormDrift struct {
	max float64
}

func (m *NormDrift) Name() string { return "norm_drift" }

func (m *NormDrift) Observe(x dynamo.State, t float64) {
	drift := math.Abs(x.Norm() - 1)
	if drift > m.max {
		m.max = drift
	}
}

func (m *NormDrift) Value() float64 { return m.max }
func (m *NormDrift) Reset()         { m.max = 0 }

// DriveEffort averages the magnitude of a control signal reconstructed from
// recorded states by the supplied evaluator.
type DriveEffort struct {
	Eval    func(x dynamo.State) float64
	sum     float64
	samples int
}

func (m *DriveEffort) Name() string { return "drive_effort" }

func (m *DriveEffort) Observe(x dynamo.State, t float64) {
	m.sum += math.Abs(m.Eval(x))
	m.samples++
}

func (m *DriveEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *DriveEffort) Reset() { m.sum, m.samples = 0, 0 }

// EnsembleFidelity returns mean and standard deviation of the final-checkpoint
// fidelity across a batch.
func EnsembleFidelity(b *dynamo.Batch) (mean, std float64) {
	if b.Len() == 0 {
		return 0, 0
	}
	last := len(b.Trajectories[0].States) - 1
	vals := make([]float64, b.Len())
	for i, tr := range b.Trajectories {
		vals[i] = systems.Fidelity(tr.States[last])
	}
	return stat.Mean(vals, nil), math.Sqrt(stat.Variance(vals, nil))
}
