package dynamo

import "math"

// State is a recorded state vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Solution is one trajectory sampled at its checkpoint times. Times and
// States have equal length; States[i] is the state at Times[i].
type Solution struct {
	Times  []float64
	States []State
}

// Component extracts the time series of one state component across all
// checkpoints.
func (s *Solution) Component(i int) []float64 {
	out := make([]float64, len(s.States))
	for k, st := range s.States {
		out[k] = st[i]
	}
	return out
}

// Batch is an ensemble of solutions sharing a checkpoint grid. Trajectories
// is index-stable: slot i always holds the i-th generated initial
// condition/noise pair regardless of worker completion order.
type Batch struct {
	Trajectories []*Solution
}

// At returns state component c at checkpoint k of trajectory i.
func (b *Batch) At(c, k, i int) float64 {
	return b.Trajectories[i].States[k][c]
}

// ComponentAcross gathers component c at checkpoint k over all trajectories.
func (b *Batch) ComponentAcross(c, k int) []float64 {
	out := make([]float64, len(b.Trajectories))
	for i, tr := range b.Trajectories {
		out[i] = tr.States[k][c]
	}
	return out
}

func (b *Batch) Len() int { return len(b.Trajectories) }
