package systems

import (
	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/events"
	"github.com/san-kum/hybridsim/internal/nn"
	"github.com/san-kum/hybridsim/internal/params"
	"github.com/san-kum/hybridsim/internal/solver"
)

// BlockWeights names the network-weight block of a parameter vector.
const BlockWeights = "weights"

// Dosing is a two-compartment pharmacometric model: both compartments decay
// exponentially and a dose event adds a fixed amount to each at preset
// times. The reference dynamics are du = -u; the trainable model adds a
// neural correction term on top.
type Dosing struct {
	Net        nn.FeedForward
	DoseTimes  []float64
	DoseAmount float64
	Horizon    float64
}

// NewDosing returns the scenario used throughout: doses of +1 to both
// compartments at t in {1, 2, 4, 8} over a [0, 10.5] horizon, with a
// 2-10-2 linear-output correction network.
func NewDosing() *Dosing {
	return &Dosing{
		Net:        nn.FeedForward{In: 2, Hidden: 10, Out: 2},
		DoseTimes:  []float64{1, 2, 4, 8},
		DoseAmount: 1,
		Horizon:    10.5,
	}
}

func (d *Dosing) StateDim() int { return 2 }

// InitialState is the fixed [2, 0] starting point of both the reference and
// the model trajectory.
func (d *Dosing) InitialState() []float64 { return []float64{2, 0} }

// Layout describes the flat parameter vector: network weights only.
func (d *Dosing) Layout() params.Layout {
	return params.Layout{{Name: BlockWeights, Size: d.Net.NumParams()}}
}

// Checkpoints returns n evenly spaced record times spanning the horizon.
func (d *Dosing) Checkpoints(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Horizon * float64(i) / float64(n-1)
	}
	return out
}

func (d *Dosing) doses() (*events.PresetTimes, error) {
	return events.NewPresetTimes(d.DoseTimes, events.Impulse([]int{0, 1}, d.DoseAmount))
}

// ReferenceProblem is the known, non-trainable dynamics du = -u with dose
// impulses: the trajectory the model is trained to match.
func (d *Dosing) ReferenceProblem(checkpoints []float64) (solver.Problem, error) {
	doses, err := d.doses()
	if err != nil {
		return solver.Problem{}, err
	}
	return solver.Problem{
		Drift: func(x, p ad.Vector, t float64) (ad.Vector, error) {
			return ad.Vector{x[0].Neg(), x[1].Neg()}, nil
		},
		T0:          0,
		T1:          d.Horizon,
		Preset:      doses,
		Checkpoints: checkpoints,
	}, nil
}

// ModelProblem is the trainable dynamics du = net(u) with the same dose
// impulses: the network learns the vector field the reference follows
// between doses. Weights start near zero, so the untrained model drifts
// nowhere and the initial loss is large.
func (d *Dosing) ModelProblem(checkpoints []float64) (solver.Problem, error) {
	doses, err := d.doses()
	if err != nil {
		return solver.Problem{}, err
	}

	start, end, err := d.Layout().Range(BlockWeights)
	if err != nil {
		return solver.Problem{}, err
	}

	drift := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		return d.Net.Eval(p[start:end], x)
	}

	return solver.Problem{
		Drift:       drift,
		T0:          0,
		T1:          d.Horizon,
		Preset:      doses,
		Checkpoints: checkpoints,
	}, nil
}
