package systems

import (
	"math"
	"math/rand"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/events"
	"github.com/san-kum/hybridsim/internal/nn"
	"github.com/san-kum/hybridsim/internal/params"
	"github.com/san-kum/hybridsim/internal/solver"
)

// BlockPhysical names the physical-scalar block of a parameter vector.
const BlockPhysical = "physical"

// Qubit is a stochastic two-level system. The state packs the two complex
// amplitudes psi = a|0> + b|1> as [a_r, a_i, b_r, b_i]. The Hamiltonian is
// (Detuning/2) sigma_z + drive(t) sigma_x, where the drive comes from a
// saturating neural controller reading the state. The excited amplitude
// decays at a rate held in the physical parameter block, with matching
// multiplicative noise on its components.
//
// The norm |a|^2 + |b|^2 is conserved by the continuum dynamics but not by
// its discretization, so integrations attach a renormalization event after
// every step.
type Qubit struct {
	Net      nn.FeedForward
	Detuning float64
	Horizon  float64
}

// NewQubit returns the control scenario: a 4-8-1 controller saturating at
// maxAmplitude, fixed detuning, unit horizon.
func NewQubit(detuning, maxAmplitude float64) *Qubit {
	return &Qubit{
		Net:      nn.FeedForward{In: 4, Hidden: 8, Out: 1, MaxAmplitude: maxAmplitude},
		Detuning: detuning,
		Horizon:  1,
	}
}

func (q *Qubit) StateDim() int { return 4 }

// Layout partitions the parameter vector into controller weights and the
// single physical scalar (the decay rate).
func (q *Qubit) Layout() params.Layout {
	return params.Layout{
		{Name: BlockWeights, Size: q.Net.NumParams()},
		{Name: BlockPhysical, Size: 1},
	}
}

// Checkpoints returns n evenly spaced record times over (0, Horizon],
// excluding t=0 where every trajectory is still at its sampled start.
func (q *Qubit) Checkpoints(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = q.Horizon * float64(i+1) / float64(n)
	}
	return out
}

// RandomState samples a pure state uniformly on the Bloch sphere.
func (q *Qubit) RandomState(rnd *rand.Rand) []float64 {
	cosTheta := 2*rnd.Float64() - 1
	theta := math.Acos(cosTheta)
	phi := 2 * math.Pi * rnd.Float64()

	return []float64{
		math.Cos(theta / 2),
		0,
		math.Sin(theta/2) * math.Cos(phi),
		math.Sin(theta/2) * math.Sin(phi),
	}
}

// Fidelity is the excited-state population share |b|^2 / (|a|^2 + |b|^2):
// 1 means the target state |1> is reached, 0 means fully decayed.
func Fidelity(x dynamo.State) float64 {
	ground := x[0]*x[0] + x[1]*x[1]
	excited := x[2]*x[2] + x[3]*x[3]
	total := ground + excited
	if total == 0 {
		return 0
	}
	return excited / total
}

// DecayedRatio is 1 - Fidelity over duals, the per-checkpoint loss term.
func DecayedRatio(x ad.Vector) ad.Dual {
	ground := x[0].Square().Add(x[1].Square())
	excited := x[2].Square().Add(x[3].Square())
	return ground.Div(ground.Add(excited))
}

// Problem assembles the stochastic control problem. The drive is evaluated
// from the state by the controller whose weights live in the parameter
// vector; the decay rate is read from the physical block so the diffusion
// and the damping always use the same constant.
func (q *Qubit) Problem(checkpoints []float64) (solver.Problem, error) {
	layout := q.Layout()
	wStart, wEnd, err := layout.Range(BlockWeights)
	if err != nil {
		return solver.Problem{}, err
	}
	physStart, _, err := layout.Range(BlockPhysical)
	if err != nil {
		return solver.Problem{}, err
	}

	half := q.Detuning / 2

	drift := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		drive, err := q.Net.EvalScalar(p[wStart:wEnd], x)
		if err != nil {
			return nil, err
		}
		gamma := p[physStart]

		ar, ai, br, bi := x[0], x[1], x[2], x[3]

		// dpsi/dt = -i H psi with H = half*sigma_z + drive*sigma_x,
		// plus amplitude damping -gamma/2 on the excited component.
		return ad.Vector{
			ai.Scale(half).Add(drive.Mul(bi)),
			ar.Scale(-half).Sub(drive.Mul(br)),
			bi.Scale(-half).Add(drive.Mul(ai)).Sub(gamma.Mul(br).Scale(0.5)),
			br.Scale(half).Sub(drive.Mul(ar)).Sub(gamma.Mul(bi).Scale(0.5)),
		}, nil
	}

	diffusion := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		root := ad.Sqrt(p[physStart])
		zero := ad.Const(0)
		return ad.Vector{zero, zero, root.Mul(x[2]), root.Mul(x[3])}, nil
	}

	return solver.Problem{
		Drift:       drift,
		Diffusion:   diffusion,
		T0:          0,
		T1:          q.Horizon,
		Condition:   &events.Condition{When: events.Always, Apply: events.Renormalize()},
		Checkpoints: checkpoints,
	}, nil
}

// NewParams builds a parameter vector with near-zero controller weights and
// the given decay rate in the physical block.
func (q *Qubit) NewParams(decay float64, rnd *rand.Rand) (*params.Vector, error) {
	v := params.New(q.Layout())
	if err := v.InitNormal(BlockWeights, 0.1, rnd); err != nil {
		return nil, err
	}
	if err := v.Set(BlockPhysical, []float64{decay}); err != nil {
		return nil, err
	}
	return v, nil
}
