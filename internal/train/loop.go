// Package train minimizes a scalar trajectory loss over the flat parameter
// vector with Adam, reporting progress through an observer callback.
package train

import (
	"context"
	"fmt"

	"github.com/san-kum/hybridsim/internal/optim"
	"github.com/san-kum/hybridsim/internal/params"
)

// Loss evaluates the scalar objective and its gradient at p. Implementations
// run one or many integrations internally; a failure must surface rather
// than return a substitute value, since substituting would bias the descent.
type Loss interface {
	Name() string
	Eval(ctx context.Context, p []float64) (float64, []float64, error)
}

// Observer receives progress after each update. Returning true halts the
// loop early. Observers are fire-and-forget: a panic inside one is swallowed
// so reporting problems never abort training.
type Observer func(iteration int, p *params.Vector, loss float64) bool

// Config bounds the run.
type Config struct {
	Iterations   int
	LearningRate float64
}

// History records the per-iteration loss trace.
type History struct {
	Losses     []float64
	Iterations int
	Halted     bool
}

// Run iterates Adam updates of p until the iteration budget is exhausted or
// the observer halts. Any unrecovered loss failure is fatal to the run and
// carries the failing iteration; there is no automatic retry.
func Run(ctx context.Context, loss Loss, p *params.Vector, cfg Config, obs Observer) (*History, error) {
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("train: iteration budget must be positive, got %d", cfg.Iterations)
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("train: learning rate must be positive, got %g", cfg.LearningRate)
	}

	adam := optim.NewAdam(cfg.LearningRate)
	hist := &History{Losses: make([]float64, 0, cfg.Iterations)}

	for it := 0; it < cfg.Iterations; it++ {
		select {
		case <-ctx.Done():
			return hist, ctx.Err()
		default:
		}

		val, grad, err := loss.Eval(ctx, p.Data)
		if err != nil {
			return hist, fmt.Errorf("train: iteration %d: %w", it, err)
		}

		if err := adam.Step(p.Data, grad); err != nil {
			return hist, fmt.Errorf("train: iteration %d: %w", it, err)
		}

		hist.Losses = append(hist.Losses, val)
		hist.Iterations = it + 1

		if obs != nil && notify(obs, it, p, val) {
			hist.Halted = true
			return hist, nil
		}
	}
	return hist, nil
}

func notify(obs Observer, it int, p *params.Vector, loss float64) (halt bool) {
	defer func() {
		if recover() != nil {
			halt = false
		}
	}()
	return obs(it, p.Clone(), loss)
}
