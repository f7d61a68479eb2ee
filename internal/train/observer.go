package train

import (
	"golang.org/x/time/rate"

	"github.com/san-kum/hybridsim/internal/params"
)

// Throttled wraps an observer with a rate limiter so expensive reporting
// (diagnostic ensembles, plot redraws) runs at most a few times per second
// while the loop spins freely. Skipped calls never halt the loop.
func Throttled(limiter *rate.Limiter, obs Observer) Observer {
	return func(iteration int, p *params.Vector, loss float64) bool {
		if !limiter.Allow() {
			return false
		}
		return obs(iteration, p, loss)
	}
}

// Tee fans progress out to several observers; the loop halts if any of them
// asks to.
func Tee(observers ...Observer) Observer {
	return func(iteration int, p *params.Vector, loss float64) bool {
		halt := false
		for _, obs := range observers {
			if obs(iteration, p, loss) {
				halt = true
			}
		}
		return halt
	}
}
