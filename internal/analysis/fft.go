// Package analysis extracts frequency content from recorded trajectories,
// mainly to inspect the oscillation a trained drive imposes on the state.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

// FFT computes the discrete Fourier transform of data, whose length must be
// a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the magnitude of the positive-frequency half of the
// transform, zero-padding the input up to a power of two.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency locates the strongest non-DC spectral peak of one state
// component and converts its bin to a frequency using the recorded span.
func DominantFrequency(sol *dynamo.Solution, component int) (freq, power float64, err error) {
	if len(sol.Times) < 2 {
		return 0, 0, fmt.Errorf("analysis: need at least 2 samples, have %d", len(sol.Times))
	}

	ps := PowerSpectrum(sol.Component(component))
	span := sol.Times[len(sol.Times)-1] - sol.Times[0]
	if span <= 0 {
		return 0, 0, fmt.Errorf("analysis: trajectory spans no time")
	}

	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > power {
			power = ps[i]
			maxIdx = i
		}
	}
	return float64(maxIdx) / span, power, nil
}
