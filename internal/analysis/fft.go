package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first len(data)/2 frequency
// bins. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantPeriod is the period of the strongest non-constant frequency in
// samples taken every dt seconds. It returns 0 when there is no signal.
func DominantPeriod(samples []float64, dt float64) float64 {
	n := len(samples)
	if n < 4 || dt <= 0 {
		return 0
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range samples {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[best] || best == 0 {
			best = k
		}
	}
	if best == 0 || ps[best] == 0 {
		return 0
	}

	// parabolic interpolation between neighbouring bins
	k := float64(best)
	if best > 1 && best < len(ps)-1 {
		a, b, c := ps[best-1], ps[best], ps[best+1]
		if d := a - 2*b + c; d != 0 {
			k += 0.5 * (a - c) / d
		}
	}
	return float64(n) * dt / k
}
