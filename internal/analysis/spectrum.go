// Package analysis provides frequency-domain views of control fields.
package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum returns the one-sided amplitude spectrum of a real-valued control
// sampled at interval dt. Frequencies are in cycles per time unit.
func Spectrum(samples []float64, dt float64) (freqs, amps []float64) {
	n := len(samples)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, samples)

	freqs = make([]float64, len(coeff))
	amps = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		amps[i] = cmplx.Abs(c)
	}
	return freqs, amps
}

// Dominant returns the frequency with the largest amplitude, ignoring the DC
// component.
func Dominant(freqs, amps []float64) float64 {
	best := 0.0
	bestAmp := -1.0
	for i := 1; i < len(amps) && i < len(freqs); i++ {
		if amps[i] > bestAmp {
			bestAmp = amps[i]
			best = freqs[i]
		}
	}
	return best
}
