package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/stat"
)

type Spectrum struct {
	SampleRate float64
	Freqs      []float64
	Power      []float64 // magnitude per bin, bin 0 is DC
}

// PowerSpectrum removes the mean from xs, optionally applies a Hann
// window, and returns the magnitudes of the first half of the DFT.
func PowerSpectrum(xs []float64, sampleRate float64, hann bool) Spectrum {
	n := len(xs)
	s := Spectrum{SampleRate: sampleRate}
	if n < 2 {
		return s
	}

	mean := stat.Mean(xs, nil)
	buf := make([]float64, n)
	for i, x := range xs {
		buf[i] = x - mean
	}
	if hann {
		w := window.Hann(n)
		for i := range buf {
			buf[i] *= w[i]
		}
	}

	out := fft.FFTReal(buf)
	half := n / 2
	s.Freqs = make([]float64, half)
	s.Power = make([]float64, half)
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) * sampleRate / float64(n)
		s.Power[k] = cmplx.Abs(out[k])
	}
	return s
}

// Dominant returns the strongest non-DC bin.
func (s Spectrum) Dominant() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freqs[k], s.Power[k]
		}
	}
	return freq, power
}

func DominantFrequency(xs []float64, sampleRate float64) float64 {
	f, _ := PowerSpectrum(xs, sampleRate, true).Dominant()
	return f
}

// Differentiate returns forward differences scaled by rate, one shorter
// than xs.
func Differentiate(xs []float64, rate float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := range out {
		out[i] = (xs[i+1] - xs[i]) * rate
	}
	return out
}
