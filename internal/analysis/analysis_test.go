package analysis

import (
	"math"
	"testing"
)

func sine(freq, rate float64, n int, offset float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = offset + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return xs
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name       string
		freq, rate float64
		n          int
	}{
		{"5Hz", 5, 100, 200},
		{"slow gait", 0.2, 10, 500},
		{"odd length", 3, 60, 181},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DominantFrequency(sine(tt.freq, tt.rate, tt.n, 4), tt.rate)
			binWidth := tt.rate / float64(tt.n)
			if math.Abs(got-tt.freq) > binWidth {
				t.Errorf("dominant = %g, want %g ± %g", got, tt.freq, binWidth)
			}
		})
	}
}

func TestPowerSpectrumShape(t *testing.T) {
	s := PowerSpectrum(sine(5, 100, 200, 10), 100, false)
	if len(s.Power) != 100 || len(s.Freqs) != 100 {
		t.Fatalf("bins = %d/%d", len(s.Power), len(s.Freqs))
	}
	if s.Freqs[10] != 5 {
		t.Errorf("bin 10 at %g Hz", s.Freqs[10])
	}
	if s.Power[0] > 1e-9 {
		t.Errorf("mean not removed: DC = %g", s.Power[0])
	}
	if got := PowerSpectrum([]float64{1}, 10, true); len(got.Power) != 0 {
		t.Error("single sample produced bins")
	}
}

func TestDifferentiate(t *testing.T) {
	got := Differentiate([]float64{0, 1, 3, 6}, 2)
	want := []float64{2, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
	if Differentiate([]float64{1}, 1) != nil {
		t.Error("short input")
	}
}
