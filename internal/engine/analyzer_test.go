package engine

import (
	"math"
	"testing"
)

// sine generates n mono samples of a pure tone.
func sine(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(outputRate))
	}
	return out
}

func TestAnalyzerBandCount(t *testing.T) {
	a := NewAnalyzer(int(outputRate))

	bands := a.Bands(sine(440, fftSize))
	if len(bands) != numBands {
		t.Errorf("Expected %d bands, got %d", numBands, len(bands))
	}
}

func TestAnalyzerSilenceIsQuiet(t *testing.T) {
	a := NewAnalyzer(int(outputRate))

	bands := a.Bands(make([]float64, fftSize))
	for i, b := range bands {
		if b > 8 {
			t.Errorf("Band %d: expected near-zero for silence, got %d", i, b)
		}
	}
}

func TestAnalyzerToneConcentratesEnergy(t *testing.T) {
	a := NewAnalyzer(int(outputRate))

	// Run twice so temporal smoothing settles
	a.Bands(sine(440, fftSize))
	bands := a.Bands(sine(440, fftSize))

	peak := 0
	for i, b := range bands {
		if b > bands[peak] {
			peak = i
		}
	}
	if bands[peak] < 100 {
		t.Errorf("Expected a strong peak for a pure tone, max was %d", bands[peak])
	}

	// 440Hz sits in the lower half of the log-spaced 20Hz-20kHz range
	if peak >= numBands/2 {
		t.Errorf("Expected peak in lower bands for 440Hz, got band %d", peak)
	}
}

func TestAnalyzerShortInputIsPadded(t *testing.T) {
	a := NewAnalyzer(int(outputRate))

	bands := a.Bands(sine(440, 100))
	if len(bands) != numBands {
		t.Errorf("Expected %d bands for short input, got %d", numBands, len(bands))
	}
}

func TestAnalyzerReset(t *testing.T) {
	a := NewAnalyzer(int(outputRate))
	a.Bands(sine(440, fftSize))
	a.Reset()

	bands := a.Bands(make([]float64, fftSize))
	for i, b := range bands {
		if b > 8 {
			t.Errorf("Band %d: expected silence after reset, got %d", i, b)
		}
	}
}
