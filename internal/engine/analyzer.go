package engine

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFT size - must be power of 2. At 44100Hz this window is ~46ms.
	fftSize = 2048
	// Number of frequency bands to output
	numBands = 64
	// Smoothing factor for temporal smoothing
	smoothingFactor = 0.5
)

// Analyzer turns a window of mono samples into logarithmically spaced
// frequency bands, scaled 0-255. Consecutive calls are temporally smoothed.
type Analyzer struct {
	mu         sync.Mutex
	fft        *fourier.FFT
	window     []float64
	smoothed   []float64
	sampleRate int
}

// NewAnalyzer creates an analyzer for the given output sample rate.
func NewAnalyzer(sampleRate int) *Analyzer {
	// Hanning window
	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}
	return &Analyzer{
		fft:        fourier.NewFFT(fftSize),
		window:     window,
		smoothed:   make([]float64, numBands),
		sampleRate: sampleRate,
	}
}

// Bands computes the band spectrum of the most recent fftSize samples.
// Shorter inputs are zero-padded at the front.
func (a *Analyzer) Bands(samples []float64) []uint8 {
	windowed := make([]float64, fftSize)
	offset := fftSize - len(samples)
	if offset < 0 {
		samples = samples[len(samples)-fftSize:]
		offset = 0
	}
	for i, s := range samples {
		windowed[offset+i] = s * a.window[offset+i]
	}

	coeffs := a.fft.Coefficients(nil, windowed)

	// Map FFT bins to bands on a logarithmic frequency scale. This gives
	// better resolution for bass and mids, which is more perceptually
	// relevant than a linear split.
	nyquist := fftSize / 2
	freqPerBin := float64(a.sampleRate) / float64(fftSize)
	minFreq := 20.0
	maxFreq := 20000.0
	if float64(a.sampleRate)/2 < maxFreq {
		maxFreq = float64(a.sampleRate) / 2
	}
	logMin := math.Log10(minFreq)
	logRange := math.Log10(maxFreq) - logMin

	bands := make([]float64, numBands)
	bandCounts := make([]int, numBands)

	for bin := 1; bin < nyquist; bin++ {
		freq := float64(bin) * freqPerBin
		if freq < minFreq || freq > maxFreq {
			continue
		}
		band := int((math.Log10(freq) - logMin) / logRange * float64(numBands))
		if band >= numBands {
			band = numBands - 1
		}
		if band < 0 {
			band = 0
		}

		re := real(coeffs[bin])
		im := imag(coeffs[bin])
		magnitude := math.Sqrt(re*re + im*im)

		// dB scale over a -60dB to 0dB range, normalized to 0-255
		db := 20 * math.Log10(magnitude/float64(fftSize)+1e-10)
		normalized := (db + 60) / 60 * 255
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 255 {
			normalized = 255
		}
		bands[band] += normalized
		bandCounts[band]++
	}

	for i := range bands {
		if bandCounts[i] > 0 {
			bands[i] /= float64(bandCounts[i])
		}
	}

	// Spread energy to adjacent bands to fill gaps where no FFT bin maps
	// directly, then apply temporal smoothing.
	spread := make([]float64, numBands)
	for i := range bands {
		spread[i] = bands[i]
		if i > 0 {
			spread[i] += bands[i-1] * 0.3
		}
		if i < numBands-1 {
			spread[i] += bands[i+1] * 0.3
		}
		if spread[i] > 255 {
			spread[i] = 255
		}
	}

	a.mu.Lock()
	out := make([]uint8, numBands)
	for i := range a.smoothed {
		a.smoothed[i] = smoothingFactor*a.smoothed[i] + (1-smoothingFactor)*spread[i]
		v := a.smoothed[i]
		if v > 255 {
			v = 255
		}
		if v < 0 {
			v = 0
		}
		out[i] = uint8(v)
	}
	a.mu.Unlock()
	return out
}

// Reset clears the smoothing state, for use on track changes.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	a.mu.Unlock()
}
