package engine

import (
	"testing"

	"github.com/gopxl/beep/v2"
)

// monoStreamer replays a fixed mono signal on both channels.
type monoStreamer struct {
	samples []float64
	pos     int
}

func (m *monoStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := m.samples[m.pos%len(m.samples)]
		samples[i][0] = v
		samples[i][1] = v
		m.pos++
	}
	return len(samples), true
}

func (m *monoStreamer) Err() error { return nil }

// loadedEngine builds an engine with a filled capture tap and a pause
// control, without touching the speaker.
func loadedEngine(visualize, paused bool) *Engine {
	e := New(visualize)
	e.tap = NewTap(&monoStreamer{samples: sine(440, fftSize)}, tapBufferSize)
	buf := make([][2]float64, fftSize)
	e.tap.Stream(buf)
	e.ctrl = &beep.Ctrl{Streamer: e.tap, Paused: paused}
	return e
}

func allZero(bands []uint8) bool {
	for _, b := range bands {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestBandsNothingLoaded(t *testing.T) {
	e := New(true)

	bands := e.Bands()
	if len(bands) != numBands {
		t.Fatalf("Expected %d bands, got %d", numBands, len(bands))
	}
	if !allZero(bands) {
		t.Error("Expected silence with nothing loaded")
	}
	if a := e.Amplitude(); a != 0 {
		t.Errorf("Expected amplitude 0 with nothing loaded, got %f", a)
	}
}

func TestBandsDisabledByConfig(t *testing.T) {
	e := loadedEngine(false, false)

	if !allZero(e.Bands()) {
		t.Error("Expected silence when visualization is disabled")
	}
	if a := e.Amplitude(); a != 0 {
		t.Errorf("Expected amplitude 0 when visualization is disabled, got %f", a)
	}
}

func TestBandsSilentWhilePaused(t *testing.T) {
	e := loadedEngine(true, true)

	if !allZero(e.Bands()) {
		t.Error("Expected silence while paused")
	}
	if a := e.Amplitude(); a != 0 {
		t.Errorf("Expected amplitude 0 while paused, got %f", a)
	}
}

func TestBandsActiveWhilePlaying(t *testing.T) {
	e := loadedEngine(true, false)

	// Let smoothing settle
	e.Bands()
	bands := e.Bands()
	if allZero(bands) {
		t.Error("Expected band energy for a playing tone")
	}
	if a := e.Amplitude(); a <= 0 {
		t.Errorf("Expected positive amplitude for a playing tone, got %f", a)
	}
}
