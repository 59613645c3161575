package engine

import (
	"testing"
)

// rampStreamer emits an increasing ramp, same value on both channels.
type rampStreamer struct {
	next float64
}

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = r.next
		samples[i][1] = r.next + 2
		r.next++
	}
	return len(samples), true
}

func (r *rampStreamer) Err() error { return nil }

func TestTapPassesAudioThrough(t *testing.T) {
	tap := NewTap(&rampStreamer{}, 16)

	buf := make([][2]float64, 4)
	n, ok := tap.Stream(buf)
	if n != 4 || !ok {
		t.Fatalf("Expected full stream, got n=%d ok=%v", n, ok)
	}
	if buf[0][0] != 0 || buf[0][1] != 2 {
		t.Errorf("Expected passthrough samples, got %v", buf[0])
	}
}

func TestTapCapturesMonoMix(t *testing.T) {
	tap := NewTap(&rampStreamer{}, 16)

	buf := make([][2]float64, 4)
	tap.Stream(buf)

	// Mono mix of (v, v+2) is v+1
	got := tap.Samples(4)
	want := []float64{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestTapRingBufferKeepsLatest(t *testing.T) {
	tap := NewTap(&rampStreamer{}, 8)

	buf := make([][2]float64, 12)
	tap.Stream(buf)

	got := tap.Samples(4)
	// Last four mono samples of a 12-sample ramp starting at 0
	want := []float64{9, 10, 11, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestTapSamplesClampsRequest(t *testing.T) {
	tap := NewTap(&rampStreamer{}, 8)

	got := tap.Samples(64)
	if len(got) != 8 {
		t.Errorf("Expected request clamped to buffer size 8, got %d", len(got))
	}
}
