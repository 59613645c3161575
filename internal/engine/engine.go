// Package engine implements audio playback on top of beep and the system
// speaker. It decodes local files, drives a pausable pipeline with a
// pre-volume capture tap, and reports lifecycle events through callbacks.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Output sample rate. Decoded streams are resampled to this.
const outputRate = beep.SampleRate(44100)

const tapBufferSize = fftSize * 4

// ErrNothingLoaded is returned by Play when no track has been loaded.
var ErrNothingLoaded = errors.New("nothing loaded")

// Engine plays local audio files. All lifecycle callbacks are invoked from
// their own goroutines, never synchronously from Engine methods.
type Engine struct {
	mu sync.Mutex

	initialized bool
	generation  uint64

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	tap      *Tap
	gain     float64

	visualize bool
	analyzer  *Analyzer

	onEnded      func()
	onMetadata   func(durationSeconds float64)
	onTimeUpdate func(seconds float64)
	onPlayError  func(err error)
}

// New creates an engine. The speaker is initialized lazily on first Load.
// When visualize is false the analysis surface stays silent.
func New(visualize bool) *Engine {
	return &Engine{
		gain:      1.0,
		visualize: visualize,
		analyzer:  NewAnalyzer(int(outputRate)),
	}
}

// SetOnEnded sets a callback for when a track finishes naturally.
func (e *Engine) SetOnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

// SetOnMetadata sets a callback for when a loaded track's duration is known.
func (e *Engine) SetOnMetadata(fn func(durationSeconds float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onMetadata = fn
}

// SetOnTimeUpdate sets a callback receiving playback progress every 250ms
// while playing.
func (e *Engine) SetOnTimeUpdate(fn func(seconds float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTimeUpdate = fn
}

// SetOnPlayError sets a callback for stream failures during playback.
func (e *Engine) SetOnPlayError(fn func(err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPlayError = fn
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

// Load decodes the referenced file and installs it as the current track,
// paused at position zero. Any previous track is discarded; its pending
// callbacks are suppressed by the generation counter.
func (e *Engine) Load(sourceRef string) error {
	streamer, format, err := decode(sourceRef)
	if err != nil {
		return err
	}

	e.mu.Lock()

	if !e.initialized {
		if err := speaker.Init(outputRate, outputRate.N(time.Second/10)); err != nil {
			e.mu.Unlock()
			streamer.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		e.initialized = true
	}

	e.generation++
	gen := e.generation

	if e.streamer != nil {
		old := e.streamer
		speaker.Clear()
		old.Close()
	}

	e.streamer = streamer
	e.format = format
	e.analyzer.Reset()

	resampled := beep.Resample(4, format.SampleRate, outputRate, streamer)
	// Tap goes before the volume stage: the captured signal stays at full
	// gain no matter how low the local monitor is set.
	e.tap = NewTap(resampled, tapBufferSize)
	e.volume = &effects.Volume{
		Streamer: e.tap,
		Base:     2,
		Volume:   gainToVolume(e.gain),
		Silent:   e.gain == 0,
	}
	e.ctrl = &beep.Ctrl{Streamer: e.volume, Paused: true}

	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		go e.streamDone(gen, sourceRef)
	})))

	duration := format.SampleRate.D(streamer.Len()).Seconds()
	metaCb := e.onMetadata
	e.mu.Unlock()

	log.Printf("[ENGINE] Loaded %s (%.1fs)", filepath.Base(sourceRef), duration)

	if metaCb != nil {
		go metaCb(duration)
	}
	go e.progressLoop(gen)

	return nil
}

// streamDone runs after the pipeline drains, either at natural end of
// stream or on a decode failure mid-track.
func (e *Engine) streamDone(gen uint64, sourceRef string) {
	e.mu.Lock()
	if e.generation != gen {
		e.mu.Unlock()
		return
	}
	var streamErr error
	if e.streamer != nil {
		streamErr = e.streamer.Err()
	}
	endCb := e.onEnded
	errCb := e.onPlayError
	e.mu.Unlock()

	if streamErr != nil {
		log.Printf("[ENGINE] Stream error in %s: %v", filepath.Base(sourceRef), streamErr)
		if errCb != nil {
			errCb(streamErr)
		}
		return
	}
	if endCb != nil {
		endCb()
	}
}

// progressLoop reports playback position until the track is superseded.
func (e *Engine) progressLoop(gen uint64) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		e.mu.Lock()
		if e.generation != gen || e.streamer == nil {
			e.mu.Unlock()
			return
		}
		cb := e.onTimeUpdate
		paused := e.ctrl.Paused
		speaker.Lock()
		pos := e.streamer.Position()
		speaker.Unlock()
		seconds := e.format.SampleRate.D(pos).Seconds()
		e.mu.Unlock()
		if cb != nil && !paused {
			cb(seconds)
		}
	}
}

// Play starts or resumes the loaded track. It fails when nothing is loaded.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return ErrNothingLoaded
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause suspends playback, keeping position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
}

// SetCurrentTime moves the playback position, clamped to the track bounds.
func (e *Engine) SetCurrentTime(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	target := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	speaker.Lock()
	if target > e.streamer.Len() {
		target = e.streamer.Len()
	}
	err := e.streamer.Seek(target)
	speaker.Unlock()
	if err != nil {
		log.Printf("[ENGINE] Seek failed: %v", err)
	}
}

// SetLocalVolume sets the local monitoring gain in [0.0, 1.0]. The capture
// tap is unaffected.
func (e *Engine) SetLocalVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gain = v
	if e.volume == nil {
		return
	}
	speaker.Lock()
	e.volume.Volume = gainToVolume(v)
	e.volume.Silent = v == 0
	speaker.Unlock()
}

// CurrentTime returns the playback position in seconds.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(pos).Seconds()
}

// Duration returns the loaded track's duration in seconds.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len()).Seconds()
}

// captureTap returns the tap when analysis should run: visualization
// enabled, a track loaded, and playback not paused.
func (e *Engine) captureTap() *Tap {
	e.mu.Lock()
	tap := e.tap
	ctrl := e.ctrl
	enabled := e.visualize
	e.mu.Unlock()
	if !enabled || tap == nil || ctrl == nil {
		return nil
	}
	speaker.Lock()
	paused := ctrl.Paused
	speaker.Unlock()
	if paused {
		return nil
	}
	return tap
}

// Bands returns the current frequency band spectrum of the full-gain
// capture signal, 0-255 per band. Zeroes when visualization is disabled,
// nothing is loaded, or playback is paused.
func (e *Engine) Bands() []uint8 {
	tap := e.captureTap()
	if tap == nil {
		return make([]uint8, numBands)
	}
	return e.analyzer.Bands(tap.Samples(fftSize))
}

// Amplitude returns the RMS level of the most recent capture window, in
// [0.0, 1.0]. Zero under the same conditions Bands is silent.
func (e *Engine) Amplitude() float64 {
	tap := e.captureTap()
	if tap == nil {
		return 0
	}
	samples := tap.Samples(fftSize)
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Close stops playback and releases the current track.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	if e.streamer != nil {
		speaker.Clear()
		e.streamer.Close()
		e.streamer = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.tap = nil
	return nil
}

// gainToVolume converts linear gain in (0, 1] to the exponent expected by
// effects.Volume with Base 2.
func gainToVolume(gain float64) float64 {
	if gain <= 0 {
		return 0
	}
	return math.Log2(gain)
}
