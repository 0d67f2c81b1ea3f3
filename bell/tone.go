package bell

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// ToneConfig shapes the synthesized ding
type ToneConfig struct {
	SampleRate int
	Frequency  float64 // fundamental, Hz
	Duration   time.Duration
	Attack     time.Duration
	Release    time.Duration
	Volume     float64 // 0.0 - 1.0
}

// DefaultToneConfig is a short A5 ding
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		SampleRate: 44100,
		Frequency:  880,
		Duration:   90 * time.Millisecond,
		Attack:     5 * time.Millisecond,
		Release:    70 * time.Millisecond,
		Volume:     0.4,
	}
}

// Tone plays a synthesized ding on the audio device
type Tone struct {
	cfg     ToneConfig
	rate    beep.SampleRate
	mu      sync.Mutex
	started bool
	playing atomic.Bool
}

// NewTone creates a tone bell; Start opens the audio device
func NewTone(cfg ToneConfig) *Tone {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultToneConfig().SampleRate
	}
	return &Tone{cfg: cfg, rate: beep.SampleRate(cfg.SampleRate)}
}

// Start initializes the speaker with a 50ms buffer
func (t *Tone) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}
	if err := speaker.Init(t.rate, t.rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	t.started = true
	return nil
}

// Stop silences anything still playing
func (t *Tone) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	speaker.Clear()
	t.playing.Store(false)
}

// Ring queues one ding. Rings while a ding is still playing are dropped.
func (t *Tone) Ring() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started || !t.playing.CompareAndSwap(false, true) {
		return
	}
	speaker.Play(beep.Seq(t.streamer(), beep.Callback(func() {
		t.playing.Store(false)
	})))
}

// streamer builds one enveloped ding
func (t *Tone) streamer() beep.Streamer {
	c := t.cfg
	osc := newOscillator(c.Frequency, c.Duration, t.rate)
	return newVolume(newEnvelope(osc, c.Duration, c.Attack, c.Release, t.rate), c.Volume)
}

// oscillator generates a sine wave for a fixed number of samples
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

func newOscillator(freq float64, duration time.Duration, rate beep.SampleRate) *oscillator {
	return &oscillator{freq: freq, duration: rate.N(duration), rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) *envelope {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = math.Min(vol, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; zero is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
