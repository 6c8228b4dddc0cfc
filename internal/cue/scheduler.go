package cue

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"marble-derby/internal/config"
)

// Scheduler plays synthesized cues through the system speaker.
// Initialization failure leaves it disabled: visual output never
// depends on audio succeeding.
type Scheduler struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	cfg     config.AudioConfig
	enabled bool
}

// NewScheduler attempts to open the audio output. On failure the
// returned scheduler silently drops every cue.
func NewScheduler(cfg config.AudioConfig) *Scheduler {
	s := &Scheduler{
		mixer: &beep.Mixer{},
		cfg:   cfg,
	}
	if !cfg.Enabled {
		return s
	}

	rate := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Millisecond*50)); err != nil {
		return s
	}
	speaker.Play(s.mixer)
	s.enabled = true
	return s
}

// Enabled reports whether an audio output was opened.
func (s *Scheduler) Enabled() bool { return s.enabled }

// Schedule synthesizes and queues one cue for immediate playback.
// Fire-and-forget, no backpressure: if many collisions land on the
// same frame, all cues are scheduled without throttling.
func (s *Scheduler) Schedule(velocity float64) {
	if !s.enabled {
		return
	}

	buf := Synthesize(velocity, s.cfg.SampleRate)
	st := &bufferStreamer{buf: buf, volume: s.cfg.Volume}

	s.mu.Lock()
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
	s.mu.Unlock()
}

// bufferStreamer streams a mono buffer to both channels once.
type bufferStreamer struct {
	buf    Buffer
	pos    int
	volume float64
}

func (b *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= len(b.buf) {
		return 0, false
	}
	for i := range samples {
		if b.pos >= len(b.buf) {
			return i, true
		}
		v := b.buf[b.pos] * b.volume
		samples[i][0] = v
		samples[i][1] = v
		b.pos++
	}
	return len(samples), true
}

func (b *bufferStreamer) Err() error { return nil }
