// Package playback owns a rendering session: the precomputed trace and
// the derived views over it (compositor, cue scheduler). It implements
// the host boundary: the host supplies a frame index, the session
// returns that frame's raster image and schedules its cues.
package playback

import (
	"image"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"marble-derby/internal/config"
	"marble-derby/internal/cue"
	"marble-derby/internal/render"
	"marble-derby/internal/scene"
	"marble-derby/internal/sim"
)

// Session holds one generated trace and serves frames from it in any
// order. The trace is produced once, then read-only; Frame never
// mutates shared state beyond cue scheduling.
type Session struct {
	mu    sync.RWMutex
	cfg   config.AppConfig
	trace *sim.Trace
	comp  *render.Compositor
	sched *cue.Scheduler

	// generation invalidates in-flight regenerations: only the most
	// recently started rebuild may publish its trace.
	generation uint64
}

// New validates the configuration, builds the world and precomputes
// the full trace before returning. No frame is served from a partial
// trace.
func New(cfg config.AppConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:   cfg,
		sched: cue.NewScheduler(cfg.Audio),
	}
	s.rebuild(cfg, 1)
	s.generation = 1

	if !s.sched.Enabled() && cfg.Audio.Enabled {
		log.Debug("audio output unavailable, cues disabled")
	}
	return s, nil
}

// rebuild constructs scene, trace and compositor for cfg and, if gen
// is still current, swaps them in atomically.
func (s *Session) rebuild(cfg config.AppConfig, gen uint64) {
	start := time.Now()
	sc := scene.Build(cfg.Scene, cfg.Video)
	trace := sim.Generate(sc, cfg.Video)
	comp := render.New(cfg.Video.Width, cfg.Video.Height, sc.Zones, sc.GoalThreshold)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.generation {
		// A newer regeneration started while this one ran; discard so
		// a stale trace is never exposed.
		return
	}
	s.cfg = cfg
	s.trace = trace
	s.comp = comp
	log.Info("trace generated",
		"scene", cfg.Scene.Kind,
		"frames", trace.Len(),
		"events", len(trace.Events),
		"took", time.Since(start))
}

// Regenerate rebuilds the whole trace from scratch for new parameters.
// Partial reuse of a stale trace is not supported; a previous unfinished
// rebuild is discarded in favor of this one.
func (s *Session) Regenerate(cfg config.AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.rebuild(cfg, gen)
	return nil
}

// Frame renders the requested frame index (clamped) and schedules the
// cues recorded for exactly that index. Safe to call with any index,
// in any order, repeatedly.
func (s *Session) Frame(index int) image.Image {
	s.mu.RLock()
	trace, comp := s.trace, s.comp
	s.mu.RUnlock()

	img := comp.Render(trace.At(index))
	for _, ev := range trace.EventsAt(index) {
		s.sched.Schedule(ev.Velocity)
	}
	return img
}

// Snapshot returns the clamped snapshot for an index without rendering.
func (s *Session) Snapshot(index int) sim.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace.At(index)
}

// Events returns the collision events for exactly the given index.
func (s *Session) Events(index int) []sim.CollisionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace.EventsAt(index)
}

// Len returns the trace length in frames.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace.Len()
}

// Config returns the active configuration.
func (s *Session) Config() config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Trace exposes the underlying read-only trace for export pipelines.
func (s *Session) Trace() *sim.Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace
}
