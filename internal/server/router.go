// Package server is the HTTP preview host. It serves rendered frames
// by index with no guarantee of monotonic or non-repeating request
// order, which is exactly the contract the precomputed trace exists
// to satisfy.
package server

import (
	"encoding/json"
	"image"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marble-derby/internal/config"
	"marble-derby/internal/render"
	"marble-derby/internal/sim"
)

// Session is the playback surface the server consumes. An interface so
// tests can serve a canned trace without running the physics engine.
type Session interface {
	Frame(index int) image.Image
	Snapshot(index int) sim.Snapshot
	Events(index int) []sim.CollisionEvent
	Len() int
	Config() config.AppConfig
	Regenerate(cfg config.AppConfig) error
}

// RouterConfig contains all dependencies needed to construct the
// HTTP router. Designed for dependency injection and testability.
type RouterConfig struct {
	// Session is the playback session (required).
	Session Session

	// RateLimiter is an optional pre-configured limiter. If nil, one is
	// created from RateLimitConfig (or defaults).
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed origins.
	CORSOrigins []string

	// DisableLogging disables the request logger (benchmarks, tests).
	DisableLogging bool
}

type routerHandlers struct {
	session Session
}

// NewRouter constructs the router with all middleware and routes.
// This function is pure: no goroutines beyond the rate limiter's
// cleanup, no listeners — safe with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{session: cfg.Session}

	r.Get("/frame/{index}", h.handleFrame)
	r.Get("/snapshot/{index}", h.handleSnapshot)
	r.Get("/events/{index}", h.handleEvents)
	r.Get("/info", h.handleInfo)
	r.Post("/regenerate", h.handleRegenerate)
	r.Get("/live", h.handleLive)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// parseIndex pulls the frame index from the URL. Negative or garbage
// indexes map to 0; the trace itself clamps the upper bound.
func parseIndex(r *http.Request) int {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		return 0
	}
	return idx
}

// handleFrame serves one rendered frame as PNG. Requesting the same
// index any number of times, in any order, yields identical bytes.
func (h *routerHandlers) handleFrame(w http.ResponseWriter, r *http.Request) {
	idx := parseIndex(r)

	result := "ok"
	if idx >= h.session.Len() {
		result = "clamped"
	}

	start := time.Now()
	img := h.session.Frame(idx)
	frameRenderDuration.Observe(time.Since(start).Seconds())
	frameRequests.WithLabelValues(result).Inc()

	w.Header().Set("Content-Type", "image/png")
	if err := render.EncodePNG(w, img); err != nil {
		// Client went away mid-encode; nothing to recover.
		return
	}
}

// snapshotSummary is the JSON view of one snapshot's aggregates.
type snapshotSummary struct {
	Frame        int     `json:"frame"`
	CensusA      int     `json:"censusA"`
	CensusB      int     `json:"censusB"`
	Outcome      string  `json:"outcome,omitempty"`
	OutcomeFrame int     `json:"outcomeFrame"`
	CameraX      float64 `json:"cameraX"`
	CameraY      float64 `json:"cameraY"`
	Bodies       int     `json:"bodies"`
	Events       int     `json:"events"`
}

func summarize(snap sim.Snapshot, events int) snapshotSummary {
	return snapshotSummary{
		Frame:        snap.Frame,
		CensusA:      snap.CensusA,
		CensusB:      snap.CensusB,
		Outcome:      snap.Outcome,
		OutcomeFrame: snap.OutcomeFrame,
		CameraX:      snap.CameraFocus.X,
		CameraY:      snap.CameraFocus.Y,
		Bodies:       len(snap.Bodies),
		Events:       events,
	}
}

func (h *routerHandlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	idx := parseIndex(r)
	snap := h.session.Snapshot(idx)
	writeJSON(w, summarize(snap, len(h.session.Events(idx))))
}

func (h *routerHandlers) handleEvents(w http.ResponseWriter, r *http.Request) {
	idx := parseIndex(r)
	events := h.session.Events(idx)
	if events == nil {
		events = []sim.CollisionEvent{}
	}
	writeJSON(w, events)
}

func (h *routerHandlers) handleInfo(w http.ResponseWriter, r *http.Request) {
	cfg := h.session.Config()
	writeJSON(w, map[string]any{
		"scene":  cfg.Scene.Kind,
		"seed":   cfg.Scene.Seed,
		"width":  cfg.Video.Width,
		"height": cfg.Video.Height,
		"fps":    cfg.Video.FPS,
		"frames": h.session.Len(),
	})
}

// regenerateRequest carries the parameters a client may change. Any
// change requires a full rebuild; partial reuse of a stale trace is
// not a supported mode.
type regenerateRequest struct {
	Scene  string `json:"scene,omitempty"`
	Seed   string `json:"seed,omitempty"`
	FPS    int    `json:"fps,omitempty"`
	Frames int    `json:"frames,omitempty"`
	Balls  int    `json:"balls,omitempty"`
}

func (h *routerHandlers) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := h.session.Config()
	if req.Scene != "" {
		cfg.Scene.Kind = config.SceneKind(req.Scene)
	}
	if req.Seed != "" {
		cfg.Scene.Seed = req.Seed
	}
	if req.FPS > 0 {
		cfg.Video.FPS = req.FPS
	}
	if req.Frames > 0 {
		cfg.Video.DurationFrames = req.Frames
	}
	if req.Balls > 0 {
		cfg.Scene.BallCount = req.Balls
	}

	if err := h.session.Regenerate(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	regenerations.Inc()
	writeJSON(w, map[string]any{"frames": h.session.Len()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
