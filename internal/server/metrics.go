package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality (no per-frame labels).
var (
	frameRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "derby_frame_render_duration_seconds",
		Help:    "Time spent rasterizing one frame",
		Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1, 0.25},
	})

	frameRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "derby_frame_requests_total",
		Help: "Frame requests served",
	}, []string{"result"}) // Bounded: "ok", "clamped"

	regenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "derby_trace_regenerations_total",
		Help: "Full trace regenerations triggered over the API",
	})

	requestsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "derby_requests_rejected_total",
		Help: "Requests rejected by the rate limiter",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "derby_websocket_connections_active",
		Help: "Currently active live-preview connections",
	})
)

func recordRejected() { requestsRejected.Inc() }
