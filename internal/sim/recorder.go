package sim

import (
	"math"

	"marble-derby/internal/phys"
	"marble-derby/internal/scene"
)

// CollisionEvent records one ball striking an indexed static obstacle.
// Recorded at most once per (frame, obstacle index) pair.
type CollisionEvent struct {
	Frame       int     `json:"frame"`
	SourceIndex int     `json:"sourceIndex"` // PlatformIndex of the struck obstacle
	Velocity    float64 `json:"velocity"`    // |vertical velocity| of the ball at contact, px/s
}

// Recorder converts the engine's raw contact pairs into de-duplicated
// domain events. It is a pure accumulation pass driven synchronously
// inside the fixed-step loop; its output is threaded explicitly into
// the trace rather than captured through shared mutable closures.
type Recorder struct {
	tags   map[*phys.Body]scene.Tag
	frame  int
	seen   map[int]struct{} // obstacle indexes hit this frame
	events []CollisionEvent
}

// NewRecorder creates a recorder over the scene's tag side table.
func NewRecorder(tags map[*phys.Body]scene.Tag) *Recorder {
	return &Recorder{
		tags: tags,
		seen: make(map[int]struct{}),
	}
}

// BeginFrame resets per-frame de-duplication state. Both half-steps of
// a frame run between BeginFrame calls and share the same frame index.
func (r *Recorder) BeginFrame(frame int) {
	r.frame = frame
	clear(r.seen)
}

// HandleContact classifies one newly-begun contact pair. Only a
// dynamic ball against an indexed static obstacle produces an event;
// a second contact for the same obstacle within the same frame is
// discarded.
func (r *Recorder) HandleContact(a, b *phys.Body) {
	ball, obstacle := r.orient(a, b)
	if ball == nil {
		return
	}

	idx := r.tags[obstacle].PlatformIndex
	if _, dup := r.seen[idx]; dup {
		return
	}
	r.seen[idx] = struct{}{}

	r.events = append(r.events, CollisionEvent{
		Frame:       r.frame,
		SourceIndex: idx,
		Velocity:    math.Abs(ball.Velocity().Y),
	})
}

// orient returns (ball, obstacle) for a relevant pair, or nils.
func (r *Recorder) orient(a, b *phys.Body) (*phys.Body, *phys.Body) {
	if r.isBall(a) && r.isIndexed(b) {
		return a, b
	}
	if r.isBall(b) && r.isIndexed(a) {
		return b, a
	}
	return nil, nil
}

func (r *Recorder) isBall(b *phys.Body) bool {
	return !b.Static() && r.tags[b].Role == scene.RoleBall
}

func (r *Recorder) isIndexed(b *phys.Body) bool {
	if !b.Static() {
		return false
	}
	tag := r.tags[b]
	return (tag.Role == scene.RolePeg || tag.Role == scene.RolePlatform) && tag.PlatformIndex >= 0
}

// Events returns everything recorded so far, in step order.
func (r *Recorder) Events() []CollisionEvent { return r.events }
