package sim

import (
	"marble-derby/internal/phys"
	"marble-derby/internal/scene"
)

// BodySnapshot is an immutable copy of one body's render state.
// Uses value types (not handles) to ensure immutability.
type BodySnapshot struct {
	Vertices  []phys.Vec
	Fill      string
	Role      scene.Role
	Team      scene.Team
	IsPrimary bool
	Stroked   bool
	Static    bool
}

// Snapshot is the complete immutable state of one simulated frame.
// Trace[i] is the unique physics state after exactly i fixed steps.
type Snapshot struct {
	Frame int

	// Bodies in world creation order, world pixel coordinates.
	Bodies []BodySnapshot

	// Instantaneous in-zone census per team for this exact frame.
	// Never cumulative: a ball that bounces out stops counting.
	CensusA int
	CensusB int

	// CameraFocus is the tracked body position for camera-following
	// scenes; HasCamera distinguishes it from a zero focus.
	CameraFocus phys.Vec
	HasCamera   bool

	// Outcome is empty until a terminal condition is reached, then
	// pinned to its first-decided value for all later frames.
	Outcome      string
	OutcomeFrame int // frame at which the outcome was decided, -1 while empty
}

// Census returns the in-zone count for a team.
func (s Snapshot) Census(team scene.Team) int {
	switch team {
	case scene.TeamA:
		return s.CensusA
	case scene.TeamB:
		return s.CensusB
	}
	return 0
}

// Trace is the full precomputed ordered sequence of per-frame
// snapshots for one simulation run. Produced once, then read-only for
// the remainder of the session; no locking is ever needed.
type Trace struct {
	Width  int
	Height int
	FPS    int

	Snapshots []Snapshot
	Events    []CollisionEvent
}

// Len returns the number of frames in the trace.
func (t *Trace) Len() int { return len(t.Snapshots) }

// At returns the snapshot for a frame index, clamped to the valid
// range. Playback hosts routinely probe past the end, so an
// out-of-range request is recovered locally, never an error.
func (t *Trace) At(frame int) Snapshot {
	if frame < 0 {
		frame = 0
	}
	if frame >= len(t.Snapshots) {
		frame = len(t.Snapshots) - 1
	}
	return t.Snapshots[frame]
}

// EventsAt returns the collision events recorded for exactly the given
// frame index. Indexes past the end yield no events: cues belong to
// the step they occurred in, not to clamped repeats of the last frame.
func (t *Trace) EventsAt(frame int) []CollisionEvent {
	var out []CollisionEvent
	for _, ev := range t.Events {
		if ev.Frame == frame {
			out = append(out, ev)
		}
	}
	return out
}
