// Package sim precomputes the full simulation trace ahead of playback:
// one immutable snapshot per output frame plus the de-duplicated
// collision events, so any frame can be displayed in isolation and in
// any order.
package sim

import (
	"marble-derby/internal/config"
	"marble-derby/internal/scene"
)

// Generate drives the physics engine forward one fixed time slice per
// output frame and captures the whole trace before any frame is
// displayed. The host may request frames non-monotonically or
// repeatedly, so no lazy stepping by requested index is possible.
//
// The same seed, dimensions, fps and duration always produce the same
// trace, bit-identical in positions subject to the engine's own
// floating-point determinism.
func Generate(s *scene.Scene, vc config.VideoConfig) *Trace {
	rec := NewRecorder(s.Tags)
	s.World.OnContactBegin(rec.HandleContact)

	trace := &Trace{
		Width:     vc.Width,
		Height:    vc.Height,
		FPS:       vc.FPS,
		Snapshots: make([]Snapshot, 0, vc.DurationFrames),
	}

	step := vc.StepMillis()
	outcome := ""
	outcomeFrame := -1

	for frame := 0; frame < vc.DurationFrames; frame++ {
		rec.BeginFrame(frame)

		// Two half-steps for stability. Both belong to this frame and
		// share its recorded frame index.
		s.World.Advance(step / 2)
		s.World.Advance(step / 2)

		snap := capture(s, frame)

		// Terminal condition freezes the outcome for this and all
		// subsequent snapshots. Once decided it never reverts.
		if outcome == "" {
			if decided := decide(s, snap); decided != "" {
				outcome = decided
				outcomeFrame = frame
			}
		}
		snap.Outcome = outcome
		snap.OutcomeFrame = outcomeFrame

		trace.Snapshots = append(trace.Snapshots, snap)
	}

	trace.Events = rec.Events()
	return trace
}

// capture queries all live bodies and computes the per-frame derived
// aggregates: goal census and camera target.
func capture(s *scene.Scene, frame int) Snapshot {
	bodies := s.World.Bodies()

	snap := Snapshot{
		Frame:        frame,
		Bodies:       make([]BodySnapshot, 0, len(bodies)),
		OutcomeFrame: -1,
	}

	for _, b := range bodies {
		tag := s.Tags[b]
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			Vertices:  b.VertexRing(),
			Fill:      tag.Fill,
			Role:      tag.Role,
			Team:      tag.Team,
			IsPrimary: tag.IsPrimary,
			Stroked:   tag.Stroked,
			Static:    b.Static(),
		})

		// Goal census is an instantaneous in-zone census for this exact
		// step, recomputed fresh from current positions. A ball that
		// oscillates in and out of a zone is never double counted.
		if tag.Role == scene.RoleBall && tag.Team != scene.TeamNone {
			pos := b.Position()
			for _, z := range s.Zones {
				if z.Team == tag.Team && z.Contains(pos) {
					switch tag.Team {
					case scene.TeamA:
						snap.CensusA++
					case scene.TeamB:
						snap.CensusB++
					}
					break
				}
			}
		}
	}

	if s.Tracked != nil {
		snap.CameraFocus = s.Tracked.Position()
		snap.HasCamera = true
	}

	return snap
}

// decide evaluates whether a terminal condition newly holds.
func decide(s *scene.Scene, snap Snapshot) string {
	switch s.Kind {
	case config.SceneCourse:
		if s.Tracked != nil && s.Tracked.Position().X >= s.FinishX {
			return "finish"
		}
	default:
		if s.GoalThreshold <= 0 {
			return ""
		}
		a := snap.CensusA >= s.GoalThreshold
		b := snap.CensusB >= s.GoalThreshold
		switch {
		case a && b:
			// Both crossed in the same step: the larger census wins,
			// team A on an exact tie.
			if snap.CensusB > snap.CensusA {
				return string(scene.TeamB)
			}
			return string(scene.TeamA)
		case a:
			return string(scene.TeamA)
		case b:
			return string(scene.TeamB)
		}
	}
	return ""
}
