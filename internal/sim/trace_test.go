package sim_test

import (
	"testing"

	"marble-derby/internal/config"
	"marble-derby/internal/scene"
	"marble-derby/internal/sim"
)

func smallPlinko() (config.SceneConfig, config.VideoConfig) {
	sc := config.SceneConfig{
		Kind:          config.ScenePlinko,
		Seed:          "fixed-seed",
		BallCount:     8,
		GoalThreshold: 2,
		PegRows:       3,
	}
	vc := config.VideoConfig{Width: 640, Height: 480, FPS: 30, DurationFrames: 90}
	return sc, vc
}

func generate(sc config.SceneConfig, vc config.VideoConfig) *sim.Trace {
	return sim.Generate(scene.Build(sc, vc), vc)
}

// TestTraceDeterminism tests that two runs with identical parameters
// produce identical traces
func TestTraceDeterminism(t *testing.T) {
	sc, vc := smallPlinko()
	t1 := generate(sc, vc)
	t2 := generate(sc, vc)

	if t1.Len() != t2.Len() {
		t.Fatalf("Expected equal lengths, got %d and %d", t1.Len(), t2.Len())
	}
	if len(t1.Events) != len(t2.Events) {
		t.Fatalf("Expected equal event counts, got %d and %d", len(t1.Events), len(t2.Events))
	}
	for i, ev := range t1.Events {
		if ev != t2.Events[i] {
			t.Errorf("Event %d differs: %+v vs %+v", i, ev, t2.Events[i])
		}
	}

	for _, frame := range []int{0, vc.DurationFrames / 2, vc.DurationFrames - 1} {
		s1, s2 := t1.At(frame), t2.At(frame)
		if s1.CensusA != s2.CensusA || s1.CensusB != s2.CensusB {
			t.Errorf("Frame %d census differs: A=%d/%d B=%d/%d",
				frame, s1.CensusA, s2.CensusA, s1.CensusB, s2.CensusB)
		}
		if len(s1.Bodies) != len(s2.Bodies) {
			t.Fatalf("Frame %d body counts differ: %d vs %d", frame, len(s1.Bodies), len(s2.Bodies))
		}
		for j := range s1.Bodies {
			v1, v2 := s1.Bodies[j].Vertices, s2.Bodies[j].Vertices
			for k := range v1 {
				if v1[k] != v2[k] {
					t.Fatalf("Frame %d body %d vertex %d differs: %v vs %v", frame, j, k, v1[k], v2[k])
				}
			}
		}
	}
}

// TestTraceFrameCount tests that the trace holds exactly one snapshot
// per configured frame, indexed by step count
func TestTraceFrameCount(t *testing.T) {
	sc, vc := smallPlinko()
	tr := generate(sc, vc)

	if tr.Len() != vc.DurationFrames {
		t.Fatalf("Expected %d frames, got %d", vc.DurationFrames, tr.Len())
	}
	for i := 0; i < tr.Len(); i++ {
		if tr.At(i).Frame != i {
			t.Errorf("Snapshot %d carries frame index %d", i, tr.At(i).Frame)
		}
	}
}

// TestTraceClamping tests out-of-range frame requests
func TestTraceClamping(t *testing.T) {
	sc, vc := smallPlinko()
	tr := generate(sc, vc)

	if got := tr.At(-5).Frame; got != 0 {
		t.Errorf("Expected negative index to clamp to frame 0, got %d", got)
	}
	last := tr.Len() - 1
	if got := tr.At(tr.Len() + 100).Frame; got != last {
		t.Errorf("Expected past-the-end index to clamp to frame %d, got %d", last, got)
	}

	// Clamped repeats of the last frame never replay its cues.
	if evs := tr.EventsAt(tr.Len() + 100); len(evs) != 0 {
		t.Errorf("Expected no events past the end, got %d", len(evs))
	}
}

// TestTraceIdempotentLookup tests that repeated and unordered frame
// lookups return the same snapshot
func TestTraceIdempotentLookup(t *testing.T) {
	sc, vc := smallPlinko()
	tr := generate(sc, vc)

	for _, frame := range []int{40, 3, 40, 88, 0, 40} {
		s1 := tr.At(frame)
		s2 := tr.At(frame)
		if s1.Frame != s2.Frame || s1.CensusA != s2.CensusA || s1.CensusB != s2.CensusB {
			t.Errorf("Frame %d lookup not stable: %+v vs %+v", frame, s1, s2)
		}
	}
}

// TestOutcomeMonotonic tests that a decided outcome never changes or
// clears on later frames
func TestOutcomeMonotonic(t *testing.T) {
	sc := config.SceneConfig{
		Kind:          config.ScenePlinko,
		Seed:          "fixed-seed",
		BallCount:     20,
		GoalThreshold: 2,
		PegRows:       3,
	}
	vc := config.VideoConfig{Width: 640, Height: 480, FPS: 30, DurationFrames: 600}
	tr := generate(sc, vc)

	final := tr.At(tr.Len() - 1)
	if final.Outcome == "" {
		t.Fatal("Expected an outcome with a threshold of 2 over 20 seconds")
	}
	if final.OutcomeFrame < 0 || final.OutcomeFrame >= tr.Len() {
		t.Fatalf("Expected a valid outcome frame, got %d", final.OutcomeFrame)
	}

	decided := tr.At(final.OutcomeFrame)
	if decided.Outcome != final.Outcome {
		t.Errorf("Outcome changed after decision: %q then %q", decided.Outcome, final.Outcome)
	}
	if final.OutcomeFrame > 0 {
		before := tr.At(final.OutcomeFrame - 1)
		if before.Outcome != "" {
			t.Errorf("Expected empty outcome before frame %d, got %q", final.OutcomeFrame, before.Outcome)
		}
	}
	for i := final.OutcomeFrame; i < tr.Len(); i++ {
		s := tr.At(i)
		if s.Outcome != final.Outcome || s.OutcomeFrame != final.OutcomeFrame {
			t.Fatalf("Frame %d reverted outcome: %q at frame %d", i, s.Outcome, s.OutcomeFrame)
		}
	}

	// The census at the decision must actually satisfy the threshold.
	winner := decided.CensusA
	if final.Outcome == string(scene.TeamB) {
		winner = decided.CensusB
	}
	if winner < sc.GoalThreshold {
		t.Errorf("Winning census %d below threshold %d at decision", winner, sc.GoalThreshold)
	}
}

// TestCourseFinish tests that the tracked ball completes the course
// and pins the finish outcome
func TestCourseFinish(t *testing.T) {
	sc := config.SceneConfig{
		Kind:        config.SceneCourse,
		Seed:        "fixed-seed",
		BallCount:   3,
		Segments:    8,
		CourseScale: 2,
	}
	vc := config.VideoConfig{Width: 640, Height: 480, FPS: 30, DurationFrames: 900}
	tr := generate(sc, vc)

	final := tr.At(tr.Len() - 1)
	if final.Outcome != "finish" {
		t.Fatalf("Expected outcome 'finish', got %q", final.Outcome)
	}
	if !final.HasCamera {
		t.Error("Expected camera focus on the course scene")
	}

	// Camera follows the tracked ball monotonically enough to have
	// moved far beyond the first screen by the finish.
	if final.CameraFocus.X < float64(vc.Width) {
		t.Errorf("Expected camera past the first screen at the finish, got x=%.1f", final.CameraFocus.X)
	}
}

// TestCensusInstantaneous tests that the census never exceeds the
// number of team balls and reflects positions, not history
func TestCensusInstantaneous(t *testing.T) {
	sc, vc := smallPlinko()
	tr := generate(sc, vc)

	perTeam := sc.BallCount / 2
	for i := 0; i < tr.Len(); i++ {
		s := tr.At(i)
		if s.CensusA < 0 || s.CensusA > perTeam {
			t.Fatalf("Frame %d census A out of range: %d", i, s.CensusA)
		}
		if s.CensusB < 0 || s.CensusB > perTeam {
			t.Fatalf("Frame %d census B out of range: %d", i, s.CensusB)
		}
	}

	// Balls start above the canvas, so frame 0 counts nobody.
	if first := tr.At(0); first.CensusA != 0 || first.CensusB != 0 {
		t.Errorf("Expected empty census on frame 0, got A=%d B=%d", first.CensusA, first.CensusB)
	}
}
