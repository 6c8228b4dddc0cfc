package phys_test

import (
	"math"
	"testing"

	"marble-derby/internal/phys"
)

// TestFreeFallVelocity tests that a dropped ball accelerates at the
// configured gravity, measured in pixel space
func TestFreeFallVelocity(t *testing.T) {
	w := phys.NewWorld()
	ball := w.AddCircle(phys.Vec{X: 100, Y: 0}, 9, false, phys.Material{Density: 1, Friction: 0.3})

	const fps = 60
	step := 1000.0 / fps
	for i := 0; i < fps; i++ {
		w.Advance(step)
	}

	// After one second of free fall v ≈ g. The engine integrates
	// discretely, so allow a couple of steps' worth of slack.
	got := ball.Velocity().Y
	tolerance := 2 * phys.GravityPx / fps
	if math.Abs(got-phys.GravityPx) > tolerance {
		t.Errorf("Expected fall speed near %.1f px/s, got %.1f px/s", phys.GravityPx, got)
	}
	if ball.Position().Y <= 0 {
		t.Errorf("Expected ball to have fallen below start, got y=%.1f", ball.Position().Y)
	}
}

// TestStaticBodyStaysPut tests that static obstacles never move
func TestStaticBodyStaysPut(t *testing.T) {
	w := phys.NewWorld()
	peg := w.AddCircle(phys.Vec{X: 50, Y: 50}, 8, true, phys.Material{Friction: 0.2})

	for i := 0; i < 30; i++ {
		w.Advance(1000.0 / 30)
	}

	pos := peg.Position()
	if math.Abs(pos.X-50) > 1e-6 || math.Abs(pos.Y-50) > 1e-6 {
		t.Errorf("Expected static body at (50,50), got (%.3f,%.3f)", pos.X, pos.Y)
	}
	if !peg.Static() {
		t.Error("Expected Static() to report true for a static body")
	}
}

// TestVertexRingCircle tests circle ring reconstruction
func TestVertexRingCircle(t *testing.T) {
	w := phys.NewWorld()
	ball := w.AddCircle(phys.Vec{X: 200, Y: 300}, 12, true, phys.Material{})

	ring := ball.VertexRing()
	if len(ring) != 16 {
		t.Fatalf("Expected 16 ring vertices for a circle, got %d", len(ring))
	}

	// Every vertex sits one radius from the centroid.
	for i, v := range ring {
		d := math.Hypot(v.X-200, v.Y-300)
		if math.Abs(d-12) > 0.01 {
			t.Errorf("Vertex %d at distance %.3f, expected 12", i, d)
		}
	}
}

// TestVertexRingBox tests box corner reconstruction
func TestVertexRingBox(t *testing.T) {
	w := phys.NewWorld()
	box := w.AddBox(phys.Vec{X: 100, Y: 100}, 40, 20, 0, true, phys.Material{})

	ring := box.VertexRing()
	if len(ring) != 4 {
		t.Fatalf("Expected 4 ring vertices for a box, got %d", len(ring))
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range ring {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}
	if math.Abs(maxX-minX-40) > 0.01 || math.Abs(maxY-minY-20) > 0.01 {
		t.Errorf("Expected 40x20 extents, got %.2fx%.2f", maxX-minX, maxY-minY)
	}
}

// TestContactCallback tests that a ball landing on a platform reports
// a contact with both participating bodies
func TestContactCallback(t *testing.T) {
	w := phys.NewWorld()
	floor := w.AddBox(phys.Vec{X: 100, Y: 200}, 400, 20, 0, true, phys.Material{Friction: 0.3})
	ball := w.AddCircle(phys.Vec{X: 100, Y: 100}, 9, false, phys.Material{Density: 1})

	var sawBall, sawFloor bool
	w.OnContactBegin(func(a, b *phys.Body) {
		if a == ball || b == ball {
			sawBall = true
		}
		if a == floor || b == floor {
			sawFloor = true
		}
	})

	// 100px of fall reaches the floor well inside two seconds.
	for i := 0; i < 120 && !sawBall; i++ {
		w.Advance(1000.0 / 60)
	}

	if !sawBall || !sawFloor {
		t.Errorf("Expected contact between ball and floor, sawBall=%v sawFloor=%v", sawBall, sawFloor)
	}
}
