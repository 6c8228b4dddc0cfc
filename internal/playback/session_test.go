package playback_test

import (
	"bytes"
	"testing"

	"marble-derby/internal/config"
	"marble-derby/internal/playback"
	"marble-derby/internal/render"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		Video: config.VideoConfig{Width: 320, Height: 240, FPS: 30, DurationFrames: 30},
		Scene: config.SceneConfig{
			Kind:          config.ScenePlinko,
			Seed:          "session-test",
			BallCount:     4,
			GoalThreshold: 2,
			PegRows:       3,
		},
		Audio:  config.AudioConfig{SampleRate: 44100, Volume: 0.8, Enabled: false},
		Server: config.ServerConfig{Port: 8080},
	}
}

// TestNewRejectsInvalidConfig tests that construction validates
func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Video.FPS = 0

	if _, err := playback.New(cfg); err == nil {
		t.Fatal("Expected an error for an invalid configuration")
	}
}

// TestSessionFrame tests frame serving, clamping and repeatability
func TestSessionFrame(t *testing.T) {
	s, err := playback.New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Len() != 30 {
		t.Fatalf("Expected 30 frames, got %d", s.Len())
	}

	img := s.Frame(5)
	if img == nil {
		t.Fatal("Frame returned nil")
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("Expected a 320x240 frame, got %dx%d", b.Dx(), b.Dy())
	}

	// Any index is servable; past-the-end repeats the final frame.
	buf1 := make([]byte, render.FrameBytes(320, 240))
	buf2 := make([]byte, render.FrameBytes(320, 240))
	render.ImageToRGBA(s.Frame(10_000), buf1)
	render.ImageToRGBA(s.Frame(29), buf2)
	if !bytes.Equal(buf1, buf2) {
		t.Error("Expected a past-the-end request to repeat the final frame")
	}

	if snap := s.Snapshot(-3); snap.Frame != 0 {
		t.Errorf("Expected negative index to clamp to frame 0, got %d", snap.Frame)
	}
	if evs := s.Events(10_000); len(evs) != 0 {
		t.Errorf("Expected no events past the end, got %d", len(evs))
	}
}

// TestSessionRegenerate tests a live parameter change
func TestSessionRegenerate(t *testing.T) {
	s, err := playback.New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cfg := testConfig()
	cfg.Video.DurationFrames = 45
	cfg.Scene.Seed = "regenerated"
	if err := s.Regenerate(cfg); err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if s.Len() != 45 {
		t.Errorf("Expected 45 frames after regeneration, got %d", s.Len())
	}
	if s.Config().Scene.Seed != "regenerated" {
		t.Errorf("Expected the new seed to be active, got %q", s.Config().Scene.Seed)
	}

	// An invalid change is rejected and the current trace stays up.
	bad := cfg
	bad.Scene.Kind = "pachinko"
	if err := s.Regenerate(bad); err == nil {
		t.Fatal("Expected an error for an invalid regeneration")
	}
	if s.Len() != 45 {
		t.Errorf("Expected the previous trace after a rejected regeneration, got %d frames", s.Len())
	}
}
