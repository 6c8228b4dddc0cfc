package config_test

import (
	"strings"
	"testing"

	"marble-derby/internal/config"
)

// TestLoadDefaults tests that the default configuration is valid
func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default configuration should validate, got error: %v", err)
	}
	if cfg.Video.Width != 1280 || cfg.Video.Height != 720 {
		t.Errorf("Expected default 1280x720, got %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Scene.Kind != config.ScenePlinko {
		t.Errorf("Expected default scene 'plinko', got '%s'", cfg.Scene.Kind)
	}
}

// TestStepMillis tests the fixed step derivation from FPS
func TestStepMillis(t *testing.T) {
	v := config.VideoConfig{FPS: 30}
	got := v.StepMillis()
	want := 1000.0 / 30.0
	if got != want {
		t.Errorf("Expected step %v ms, got %v ms", want, got)
	}

	v.FPS = 60
	if v.StepMillis() != 1000.0/60.0 {
		t.Errorf("Expected step %v ms for 60fps, got %v", 1000.0/60.0, v.StepMillis())
	}
}

// TestValidateRejects tests that broken configurations fail fast
func TestValidateRejects(t *testing.T) {
	base := config.Load()

	tests := []struct {
		name    string
		mutate  func(*config.AppConfig)
		wantSub string
	}{
		{
			name:    "zero width",
			mutate:  func(c *config.AppConfig) { c.Video.Width = 0 },
			wantSub: "dimensions",
		},
		{
			name:    "negative fps",
			mutate:  func(c *config.AppConfig) { c.Video.FPS = -1 },
			wantSub: "fps",
		},
		{
			name:    "zero duration",
			mutate:  func(c *config.AppConfig) { c.Video.DurationFrames = 0 },
			wantSub: "duration",
		},
		{
			name:    "zero balls",
			mutate:  func(c *config.AppConfig) { c.Scene.BallCount = 0 },
			wantSub: "ball count",
		},
		{
			name:    "unknown scene",
			mutate:  func(c *config.AppConfig) { c.Scene.Kind = "pinball" },
			wantSub: "unknown scene",
		},
		{
			name:    "zero threshold",
			mutate:  func(c *config.AppConfig) { c.Scene.GoalThreshold = 0 },
			wantSub: "threshold",
		},
		{
			name: "zero segments for course",
			mutate: func(c *config.AppConfig) {
				c.Scene.Kind = config.SceneCourse
				c.Scene.Segments = 0
			},
			wantSub: "segments",
		},
		{
			name:    "bad port",
			mutate:  func(c *config.AppConfig) { c.Server.Port = 99999 },
			wantSub: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Expected error mentioning %q, got %q", tt.wantSub, err.Error())
			}
		})
	}
}
