// Package config is the single source of truth for every tunable in
// the pipeline. Defaults live here; DERBY_* environment variables and
// preset files override them at startup.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SceneKind selects which world layout gets built.
type SceneKind string

const (
	ScenePlinko SceneKind = "plinko"
	SceneCourse SceneKind = "course"
)

// VideoConfig fixes the output raster and the simulation clock. The
// physics step is derived from FPS so one frame always equals exactly
// one fixed timestep.
type VideoConfig struct {
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	FPS            int `yaml:"fps"`
	DurationFrames int `yaml:"duration_frames"`
}

// StepMillis returns the fixed simulation step in milliseconds.
func (v VideoConfig) StepMillis() float64 {
	return 1000.0 / float64(v.FPS)
}

// SceneConfig parameterizes world construction. Seed is a free-form
// string; the same seed always produces the same world.
type SceneConfig struct {
	Kind          SceneKind `yaml:"kind"`
	Seed          string    `yaml:"seed"`
	BallCount     int       `yaml:"ball_count"`
	GoalThreshold int       `yaml:"goal_threshold"`
	PegRows       int       `yaml:"peg_rows"`
	Segments      int       `yaml:"segments"`
	CourseScale   int       `yaml:"course_scale"`
}

// AudioConfig covers both live cue playback and export mixing.
type AudioConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
	Enabled    bool    `yaml:"enabled"`
}

// ServerConfig holds the preview server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// AppConfig aggregates every subsystem's configuration.
type AppConfig struct {
	Video  VideoConfig  `yaml:"video"`
	Scene  SceneConfig  `yaml:"scene"`
	Audio  AudioConfig  `yaml:"audio"`
	Server ServerConfig `yaml:"server"`
}

// Load builds the configuration from defaults plus DERBY_* environment
// overrides.
func Load() AppConfig {
	cfg := AppConfig{
		Video: VideoConfig{
			Width:          getEnvInt("DERBY_WIDTH", 1280),
			Height:         getEnvInt("DERBY_HEIGHT", 720),
			FPS:            getEnvInt("DERBY_FPS", 30),
			DurationFrames: getEnvInt("DERBY_FRAMES", 1800),
		},
		Scene: SceneConfig{
			Kind:          SceneKind(getEnvStr("DERBY_SCENE", string(ScenePlinko))),
			Seed:          getEnvStr("DERBY_SEED", "derby"),
			BallCount:     getEnvInt("DERBY_BALLS", 250),
			GoalThreshold: getEnvInt("DERBY_GOAL_THRESHOLD", 25),
			PegRows:       getEnvInt("DERBY_PEG_ROWS", 6),
			Segments:      getEnvInt("DERBY_SEGMENTS", 24),
			CourseScale:   getEnvInt("DERBY_COURSE_SCALE", 8),
		},
		Audio: AudioConfig{
			SampleRate: getEnvInt("DERBY_SAMPLE_RATE", 44100),
			Volume:     getEnvFloat("DERBY_VOLUME", 0.8),
			Enabled:    getEnvStr("DERBY_AUDIO", "on") != "off",
		},
		Server: ServerConfig{
			Port: getEnvInt("DERBY_PORT", 8080),
		},
	}
	return cfg
}

// LoadPreset overlays a YAML preset file on top of cfg.
func LoadPreset(path string, cfg AppConfig) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read preset: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse preset %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fails fast on configurations that cannot produce a trace.
func (c AppConfig) Validate() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("config: invalid dimensions %dx%d", c.Video.Width, c.Video.Height)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.DurationFrames <= 0 {
		return fmt.Errorf("config: duration must be positive, got %d frames", c.Video.DurationFrames)
	}
	if c.Scene.BallCount <= 0 {
		return fmt.Errorf("config: ball count must be positive, got %d", c.Scene.BallCount)
	}
	switch c.Scene.Kind {
	case ScenePlinko:
		if c.Scene.GoalThreshold <= 0 {
			return fmt.Errorf("config: goal threshold must be positive, got %d", c.Scene.GoalThreshold)
		}
		if c.Scene.PegRows <= 0 {
			return fmt.Errorf("config: peg rows must be positive, got %d", c.Scene.PegRows)
		}
	case SceneCourse:
		if c.Scene.Segments <= 0 {
			return fmt.Errorf("config: segments must be positive, got %d", c.Scene.Segments)
		}
		if c.Scene.CourseScale <= 0 {
			return fmt.Errorf("config: course scale must be positive, got %d", c.Scene.CourseScale)
		}
	default:
		return fmt.Errorf("config: unknown scene kind %q", c.Scene.Kind)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	return nil
}

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
