package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"marble-derby/internal/config"
)

var (
	presetPath string
	sceneName  string
	seed       string
	frames     int
	balls      int
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "derby",
		Short: "Deterministic physics race renderer",
		Long: "derby precomputes a physics race as an immutable trace and " +
			"serves or exports its frames: a plinko drop race or a side " +
			"scrolling downhill course.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&presetPath, "preset", "", "YAML preset file")
	root.PersistentFlags().StringVar(&sceneName, "scene", "", "scene kind (plinko, course)")
	root.PersistentFlags().StringVar(&seed, "seed", "", "deterministic world seed")
	root.PersistentFlags().IntVar(&frames, "frames", 0, "trace length in frames")
	root.PersistentFlags().IntVar(&balls, "balls", 0, "number of balls")

	root.AddCommand(newServeCmd(), newRenderCmd(), newProbeCmd())

	if err := root.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig composes defaults, environment, preset file and flags, in
// that order of increasing precedence.
func loadConfig() (config.AppConfig, error) {
	cfg := config.Load()
	if presetPath != "" {
		var err error
		cfg, err = config.LoadPreset(presetPath, cfg)
		if err != nil {
			return cfg, err
		}
	}
	if sceneName != "" {
		cfg.Scene.Kind = config.SceneKind(sceneName)
	}
	if seed != "" {
		cfg.Scene.Seed = seed
	}
	if frames > 0 {
		cfg.Video.DurationFrames = frames
	}
	if balls > 0 {
		cfg.Scene.BallCount = balls
	}
	return cfg, cfg.Validate()
}
