package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"marble-derby/internal/encode"
	"marble-derby/internal/render"
	"marble-derby/internal/scene"
	"marble-derby/internal/sim"
)

func newRenderCmd() *cobra.Command {
	var (
		outDir   string
		outVideo string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export the trace as a PNG sequence or a video file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outDir == "" && outVideo == "" {
				return fmt.Errorf("render: one of --out or --video is required")
			}

			start := time.Now()
			sc := scene.Build(cfg.Scene, cfg.Video)
			tr := sim.Generate(sc, cfg.Video)
			log.Info("trace generated",
				"scene", cfg.Scene.Kind,
				"frames", tr.Len(),
				"events", len(tr.Events),
				"took", time.Since(start))

			newCompositor := func() *render.Compositor {
				return render.New(cfg.Video.Width, cfg.Video.Height, sc.Zones, sc.GoalThreshold)
			}

			if outDir != "" {
				if err := encode.PNGSequence(tr, newCompositor, outDir, workers); err != nil {
					return err
				}
				log.Info("frames exported", "dir", outDir, "count", tr.Len())
			}
			if outVideo != "" {
				return encode.ExportVideo(tr, newCompositor(), encode.VideoConfig{
					OutPath: outVideo,
					Audio:   cfg.Audio,
				})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory for the PNG frame sequence")
	cmd.Flags().StringVar(&outVideo, "video", "", "output video path (requires ffmpeg)")
	cmd.Flags().IntVar(&workers, "workers", 0, "render workers (0 = NumCPU, capped at 16)")
	return cmd
}
