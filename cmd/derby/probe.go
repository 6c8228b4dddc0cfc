package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"marble-derby/internal/scene"
	"marble-derby/internal/sim"
)

// probeOutput is the JSON shape printed for one inspected frame.
type probeOutput struct {
	Frame        int                  `json:"frame"`
	Bodies       int                  `json:"bodies"`
	CensusA      int                  `json:"census_a"`
	CensusB      int                  `json:"census_b"`
	Outcome      string               `json:"outcome,omitempty"`
	OutcomeFrame int                  `json:"outcome_frame,omitempty"`
	Events       []sim.CollisionEvent `json:"events"`
}

func newProbeCmd() *cobra.Command {
	var frame int

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Generate the trace and print one frame's state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc := scene.Build(cfg.Scene, cfg.Video)
			tr := sim.Generate(sc, cfg.Video)

			snap := tr.At(frame)
			out := probeOutput{
				Frame:        snap.Frame,
				Bodies:       len(snap.Bodies),
				CensusA:      snap.CensusA,
				CensusB:      snap.CensusB,
				Outcome:      snap.Outcome,
				OutcomeFrame: snap.OutcomeFrame,
				Events:       tr.EventsAt(frame),
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().IntVar(&frame, "frame", 0, "frame index to inspect")
	return cmd
}
