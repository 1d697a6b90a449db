package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/landmarkio"
)

func newPhasesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "phases <landmarks>",
		Short: "Segment an attempt into phases without writing artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			bundle, err := landmarkio.ParseFile(args[0])
			if err != nil {
				return err
			}
			for _, w := range bundle.Warnings {
				logger.Warn(w, "input", args[0])
			}

			phases := pvsim.Segment(bundle.Frames, bundle.Video.FPS)
			if len(phases) == 0 {
				return pvsim.ErrNoPoseDetected
			}
			structure := pvsim.InferAttemptStructure(phases, bundle.Frames, bundle.Video.FPS)

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"phases":    phases,
					"structure": structure,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPhaseTable(phases))
			fmt.Fprintf(out, "Structure: %s\n", structure.CanonicalLabel)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print phases as JSON")
	return cmd
}
