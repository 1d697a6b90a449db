package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/athletefit"
	"github.com/sandiegoi-PV/AI-PVSim/landmarkio"
)

// report runs the analysis in memory and prints it without writing artifacts.
func newReportCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report <landmarks>",
		Short: "Print the text report for one attempt without writing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bundle, err := landmarkio.ParseFile(args[0])
			if err != nil {
				return err
			}

			athlete := flags.athlete(cmd, cfg)
			if path := flags.fitPath(cfg); path != "" {
				profile, err := athletefit.LoadFile(path)
				if err != nil {
					return fmt.Errorf("athlete profile: %w", err)
				}
				explicit := athlete.MassKG
				athlete = profile.Apply(athlete)
				if flags.massExplicit(cmd) && explicit > 0 {
					if profile.MassKG > 0 && profile.MassKG != explicit {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: fit profile mass %.1f kg ignored; explicit mass %.1f kg used\n", profile.MassKG, explicit)
					}
					athlete.MassKG = explicit
				}
			}

			analysis, err := pvsim.Analyze(bundle.Frames, bundle.Video, athlete)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, analysis)
			}
			fmt.Fprintln(cmd.OutOrStdout(), analysis.Notes)
			return nil
		},
	}

	cmd.Flags().Float64Var(&flags.mass, "mass", 0, "Athlete mass in kg")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "Athlete height in meters")
	cmd.Flags().Float64Var(&flags.pixelRatio, "pixel-ratio", 0, "Meters per pixel in the camera plane")
	cmd.Flags().StringVar(&flags.athleteFIT, "athlete-fit", "", "Garmin FIT settings file supplying athlete mass")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full analysis as JSON")
	return cmd
}
