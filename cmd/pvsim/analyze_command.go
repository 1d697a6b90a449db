package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/pipeline"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var jsonOutput bool
	var fullReport bool

	cmd := &cobra.Command{
		Use:   "analyze <landmarks>",
		Short: "Segment, score and compare one vault attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			outDir := strings.TrimSpace(flags.outDir)
			if outDir == "" {
				outDir = outputDirFor(cfg.Output.Dir, args[0])
			}

			res, err := pipeline.Run(pipeline.Options{
				LandmarksPath:  args[0],
				OutDir:         outDir,
				Athlete:        flags.athlete(cmd, cfg),
				MassExplicit:   flags.massExplicit(cmd),
				AthleteFITPath: flags.fitPath(cfg),
				Format:         flags.seriesFormat(cfg),
				Overwrite:      flags.overwriteOutput(cmd, cfg),
				CopySource:     flags.copySourceFile(cmd, cfg),
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, res)
			}
			out := cmd.OutOrStdout()
			if fullReport {
				fmt.Fprintln(out, res.Analysis.Notes)
				fmt.Fprintln(out)
			} else {
				fmt.Fprintln(out, renderPhaseTable(res.Analysis.Phases))
				fmt.Fprintln(out, renderComparisonTable(res.Analysis.Comparisons))
			}
			fmt.Fprintf(out, "Total energy generated: %.2f J\n", res.Analysis.TotalEnergyGenerated)
			if res.Analysis.BestReference != "" {
				fmt.Fprintf(out, "Closest reference: %s\n", res.Analysis.BestReference)
			}
			fmt.Fprintf(out, "Artifacts written to %s (analysis %s)\n", res.OutputDir, res.AnalysisID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&fullReport, "report", false, "Print the full text report instead of tables")
	return cmd
}

func renderPhaseTable(phases []pvsim.PhaseInterval) string {
	rows := make([][]string, 0, len(phases))
	for _, p := range phases {
		rows = append(rows, []string{
			p.Phase.DisplayName(),
			fmt.Sprintf("%d-%d", p.StartFrame, p.EndFrame),
			fmt.Sprintf("%.2f", p.DurationSeconds),
			fmt.Sprintf("%.1f", p.VelocityStats.Max),
			fmt.Sprintf("%.1f", p.VelocityStats.Average),
		})
	}
	return renderTable(
		[]string{"Phase", "Frames", "Duration (s)", "Max v (px/s)", "Avg v (px/s)"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderComparisonTable(results map[string]pvsim.ComparisonResult) string {
	var rows [][]string
	for _, ref := range pvsim.References() {
		res, ok := results[ref.ID]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			res.ReferenceName,
			fmt.Sprintf("%.1f", res.OverallScore),
			fmt.Sprintf("%d", len(res.PhaseComparisons)),
			fmt.Sprintf("%d", len(res.Recommendations)),
		})
	}
	return renderTable(
		[]string{"Reference", "Score", "Phases", "Recommendations"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}
