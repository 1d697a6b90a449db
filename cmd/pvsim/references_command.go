package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
)

func newReferencesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "references",
		Short:       "List the elite reference profiles",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := pvsim.References()
			if jsonOutput {
				return writeJSON(cmd, refs)
			}

			out := cmd.OutOrStdout()
			for _, ref := range refs {
				fmt.Fprintf(out, "%s (%s): best %.2f m, %.0f kg\n", ref.Name, ref.ID, ref.BestHeightM, ref.MassKG)
				var rows [][]string
				for _, kind := range pvsim.AllPhases() {
					phase, ok := ref.Phases[kind]
					if !ok {
						continue
					}
					rows = append(rows, []string{
						kind.DisplayName(),
						peak(phase.Kinetic),
						peak(phase.Potential),
						fmt.Sprintf("%.1f", phase.EnergyGenerated),
						fmt.Sprintf("%.2f", phase.OptimalDurationSeconds),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Phase", "KE max (J)", "PE max (J)", "Generated (J)", "Optimal (s)"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print references as JSON")
	return cmd
}

func peak(s *pvsim.PeakStats) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", s.Max)
}
