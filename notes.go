package pvsim

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName is the upper-case heading used for a phase in text reports.
// Casers are stateful, so each call builds its own.
func (p PhaseKind) DisplayName() string {
	return cases.Upper(language.Und).String(p.String())
}

// BuildReport renders the complete text report for an analysis.
func BuildReport(a *Analysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\nPole Vault Analysis\n")
	b.WriteString(strings.Repeat("=", 80))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Athlete Mass: %.1f kg | Height: %.2f m | Scale: %.4f m/px\n", a.Athlete.MassKG, a.Athlete.HeightM, a.Athlete.PixelToMeter)
	fmt.Fprintf(
		&b,
		"Video: %dx%d @ %.2f fps | Frames %d (%d with pose)\n",
		a.Video.Width,
		a.Video.Height,
		a.Video.FPS,
		a.TotalFrames,
		a.DetectedFrames,
	)
	if a.Structure.CanonicalLabel != "" {
		fmt.Fprintf(&b, "Structure: %s (confidence %.0f%%)\n", a.Structure.CanonicalLabel, a.Structure.Confidence*100)
	}
	b.WriteByte('\n')

	b.WriteString(PhaseSummary(a.Phases))
	b.WriteString(EnergySummary(a.Energies))
	b.WriteString(ComparisonSummary(a.Comparisons))

	return strings.TrimSpace(b.String())
}

// PhaseSummary lists each detected interval with its velocity profile.
func PhaseSummary(phases []PhaseInterval) string {
	if len(phases) == 0 {
		return "No phases detected\n"
	}

	var b strings.Builder
	b.WriteString("Detected Pole Vault Phases:\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteByte('\n')
	for i, iv := range phases {
		fmt.Fprintf(&b, "%d. %s\n", i+1, iv.Phase.DisplayName())
		fmt.Fprintf(&b, "   Frames: %d - %d\n", iv.StartFrame, iv.EndFrame)
		fmt.Fprintf(&b, "   Duration: %.2f seconds\n", iv.DurationSeconds)
		b.WriteString("   Velocity (pixels/sec):\n")
		fmt.Fprintf(&b, "     Initial: %.2f\n", iv.VelocityStats.Initial)
		fmt.Fprintf(&b, "     Max:     %.2f\n", iv.VelocityStats.Max)
		fmt.Fprintf(&b, "     Average: %.2f\n", iv.VelocityStats.Average)
		fmt.Fprintf(&b, "     Final:   %.2f\n", iv.VelocityStats.Final)
		b.WriteByte('\n')
	}
	return b.String()
}

// EnergySummary lists per-phase energy statistics in canonical phase order.
func EnergySummary(energies map[PhaseKind]PhaseEnergy) string {
	var b strings.Builder
	b.WriteString("\nEnergy Analysis by Phase:\n")
	b.WriteString(strings.Repeat("=", 70))
	b.WriteString("\n\n")

	for _, kind := range AllPhases() {
		e, ok := energies[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", kind.DisplayName())
		fmt.Fprintf(&b, "  Duration: %.2fs\n", e.DurationSeconds)
		if e.Segments > 1 {
			fmt.Fprintf(&b, "  Segments: %d\n", e.Segments)
		}
		writeEnergyStats(&b, "Kinetic Energy", e.Kinetic)
		writeEnergyStats(&b, "Potential Energy", e.Potential)
		writeEnergyStats(&b, "Total Energy", e.Total)
		fmt.Fprintf(&b, "  Energy Generated: %.2f J\n\n", e.EnergyGenerated)
	}

	fmt.Fprintf(&b, "TOTAL ENERGY GENERATED: %.2f J\n", TotalEnergyGenerated(energies))
	b.WriteString(strings.Repeat("=", 70))
	b.WriteByte('\n')
	return b.String()
}

func writeEnergyStats(b *strings.Builder, label string, s EnergyStats) {
	fmt.Fprintf(b, "  %s:\n", label)
	fmt.Fprintf(b, "    Initial: %.2f J\n", s.Initial)
	fmt.Fprintf(b, "    Final:   %.2f J\n", s.Final)
	fmt.Fprintf(b, "    Max:     %.2f J\n", s.Max)
}

// ComparisonSummary renders every reference comparison in catalog order.
func ComparisonSummary(results map[string]ComparisonResult) string {
	if len(results) == 0 {
		return "No comparisons available\n"
	}

	var b strings.Builder
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(&b, "\n%s\nPERFORMANCE COMPARISON TO OLYMPIC ATHLETES\n%s\n\n", rule, rule)

	for _, ref := range referenceCatalog {
		res, ok := results[ref.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Comparison to %s:\n", res.ReferenceName)
		fmt.Fprintf(&b, "Overall Score: %.1f/100\n", res.OverallScore)
		b.WriteString(strings.Repeat("-", 80))
		b.WriteString("\n\nPhase-by-Phase Comparison:\n")

		for _, kind := range AllPhases() {
			pc, ok := res.PhaseComparisons[kind]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "\n  %s:\n", kind.DisplayName())
			fmt.Fprintf(&b, "    Your Energy: %.1f J\n", pc.AthleteEnergy)
			fmt.Fprintf(&b, "    Reference Energy: %.1f J\n", pc.ReferenceEnergy)
			fmt.Fprintf(&b, "    Performance Ratio: %.1f%%\n", pc.EnergyRatio*100)
			fmt.Fprintf(&b, "    Performance Level: %s\n", pc.PerformanceLevel)
			fmt.Fprintf(&b, "    Your Duration: %.2fs\n", pc.AthleteDuration)
			fmt.Fprintf(&b, "    Optimal Duration: %.2fs\n", pc.ReferenceDuration)
		}

		if len(res.Recommendations) > 0 {
			b.WriteString("\n  RECOMMENDATIONS FOR IMPROVEMENT:\n  ")
			b.WriteString(strings.Repeat("-", 76))
			b.WriteByte('\n')
			for i, rec := range res.Recommendations {
				fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, rec.Phase.DisplayName(), rec.Issue)
				fmt.Fprintf(&b, "     -> %s\n\n", rec.Suggestion)
			}
		} else {
			b.WriteString("\n  Excellent performance! Keep up the great work!\n")
		}
		fmt.Fprintf(&b, "\n%s\n\n", rule)
	}
	return b.String()
}
