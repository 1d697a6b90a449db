package pvsim

import (
	"fmt"
	"math"
)

// Performance levels by energy ratio.
const (
	LevelExcellent        = "Excellent"
	LevelGood             = "Good"
	LevelFair             = "Fair"
	LevelNeedsImprovement = "Needs Improvement"
)

const (
	energyShortfallRatio = 0.85
	durationTolerance    = 0.2
)

// PhaseComparison is the athlete-vs-reference result for one phase.
type PhaseComparison struct {
	AthleteEnergy      float64 `json:"athlete_energy"`
	ReferenceEnergy    float64 `json:"reference_energy"`
	EnergyDifference   float64 `json:"energy_difference"`
	EnergyRatio        float64 `json:"energy_ratio"`
	AthleteDuration    float64 `json:"athlete_duration"`
	ReferenceDuration  float64 `json:"reference_duration"`
	DurationDifference float64 `json:"duration_difference"`
	PerformanceLevel   string  `json:"performance_level"`
}

// Recommendation is one coaching note tied to a phase.
type Recommendation struct {
	Phase      PhaseKind `json:"phase"`
	IssueType  string    `json:"issue_type"`
	Issue      string    `json:"issue"`
	Suggestion string    `json:"suggestion"`
}

// ComparisonResult is the scored comparison against one reference profile.
type ComparisonResult struct {
	ReferenceID      string                        `json:"reference_id"`
	ReferenceName    string                        `json:"reference_name"`
	MassFactor       float64                       `json:"mass_factor"`
	PhaseComparisons map[PhaseKind]PhaseComparison `json:"phase_comparisons"`
	Recommendations  []Recommendation              `json:"recommendations"`
	OverallScore     float64                       `json:"overall_score"`
}

// Compare scores the athlete against every built-in reference profile,
// keyed by reference identifier.
func Compare(energies map[PhaseKind]PhaseEnergy, athleteMassKG float64) map[string]ComparisonResult {
	out := make(map[string]ComparisonResult, len(referenceCatalog))
	for _, ref := range referenceCatalog {
		out[ref.ID] = CompareTo(ref, energies, athleteMassKG)
	}
	return out
}

// CompareTo scores the athlete against a single reference. Only phases present
// in both the athlete energies and the reference catalog are compared, and
// they are visited in canonical order. Reference energy is scaled linearly by
// the mass ratio, which is an approximation.
func CompareTo(ref ReferenceProfile, energies map[PhaseKind]PhaseEnergy, athleteMassKG float64) ComparisonResult {
	massFactor := 0.0
	if ref.MassKG != 0 {
		massFactor = athleteMassKG / ref.MassKG
	}
	result := ComparisonResult{
		ReferenceID:      ref.ID,
		ReferenceName:    ref.Name,
		MassFactor:       massFactor,
		PhaseComparisons: make(map[PhaseKind]PhaseComparison),
		Recommendations:  []Recommendation{},
	}

	scores := make([]float64, 0, len(energies))
	for _, kind := range AllPhases() {
		athlete, ok := energies[kind]
		if !ok {
			continue
		}
		refPhase, ok := ref.Phases[kind]
		if !ok {
			continue
		}

		cmp := comparePhase(athlete, refPhase, massFactor)
		result.PhaseComparisons[kind] = cmp
		result.Recommendations = append(result.Recommendations, recommend(kind, cmp)...)
		scores = append(scores, clamp(cmp.EnergyRatio*100, 0, 100))
	}
	result.OverallScore = average(scores)
	return result
}

func comparePhase(athlete PhaseEnergy, ref ReferencePhase, massFactor float64) PhaseComparison {
	scaled := ref.EnergyGenerated * massFactor
	ratio := 0.0
	if scaled != 0 {
		ratio = athlete.EnergyGenerated / scaled
	}
	if !isFinite(ratio) {
		ratio = 0
	}
	return PhaseComparison{
		AthleteEnergy:      athlete.EnergyGenerated,
		ReferenceEnergy:    scaled,
		EnergyDifference:   athlete.EnergyGenerated - scaled,
		EnergyRatio:        ratio,
		AthleteDuration:    athlete.DurationSeconds,
		ReferenceDuration:  ref.OptimalDurationSeconds,
		DurationDifference: athlete.DurationSeconds - ref.OptimalDurationSeconds,
		PerformanceLevel:   PerformanceLevel(ratio),
	}
}

// PerformanceLevel grades an energy ratio.
func PerformanceLevel(ratio float64) string {
	switch {
	case ratio >= 0.95:
		return LevelExcellent
	case ratio >= 0.85:
		return LevelGood
	case ratio >= 0.75:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

func recommend(kind PhaseKind, cmp PhaseComparison) []Recommendation {
	var recs []Recommendation
	if cmp.EnergyRatio < energyShortfallRatio {
		recs = append(recs, Recommendation{
			Phase:      kind,
			IssueType:  IssueEnergy,
			Issue:      fmt.Sprintf("Energy generation is %.1f%% below optimal", (1-cmp.EnergyRatio)*100),
			Suggestion: CoachingAdvice(kind, IssueEnergy),
		})
	}
	if math.Abs(cmp.DurationDifference) > durationTolerance {
		if cmp.DurationDifference > 0 {
			recs = append(recs, Recommendation{
				Phase:      kind,
				IssueType:  IssueDurationLong,
				Issue:      fmt.Sprintf("Phase duration is %.2fs too long", cmp.DurationDifference),
				Suggestion: CoachingAdvice(kind, IssueDurationLong),
			})
		} else {
			recs = append(recs, Recommendation{
				Phase:      kind,
				IssueType:  IssueDurationShort,
				Issue:      fmt.Sprintf("Phase duration is %.2fs too short", -cmp.DurationDifference),
				Suggestion: CoachingAdvice(kind, IssueDurationShort),
			})
		}
	}
	return recs
}

// BestComparison returns the reference identifier with the highest overall
// score. Ties resolve to catalog order.
func BestComparison(results map[string]ComparisonResult) (string, bool) {
	best, found := "", false
	bestScore := math.Inf(-1)
	for _, ref := range referenceCatalog {
		res, ok := results[ref.ID]
		if !ok {
			continue
		}
		if res.OverallScore > bestScore {
			best, bestScore, found = ref.ID, res.OverallScore, true
		}
	}
	return best, found
}
