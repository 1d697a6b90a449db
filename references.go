package pvsim

import "fmt"

// Reference profile identifiers.
const (
	ReferenceDuplantis = "mondo_duplantis"
	ReferenceManolo    = "karvala_manolo"
)

// PeakStats is the max and average of a reference energy series in joules.
type PeakStats struct {
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// ReferencePhase is a reference athlete's benchmark for one phase.
type ReferencePhase struct {
	Kinetic                *PeakStats `json:"kinetic_energy,omitempty"`
	Potential              *PeakStats `json:"potential_energy,omitempty"`
	EnergyGenerated        float64    `json:"energy_generated"`
	OptimalDurationSeconds float64    `json:"optimal_duration"`
}

// ReferenceProfile is a built-in elite performance dataset.
type ReferenceProfile struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	BestHeightM float64                      `json:"best_height"`
	MassKG      float64                      `json:"mass"`
	Phases      map[PhaseKind]ReferencePhase `json:"phase_energies"`
}

// referenceCatalog holds approximate world-class values. Callers only ever
// see copies.
var referenceCatalog = []ReferenceProfile{
	{
		ID:          ReferenceDuplantis,
		Name:        `Armand "Mondo" Duplantis`,
		BestHeightM: 6.24,
		MassKG:      79,
		Phases: map[PhaseKind]ReferencePhase{
			PhaseRun: {
				Kinetic:                &PeakStats{Max: 2500, Average: 2300},
				EnergyGenerated:        2200,
				OptimalDurationSeconds: 3.5,
			},
			PhasePlant: {
				Kinetic:                &PeakStats{Max: 2400, Average: 2200},
				EnergyGenerated:        200,
				OptimalDurationSeconds: 0.3,
			},
			PhaseTakeoff: {
				Kinetic:                &PeakStats{Max: 2300, Average: 2100},
				Potential:              &PeakStats{Max: 500, Average: 400},
				EnergyGenerated:        300,
				OptimalDurationSeconds: 0.4,
			},
			PhaseSwingUp: {
				Potential:              &PeakStats{Max: 1500, Average: 1200},
				EnergyGenerated:        800,
				OptimalDurationSeconds: 0.8,
			},
			PhaseExtensionInversion: {
				Potential:              &PeakStats{Max: 3500, Average: 3000},
				EnergyGenerated:        1200,
				OptimalDurationSeconds: 0.6,
			},
			PhasePushOff: {
				Potential:              &PeakStats{Max: 4800, Average: 4500},
				EnergyGenerated:        500,
				OptimalDurationSeconds: 0.3,
			},
			PhasePike: {
				Potential:              &PeakStats{Max: 4500, Average: 3500},
				EnergyGenerated:        -200,
				OptimalDurationSeconds: 0.5,
			},
		},
	},
	{
		ID:          ReferenceManolo,
		Name:        "Karvalho Manolo (Fictional Reference)",
		BestHeightM: 6.05,
		MassKG:      75,
		Phases: map[PhaseKind]ReferencePhase{
			PhaseRun: {
				Kinetic:                &PeakStats{Max: 2300, Average: 2100},
				EnergyGenerated:        2000,
				OptimalDurationSeconds: 3.8,
			},
			PhasePlant: {
				Kinetic:                &PeakStats{Max: 2200, Average: 2000},
				EnergyGenerated:        180,
				OptimalDurationSeconds: 0.35,
			},
			PhaseTakeoff: {
				Kinetic:                &PeakStats{Max: 2100, Average: 1900},
				Potential:              &PeakStats{Max: 450, Average: 370},
				EnergyGenerated:        280,
				OptimalDurationSeconds: 0.45,
			},
			PhaseSwingUp: {
				Potential:              &PeakStats{Max: 1400, Average: 1100},
				EnergyGenerated:        750,
				OptimalDurationSeconds: 0.85,
			},
			PhaseExtensionInversion: {
				Potential:              &PeakStats{Max: 3300, Average: 2800},
				EnergyGenerated:        1100,
				OptimalDurationSeconds: 0.65,
			},
			PhasePushOff: {
				Potential:              &PeakStats{Max: 4500, Average: 4200},
				EnergyGenerated:        450,
				OptimalDurationSeconds: 0.35,
			},
			PhasePike: {
				Potential:              &PeakStats{Max: 4300, Average: 3300},
				EnergyGenerated:        -180,
				OptimalDurationSeconds: 0.55,
			},
		},
	},
}

// References returns a copy of the built-in catalog in stable order.
func References() []ReferenceProfile {
	out := make([]ReferenceProfile, len(referenceCatalog))
	for i, ref := range referenceCatalog {
		out[i] = ref.clone()
	}
	return out
}

// LookupReference returns the profile with the given identifier.
func LookupReference(id string) (ReferenceProfile, error) {
	for _, ref := range referenceCatalog {
		if ref.ID == id {
			return ref.clone(), nil
		}
	}
	return ReferenceProfile{}, fmt.Errorf("unknown reference athlete %q", id)
}

func (r ReferenceProfile) clone() ReferenceProfile {
	phases := make(map[PhaseKind]ReferencePhase, len(r.Phases))
	for kind, ph := range r.Phases {
		if ph.Kinetic != nil {
			k := *ph.Kinetic
			ph.Kinetic = &k
		}
		if ph.Potential != nil {
			p := *ph.Potential
			ph.Potential = &p
		}
		phases[kind] = ph
	}
	r.Phases = phases
	return r
}

// Recommendation issue types.
const (
	IssueEnergy        = "energy"
	IssueDurationLong  = "duration_long"
	IssueDurationShort = "duration_short"
)

// DefaultAdvice is returned for phase and issue pairs without specific text.
const DefaultAdvice = "Continue training this phase."

var coachingAdvice = map[PhaseKind]map[string]string{
	PhaseRun: {
		IssueEnergy:        "Focus on building running speed and acceleration. Increase sprint training and plyometrics.",
		IssueDurationLong:  "Work on stride efficiency and faster approach rhythm.",
		IssueDurationShort: "Extend your approach run to build more speed.",
	},
	PhasePlant: {
		IssueEnergy:        "Improve pole plant technique. Practice driving the pole into the box with more force.",
		IssueDurationLong:  "Speed up the plant motion. This should be quick and explosive.",
		IssueDurationShort: "Ensure proper pole plant depth and angle for better energy transfer.",
	},
	PhaseTakeoff: {
		IssueEnergy:        "Strengthen take-off leg. Do box jumps and single-leg plyometrics.",
		IssueDurationLong:  "Make take-off more explosive. Focus on quick ground contact.",
		IssueDurationShort: "Ensure complete leg extension during take-off.",
	},
	PhaseSwingUp: {
		IssueEnergy:        "Work on core strength and hip drive. Practice swing drills on low bars.",
		IssueDurationLong:  "Increase swing speed through better core engagement.",
		IssueDurationShort: "Allow more time for complete swing to maximize height.",
	},
	PhaseExtensionInversion: {
		IssueEnergy:        "Strengthen upper body and core. Practice rope climbs and inverted exercises.",
		IssueDurationLong:  "Speed up inversion through better timing and coordination.",
		IssueDurationShort: "Ensure full inversion for maximum pole energy utilization.",
	},
	PhasePushOff: {
		IssueEnergy:        "Increase arm and shoulder strength. Practice handstand push-ups.",
		IssueDurationLong:  "Make push-off more explosive and quick.",
		IssueDurationShort: "Ensure complete arm extension during push-off.",
	},
	PhasePike: {
		IssueEnergy:        "Work on bar clearance technique and body awareness.",
		IssueDurationLong:  "Speed up pike motion for faster bar clearance.",
		IssueDurationShort: "Allow proper time for pike positioning over the bar.",
	},
}

// CoachingAdvice returns the suggestion text for a phase and issue type.
func CoachingAdvice(phase PhaseKind, issue string) string {
	if text, ok := coachingAdvice[phase][issue]; ok {
		return text
	}
	return DefaultAdvice
}
