package pvsim

import (
	"errors"
	"fmt"
)

// Athlete defaults used when the caller supplies nothing.
const (
	DefaultMassKG       = 70.0
	DefaultHeightM      = 1.80
	DefaultPixelToMeter = 0.01
	MaxMassKG           = 200.0
)

var (
	ErrNoPoseDetected    = errors.New("no pose landmarks detected")
	ErrInvalidMass       = errors.New("invalid athlete mass")
	ErrInvalidPixelRatio = errors.New("invalid pixel-to-meter ratio")
	ErrInvalidFPS        = errors.New("invalid frame rate")
)

// Config holds the athlete-specific inputs of an analysis.
type Config struct {
	MassKG       float64 `json:"mass_kg"`
	HeightM      float64 `json:"height_m"`
	PixelToMeter float64 `json:"pixel_to_meter"`
}

// DefaultConfig returns a 70 kg, 1.80 m athlete at 0.01 m per pixel.
func DefaultConfig() Config {
	return Config{
		MassKG:       DefaultMassKG,
		HeightM:      DefaultHeightM,
		PixelToMeter: DefaultPixelToMeter,
	}
}

// Validate rejects inputs the energy model cannot use. Height is informational
// and only has to be non-negative.
func (c Config) Validate() error {
	if !isFinite(c.MassKG) || c.MassKG <= 0 || c.MassKG > MaxMassKG {
		return fmt.Errorf("%w: %v kg (must be in (0, %.0f])", ErrInvalidMass, c.MassKG, MaxMassKG)
	}
	if !isFinite(c.PixelToMeter) || c.PixelToMeter <= 0 {
		return fmt.Errorf("%w: %v (must be positive)", ErrInvalidPixelRatio, c.PixelToMeter)
	}
	if !isFinite(c.HeightM) || c.HeightM < 0 {
		return fmt.Errorf("invalid athlete height: %v m", c.HeightM)
	}
	return nil
}

// Analysis is the full result of one vault analysis.
type Analysis struct {
	Video                VideoInfo                   `json:"video_info"`
	Athlete              Config                      `json:"athlete"`
	TotalFrames          int                         `json:"total_frames"`
	DetectedFrames       int                         `json:"detected_frames"`
	Phases               []PhaseInterval             `json:"phases"`
	Energies             map[PhaseKind]PhaseEnergy   `json:"phase_energies"`
	TotalEnergyGenerated float64                     `json:"total_energy_generated"`
	Comparisons          map[string]ComparisonResult `json:"comparisons"`
	BestReference        string                      `json:"best_reference,omitempty"`
	Structure            AttemptStructure            `json:"attempt_structure"`
	Notes                string                      `json:"notes"`
}

// Analyze runs segmentation, energy analysis and reference comparison over a
// landmark sequence. ErrNoPoseDetected is returned when no frame carries pose
// data; the later stages are not run in that case.
func Analyze(frames []LandmarkFrame, video VideoInfo, cfg Config) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !isFinite(video.FPS) || video.FPS <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFPS, video.FPS)
	}

	phases := Segment(frames, video.FPS)
	if len(phases) == 0 {
		return nil, ErrNoPoseDetected
	}

	params := EnergyParams{
		FPS:          video.FPS,
		MassKG:       cfg.MassKG,
		PixelToMeter: cfg.PixelToMeter,
	}
	energies := ComputeEnergies(frames, phases, params)
	comparisons := Compare(energies, cfg.MassKG)
	best, _ := BestComparison(comparisons)

	a := &Analysis{
		Video:                video,
		Athlete:              cfg,
		TotalFrames:          len(frames),
		DetectedFrames:       CountDetected(frames),
		Phases:               phases,
		Energies:             energies,
		TotalEnergyGenerated: TotalEnergyGenerated(energies),
		Comparisons:          comparisons,
		BestReference:        best,
		Structure:            InferAttemptStructure(phases, frames, video.FPS),
	}
	a.Notes = BuildReport(a)
	return a, nil
}

// EnergyParams returns the energy model constants for this analysis.
func (a *Analysis) EnergyParams() EnergyParams {
	return EnergyParams{
		FPS:          a.Video.FPS,
		MassKG:       a.Athlete.MassKG,
		PixelToMeter: a.Athlete.PixelToMeter,
	}
}
