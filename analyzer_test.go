package pvsim

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

var testVideo = VideoInfo{FPS: 30, Width: 1280, Height: 720, TotalFrames: 60}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	frames := staticFrames(30)
	cases := []struct {
		name  string
		cfg   Config
		video VideoInfo
		want  error
	}{
		{"zero mass", Config{MassKG: 0, PixelToMeter: 0.01}, testVideo, ErrInvalidMass},
		{"heavy mass", Config{MassKG: 250, PixelToMeter: 0.01}, testVideo, ErrInvalidMass},
		{"zero ratio", Config{MassKG: 70, PixelToMeter: 0}, testVideo, ErrInvalidPixelRatio},
		{"zero fps", DefaultConfig(), VideoInfo{FPS: 0}, ErrInvalidFPS},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Analyze(frames, tc.video, tc.cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Analyze() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAnalyzeMassUpperBoundIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MassKG = MaxMassKG
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mass %v should be valid: %v", MaxMassKG, err)
	}
}

func TestAnalyzeNoPose(t *testing.T) {
	_, err := Analyze(make([]LandmarkFrame, 10), testVideo, DefaultConfig())
	if !errors.Is(err, ErrNoPoseDetected) {
		t.Fatalf("expected ErrNoPoseDetected, got %v", err)
	}
}

func TestAnalyzeRunsAllStages(t *testing.T) {
	frames := append(runFrames(30, 5), invertedFrames(30)...)
	frames[40] = nil

	a, err := Analyze(frames, testVideo, DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if a.TotalFrames != 60 || a.DetectedFrames != 59 {
		t.Fatalf("frame counts = %d/%d", a.DetectedFrames, a.TotalFrames)
	}
	assertPartition(t, a.Phases, len(frames))
	if _, ok := a.Energies[PhaseRun]; !ok {
		t.Fatalf("missing run energy: %+v", a.Energies)
	}
	if len(a.Comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(a.Comparisons))
	}
	if a.BestReference == "" {
		t.Fatalf("expected a best reference")
	}
	for id, res := range a.Comparisons {
		if res.OverallScore < 0 || res.OverallScore > 100 {
			t.Fatalf("%s score %v out of range", id, res.OverallScore)
		}
	}
	if !a.Structure.Contiguous {
		t.Fatalf("structure should report contiguous phases: %+v", a.Structure)
	}
	for _, want := range []string{"Detected Pole Vault Phases", "RUN", "TOTAL ENERGY GENERATED", "Overall Score"} {
		if !strings.Contains(a.Notes, want) {
			t.Fatalf("notes missing %q:\n%s", want, a.Notes)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	frames := append(runFrames(30, 5), invertedFrames(30)...)
	first, err := Analyze(frames, testVideo, DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	second, err := Analyze(frames, testVideo, DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("analysis output differs between runs")
	}
}

func TestReportSections(t *testing.T) {
	if got := PhaseSummary(nil); !strings.Contains(got, "No phases detected") {
		t.Fatalf("unexpected empty phase summary %q", got)
	}
	if got := ComparisonSummary(nil); !strings.Contains(got, "No comparisons available") {
		t.Fatalf("unexpected empty comparison summary %q", got)
	}

	energies := map[PhaseKind]PhaseEnergy{
		PhaseRun: {EnergyGenerated: 2100, DurationSeconds: 3.5, Segments: 1},
	}
	summary := ComparisonSummary(Compare(energies, 70))
	if !strings.Contains(summary, "Excellent performance! Keep up the great work!") {
		t.Fatalf("expected congratulation line:\n%s", summary)
	}
	if !strings.Contains(summary, "1. RUN: Phase duration is 0.30s too short") {
		t.Fatalf("expected numbered recommendation:\n%s", summary)
	}
	if got := PhaseExtensionInversion.DisplayName(); got != "EXTENSION/INVERSION" {
		t.Fatalf("DisplayName() = %q", got)
	}
	if !strings.Contains(EnergySummary(energies), "TOTAL ENERGY GENERATED: 2100.00 J") {
		t.Fatalf("unexpected energy summary:\n%s", EnergySummary(energies))
	}
}
