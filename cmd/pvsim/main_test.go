package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/landmarkio"
	"github.com/sandiegoi-PV/AI-PVSim/pipeline"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeLandmarks(t *testing.T, dir, name string) string {
	t.Helper()
	frame := func(shX, shY, hipX, hipY, ankleY float64) pvsim.LandmarkFrame {
		return pvsim.LandmarkFrame{
			pvsim.LeftShoulder:  {X: shX, Y: shY, Visibility: 1},
			pvsim.RightShoulder: {X: shX, Y: shY, Visibility: 1},
			pvsim.LeftHip:       {X: hipX, Y: hipY, Visibility: 1},
			pvsim.RightHip:      {X: hipX, Y: hipY, Visibility: 1},
			pvsim.LeftAnkle:     {X: hipX, Y: ankleY, Visibility: 1},
			pvsim.RightAnkle:    {X: hipX, Y: ankleY, Visibility: 1},
		}
	}
	var frames []pvsim.LandmarkFrame
	for i := range 15 {
		x := float64(i) * 3
		frames = append(frames, frame(100+x, 400, 200+x, 410, 500))
	}
	for range 10 {
		frames = append(frames, frame(400, 400, 380, 200, 600))
	}
	data, err := json.Marshal(landmarkio.Document{
		VideoInfo: pvsim.VideoInfo{FPS: 30, Width: 1280, Height: 720},
		Frames:    frames,
	})
	if err != nil {
		t.Fatalf("marshal landmarks: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write landmarks: %v", err)
	}
	return path
}

func TestReferencesCommandJSON(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, "references", "--json")
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	var refs []pvsim.ReferenceProfile
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		t.Fatalf("decode references: %v\n%s", err, out)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
}

func TestReferencesCommandTable(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, "references")
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if !strings.Contains(out, "mondo_duplantis") || !strings.Contains(out, "RUN") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestAnalyzeCommandWritesArtifacts(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	input := writeLandmarks(t, dir, "attempt.json")
	outDir := filepath.Join(dir, "result")

	out, err := runCLI(t, "analyze", input, "--out", outDir, "--format", "csv", "--mass", "80", "--json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if res.OutputDir != outDir || res.AnalysisID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if filepath.Ext(res.EnergySeriesPath) != ".csv" {
		t.Fatalf("format flag ignored: %s", res.EnergySeriesPath)
	}

	data, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report pipeline.ReportDocument
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Athlete.MassKG != 80 {
		t.Fatalf("mass flag ignored: %+v", report.Athlete)
	}
}

func TestAnalyzeCommandDefaultOutputFromConfig(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	input := writeLandmarks(t, dir, "jump.json")
	cfgPath := filepath.Join(dir, "pvsim.toml")
	body := "[output]\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "runs")) + "\"\nformat = \"csv\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "analyze", input)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Artifacts written to") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "runs", "jump", "energy_series.csv")); err != nil {
		t.Fatalf("expected artifacts under config output dir: %v", err)
	}
}

func TestBatchCommandReportsFailures(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	good := writeLandmarks(t, dir, "good.json")
	missing := filepath.Join(dir, "missing.json")

	out, err := runCLI(t, "batch", good, missing, "--out", filepath.Join(dir, "out"), "--format", "csv", "-j", "2", "--json")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("expected one failure, got %v", err)
	}
	var outcomes []batchOutcome
	if err := json.Unmarshal([]byte(out), &outcomes); err != nil {
		t.Fatalf("decode outcomes: %v\n%s", err, out)
	}
	if len(outcomes) != 2 || outcomes[0].Error != "" || outcomes[1].Error == "" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
	if outcomes[0].AnalysisID == "" || outcomes[0].OutputDir != filepath.Join(dir, "out", "good") {
		t.Fatalf("unexpected good outcome %+v", outcomes[0])
	}
}

func TestBatchCommandSeparatesSameNamedInputs(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	first := writeLandmarks(t, filepath.Join(dir, "a"), "attempt.json")
	second := writeLandmarks(t, filepath.Join(dir, "b"), "attempt.json")

	base := filepath.Join(dir, "out")
	out, err := runCLI(t, "batch", first, second, "--out", base, "--format", "csv", "-j", "2", "--json")
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	var outcomes []batchOutcome
	if err := json.Unmarshal([]byte(out), &outcomes); err != nil {
		t.Fatalf("decode outcomes: %v\n%s", err, out)
	}
	if len(outcomes) != 2 || outcomes[0].Error != "" || outcomes[1].Error != "" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
	if outcomes[0].OutputDir != filepath.Join(base, "attempt") || outcomes[1].OutputDir != filepath.Join(base, "attempt-2") {
		t.Fatalf("inputs share an output directory: %+v", outcomes)
	}
	if outcomes[0].AnalysisID == outcomes[1].AnalysisID {
		t.Fatalf("expected distinct analyses: %+v", outcomes)
	}
	for _, o := range outcomes {
		if _, err := os.Stat(filepath.Join(o.OutputDir, pipeline.ReportFile)); err != nil {
			t.Fatalf("missing report in %s: %v", o.OutputDir, err)
		}
	}
}

func TestOutputDirsForSuffixesDuplicates(t *testing.T) {
	got := outputDirsFor("out", []string{"x/attempt-2.json", "a/attempt.json", "b/attempt.csv", "c/attempt.json", "d/Attempt.json"})
	want := []string{
		filepath.Join("out", "attempt-2"),
		filepath.Join("out", "attempt"),
		filepath.Join("out", "attempt-3"),
		filepath.Join("out", "attempt-4"),
		filepath.Join("out", "Attempt-5"),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dir %d = %q, want %q (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestPhasesCommandJSON(t *testing.T) {
	isolateEnv(t)
	input := writeLandmarks(t, t.TempDir(), "attempt.json")
	out, err := runCLI(t, "phases", input, "--json")
	if err != nil {
		t.Fatalf("phases: %v", err)
	}
	var payload struct {
		Phases []pvsim.PhaseInterval `json:"phases"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode phases: %v\n%s", err, out)
	}
	if len(payload.Phases) == 0 || payload.Phases[0].StartFrame != 0 || payload.Phases[len(payload.Phases)-1].EndFrame != 24 {
		t.Fatalf("phases should cover the clip: %+v", payload.Phases)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	home := isolateEnv(t)
	out, err := runCLI(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	want := filepath.Join(home, ".config", "pvsim", "config.toml")
	if !strings.Contains(out, want) {
		t.Fatalf("expected default path in output, got %q", out)
	}
	if _, err := runCLI(t, "config", "init"); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}

	out, err = runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "resolved from "+want) || !strings.Contains(out, "mass_kg") {
		t.Fatalf("unexpected config show output:\n%s", out)
	}
}

func TestReportCommandPrintsNotes(t *testing.T) {
	isolateEnv(t)
	input := writeLandmarks(t, t.TempDir(), "attempt.json")
	out, err := runCLI(t, "report", input, "--mass", "75")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "Pole Vault Analysis") || !strings.Contains(out, "75.0 kg") {
		t.Fatalf("unexpected report:\n%s", out)
	}
}

func TestExportCommandWritesBundle(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	input := writeLandmarks(t, dir, "attempt.json")
	outDir := filepath.Join(dir, "export")
	out, err := runCLI(t, "export", input, "--out", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{"frames.jsonl", "manifest.json", "source.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v\n%s", name, err, out)
		}
	}
}
