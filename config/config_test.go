package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/sandiegoi-PV/AI-PVSim/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "pvsim", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if cfg.Athlete.MassKG != 70 || cfg.Athlete.PixelToMeter != 0.01 {
		t.Fatalf("unexpected athlete defaults %+v", cfg.Athlete)
	}
	if cfg.Output.Format != config.FormatParquet {
		t.Fatalf("unexpected output format %q", cfg.Output.Format)
	}
	if !filepath.IsAbs(cfg.Output.Dir) {
		t.Fatalf("output dir should be absolute, got %q", cfg.Output.Dir)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("PVSIM_MASS_KG", "82.5")
	t.Setenv("PVSIM_PIXEL_RATIO", "0.004")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Athlete.MassKG != 82.5 || cfg.Athlete.PixelToMeter != 0.004 {
		t.Fatalf("env values not applied: %+v", cfg.Athlete)
	}
}

func TestLoadFileOverridesEnvAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PVSIM_MASS_KG", "82.5")

	path := filepath.Join(t.TempDir(), "pvsim.toml")
	payload, err := toml.Marshal(map[string]any{
		"athlete": map[string]any{"mass_kg": 79.0, "fit_profile": "~/garmin/Settings.fit"},
		"output":  map[string]any{"dir": "~/vaults", "format": "CSV"},
		"logging": map[string]any{"level": "DEBUG", "format": "json"},
		"batch":   map[string]any{"workers": 8},
	})
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Athlete.MassKG != 79 {
		t.Fatalf("file mass should win over env, got %v", cfg.Athlete.MassKG)
	}
	if cfg.Athlete.FITProfile != filepath.Join(tempHome, "garmin", "Settings.fit") {
		t.Fatalf("fit profile not expanded: %q", cfg.Athlete.FITProfile)
	}
	if cfg.Output.Dir != filepath.Join(tempHome, "vaults") || cfg.Output.Format != config.FormatCSV {
		t.Fatalf("unexpected output %+v", cfg.Output)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Batch.Workers != 8 {
		t.Fatalf("unexpected logging/batch %+v %+v", cfg.Logging, cfg.Batch)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := map[string]string{
		"negative mass": "[athlete]\nmass_kg = -3\n",
		"huge mass":     "[athlete]\nmass_kg = 500\n",
		"negative ratio":    "[athlete]\npixel_to_meter = -0.5\n",
		"bad format":    "[output]\nformat = \"xlsx\"\n",
		"bad level":     "[logging]\nlevel = \"loud\"\n",
		"unknown key":   "[athlete]\nweight = 70\n",
		"many workers":  "[batch]\nworkers = 1000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pvsim.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample error: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	defaults := config.Default()
	if cfg.Athlete.MassKG != defaults.Athlete.MassKG || cfg.Batch.Workers != defaults.Batch.Workers {
		t.Fatalf("sample should match defaults: %+v", cfg)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Athlete.MassKG = 77
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	parsed, err := config.Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if parsed.Athlete.MassKG != 77 {
		t.Fatalf("mass = %v, want 77", parsed.Athlete.MassKG)
	}
}
