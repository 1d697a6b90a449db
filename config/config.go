// Package config loads pvsim settings from TOML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the on-disk configuration.
type Config struct {
	Athlete Athlete `toml:"athlete"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
	Batch   Batch   `toml:"batch"`
}

// Athlete holds body metrics and the camera calibration.
type Athlete struct {
	MassKG       float64 `toml:"mass_kg"`
	HeightM      float64 `toml:"height_m"`
	PixelToMeter float64 `toml:"pixel_to_meter"`
	FITProfile   string  `toml:"fit_profile"`
}

// Output controls artifact writing.
type Output struct {
	Dir        string `toml:"dir"`
	Format     string `toml:"format"`
	Overwrite  bool   `toml:"overwrite"`
	CopySource bool   `toml:"copy_source"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type Batch struct {
	Workers int `toml:"workers"`
}

//go:embed sample_config.toml
var sampleConfig string

// Load resolves, decodes, normalizes and validates the configuration. It
// returns the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// Parse decodes TOML bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, statErr := os.Stat(expanded)
		if statErr == nil {
			return expanded, true, nil
		}
		if errors.Is(statErr, os.ErrNotExist) {
			return "", false, fmt.Errorf("config file not found: %s", expanded)
		}
		return "", false, fmt.Errorf("stat config: %w", statErr)
	}

	defaultPath, err := DefaultPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("pvsim.toml")
	if err == nil {
		if _, statErr := os.Stat(projectPath); statErr == nil {
			return projectPath, true, nil
		}
	}

	return defaultPath, false, nil
}

// DefaultPath is ~/.config/pvsim/config.toml.
func DefaultPath() (string, error) {
	return expandPath("~/.config/pvsim/config.toml")
}

// CreateSample writes the sample configuration to path. Existing files are
// left untouched.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
