// Package athletefit reads athlete body metrics from Garmin FIT settings files.
package athletefit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/tormoder/fit"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
)

var (
	ErrNoUserProfile = errors.New("fit file has no user profile")
	ErrNoWeight      = errors.New("fit user profile has no weight")
)

// Profile is the subset of a FIT user profile the vault analysis uses.
type Profile struct {
	Name    string  `json:"name,omitempty"`
	MassKG  float64 `json:"mass_kg"`
	HeightM float64 `json:"height_m,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// LoadFile decodes the user profile of a FIT settings file.
func LoadFile(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("fit path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	p, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	p.Source = path
	return p, nil
}

// DecodeBytes decodes the user profile from raw FIT bytes.
func DecodeBytes(data []byte) (*Profile, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a FIT settings stream and returns the first user profile
// carrying a weight.
func Decode(r io.Reader) (*Profile, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode fit file: %w", err)
	}
	if decoded.Type() != fit.FileTypeSettings {
		return nil, fmt.Errorf("%w: file type is %v, want settings", ErrNoUserProfile, decoded.Type())
	}
	settings, err := decoded.Settings()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if len(settings.UserProfiles) == 0 {
		return nil, ErrNoUserProfile
	}

	for _, up := range settings.UserProfiles {
		if up == nil {
			continue
		}
		weight := up.GetWeightScaled()
		if math.IsNaN(weight) || weight <= 0 {
			continue
		}
		p := &Profile{
			Name:   strings.TrimSpace(up.FriendlyName),
			MassKG: weight,
		}
		if h := up.GetHeightScaled(); !math.IsNaN(h) && h > 0 {
			p.HeightM = h
		}
		return p, nil
	}
	return nil, ErrNoWeight
}

// Apply copies the profile's mass and, when known, height onto cfg.
func (p *Profile) Apply(cfg pvsim.Config) pvsim.Config {
	if p == nil {
		return cfg
	}
	if p.MassKG > 0 {
		cfg.MassKG = p.MassKG
	}
	if p.HeightM > 0 {
		cfg.HeightM = p.HeightM
	}
	return cfg
}
