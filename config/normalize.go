package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAthlete(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	return nil
}

// applyEnv lets PVSIM_MASS_KG and PVSIM_PIXEL_RATIO replace the built-in
// defaults. Values from a config file still win.
func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv("PVSIM_MASS_KG"); ok && strings.TrimSpace(value) != "" {
		mass, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("PVSIM_MASS_KG: %w", err)
		}
		c.Athlete.MassKG = mass
	}
	if value, ok := os.LookupEnv("PVSIM_PIXEL_RATIO"); ok && strings.TrimSpace(value) != "" {
		ratio, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("PVSIM_PIXEL_RATIO: %w", err)
		}
		c.Athlete.PixelToMeter = ratio
	}
	return nil
}

func (c *Config) normalizeAthlete() error {
	if c.Athlete.HeightM <= 0 {
		c.Athlete.HeightM = defaultHeightM
	}

	var err error
	c.Athlete.FITProfile = strings.TrimSpace(c.Athlete.FITProfile)
	if c.Athlete.FITProfile, err = expandPath(c.Athlete.FITProfile); err != nil {
		return fmt.Errorf("athlete.fit_profile: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	dir := strings.TrimSpace(c.Output.Dir)
	if dir == "" {
		dir = defaultOutputDir
	}
	var err error
	if c.Output.Dir, err = expandPath(dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
