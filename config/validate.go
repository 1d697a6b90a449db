package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAthlete(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Batch.Workers < 1 || c.Batch.Workers > maxBatchWorkers {
		return fmt.Errorf("batch.workers must be between 1 and %d", maxBatchWorkers)
	}
	return nil
}

func (c *Config) validateAthlete() error {
	mass := c.Athlete.MassKG
	if math.IsNaN(mass) || mass <= 0 || mass > maxMassKG {
		return fmt.Errorf("athlete.mass_kg must be in (0, %.0f], got %v", maxMassKG, mass)
	}
	ratio := c.Athlete.PixelToMeter
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return fmt.Errorf("athlete.pixel_to_meter must be positive, got %v", ratio)
	}
	if c.Athlete.HeightM <= 0 {
		return errors.New("athlete.height_m must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case FormatParquet, FormatCSV:
		return nil
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatParquet, FormatCSV, c.Output.Format)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
}
